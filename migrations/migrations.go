// AngelaMos | 2026
// migrations.go

package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
	CommandReset  = "reset"
)

func NewProvider(db *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return p, nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	return Run(ctx, db, CommandUp)
}

// Run executes one migration command and logs each step.
func Run(ctx context.Context, db *sql.DB, command string) error {
	p, err := NewProvider(db)
	if err != nil {
		return err
	}

	switch command {
	case CommandUp:
		results, err := p.Up(ctx)
		logResults(ctx, results)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		if len(results) == 0 {
			slog.InfoContext(ctx, "database schema up to date")
		}

	case CommandDown:
		result, err := p.Down(ctx)
		if result != nil {
			logResults(ctx, []*goose.MigrationResult{result})
		}
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}

	case CommandReset:
		results, err := p.DownTo(ctx, 0)
		logResults(ctx, results)
		if err != nil {
			return fmt.Errorf("migrate reset: %w", err)
		}

	case CommandStatus:
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		for _, s := range statuses {
			slog.InfoContext(ctx, "migration",
				"version", s.Source.Version,
				"path", s.Source.Path,
				"state", string(s.State),
				"applied_at", s.AppliedAt,
			)
		}

	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	return nil
}

func logResults(ctx context.Context, results []*goose.MigrationResult) {
	for _, r := range results {
		if r.Error != nil {
			slog.ErrorContext(ctx, "migration failed",
				"version", r.Source.Version,
				"path", r.Source.Path,
				"direction", r.Direction,
				"error", r.Error,
			)
			continue
		}
		slog.InfoContext(ctx, "migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"direction", r.Direction,
			"duration", r.Duration,
		)
	}
}
