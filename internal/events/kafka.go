// AngelaMos | 2026
// kafka.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

const (
	headerEventType     = "event-type"
	headerCorrelationID = "correlation-id"
)

type ProducerClient interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

type KafkaPublisher struct {
	cl ProducerClient
}

func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	const op = "events.NewKafkaPublisher"

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProduceRequestTimeout(cfg.Timeout),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewKafkaPublisherWithClient(cl), nil
}

func NewKafkaPublisherWithClient(cl ProducerClient) *KafkaPublisher {
	return &KafkaPublisher{cl: cl}
}

// Publish hands the record to the client's buffer and returns. The send
// outlives the request, so cancellation of ctx is ignored.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) {
	const op = "events.KafkaPublisher.Publish"
	log := core.Logger(ctx).With("op", op, "event_type", e.Type, "key", e.Key)

	value, err := json.Marshal(e)
	if err != nil {
		log.ErrorContext(ctx, "encode event", "error", err)
		return
	}

	r := &kgo.Record{
		Key:   []byte(e.Key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: headerEventType, Value: []byte(e.Type)},
			{Key: headerCorrelationID, Value: []byte(core.CorrelationID(ctx))},
		},
	}

	p.cl.Produce(context.WithoutCancel(ctx), r, func(_ *kgo.Record, err error) {
		if err != nil {
			log.Warn("event delivery failed", "error", err)
		}
	})
}

func (p *KafkaPublisher) Close(ctx context.Context) error {
	const op = "events.KafkaPublisher.Close"
	log := slog.With("op", op)

	log.Info("flushing producer...")
	err := p.cl.Flush(ctx)
	p.cl.Close()
	log.Info("producer is closed")

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
