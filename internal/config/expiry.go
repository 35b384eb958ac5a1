// AngelaMos | 2026
// expiry.go

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var expiryUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseExpiry parses token lifetimes such as "15m", "7d" or "3600". A bare
// number is a count of seconds.
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}

	unit := time.Second
	digits := s
	if d, ok := expiryUnits[s[len(s)-1]]; ok {
		unit = d
		digits = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("expiry %q must be positive", s)
	}

	return time.Duration(n) * unit, nil
}
