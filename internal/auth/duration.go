package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseExpirationDuration turns a token lifetime spec into an absolute
// expiry. Empty and "never" mean no expiry. "30d" and "2w" are day and
// week shorthands, anything time.ParseDuration accepts works as-is, and
// an RFC 3339 timestamp pins an exact future instant.
func ParseExpirationDuration(expiresIn string) (*time.Time, error) {
	spec := strings.TrimSpace(expiresIn)
	if spec == "" || spec == "never" {
		return nil, nil
	}

	if dur, err := time.ParseDuration(spec); err == nil {
		if dur <= 0 {
			return nil, fmt.Errorf("expiration must be positive: %s", spec)
		}
		t := time.Now().Add(dur)
		return &t, nil
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		if !t.After(time.Now()) {
			return nil, fmt.Errorf("expiration must be in the future: %s", spec)
		}
		return &t, nil
	}

	if n, unit, err := splitShorthand(spec); err == nil {
		t := time.Now().Add(time.Duration(n) * unit)
		return &t, nil
	}

	return nil, fmt.Errorf("invalid expiration %q, use never, 30d, 2w, a duration like 24h, or an RFC 3339 timestamp", spec)
}

func splitShorthand(spec string) (int, time.Duration, error) {
	if len(spec) < 2 {
		return 0, 0, fmt.Errorf("too short")
	}
	var unit time.Duration
	switch spec[len(spec)-1] {
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return 0, 0, fmt.Errorf("unknown unit %q", spec[len(spec)-1])
	}
	n, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("bad count in %q", spec)
	}
	return n, unit, nil
}
