package auth

import (
	"testing"
	"time"
)

func TestParseExpirationDurationNever(t *testing.T) {
	for _, in := range []string{"", "never"} {
		got, err := ParseExpirationDuration(in)
		if err != nil {
			t.Fatalf("ParseExpirationDuration(%q): %v", in, err)
		}
		if got != nil {
			t.Errorf("expected nil expiry for %q, got %v", in, got)
		}
	}
}

func TestParseExpirationDurationShorthand(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{"2w", 2 * 7 * 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"30m", 30 * time.Minute},
	}
	for _, tc := range cases {
		before := time.Now().Add(tc.want)
		got, err := ParseExpirationDuration(tc.in)
		if err != nil {
			t.Fatalf("ParseExpirationDuration(%q): %v", tc.in, err)
		}
		if got == nil {
			t.Fatalf("expected expiry for %q", tc.in)
		}
		after := time.Now().Add(tc.want)
		if got.Before(before) || got.After(after) {
			t.Errorf("%q: expiry %v outside expected window", tc.in, got)
		}
	}
}

func TestParseExpirationDurationTimestamp(t *testing.T) {
	got, err := ParseExpirationDuration("2036-12-25T14:30:00Z")
	if err != nil {
		t.Fatalf("ParseExpirationDuration: %v", err)
	}
	if got.Year() != 2036 || got.Month() != time.December || got.Hour() != 14 {
		t.Errorf("unexpected parsed timestamp %v", got)
	}

	if _, err := ParseExpirationDuration("2001-01-01T00:00:00Z"); err == nil {
		t.Error("expected error for a past timestamp")
	}
}

func TestParseExpirationDurationInvalid(t *testing.T) {
	for _, in := range []string{"banana", "10x", "-5d", "-24h", "0d"} {
		if _, err := ParseExpirationDuration(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}
