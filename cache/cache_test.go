package cache

import (
	"testing"
	"time"
)

func TestSetGetRemove(t *testing.T) {
	c := New()
	if got := c.Get("token"); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}

	c.Set("token", "abc")
	if got := c.Get("token"); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}

	c.Remove("token")
	if got := c.Get("token"); got != "" {
		t.Errorf("expected removed value, got %q", got)
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := New()
	c.now = func() time.Time { return now }

	c.SetWithTTL("token", "abc", time.Minute)
	if got := c.Get("token"); got != "abc" {
		t.Errorf("expected abc before expiry, got %q", got)
	}

	now = now.Add(time.Minute)
	if got := c.Get("token"); got != "" {
		t.Errorf("expected expired value, got %q", got)
	}

	c.SetWithTTL("token", "def", 0)
	now = now.Add(24 * time.Hour)
	if got := c.Get("token"); got != "def" {
		t.Errorf("zero ttl must never expire, got %q", got)
	}
}
