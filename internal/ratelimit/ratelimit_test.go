package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(perMinute int, clock *time.Time) *Limiter {
	l := NewLimiter(Config{RequestsPerMinute: perMinute})
	l.now = func() time.Time { return *clock }
	return l
}

func TestLimiterAllow(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(3, &clock)

	for i := 0; i < 3; i++ {
		if !l.Allow("sheet") {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if l.Allow("sheet") {
		t.Fatal("4th call in the window should be refused")
	}
	if !l.Allow("other") {
		t.Fatal("keys have separate windows")
	}

	clock = clock.Add(20 * time.Second)
	if got := l.RetryAfter("sheet"); got != 40*time.Second {
		t.Errorf("RetryAfter() = %v, want 40s", got)
	}

	clock = clock.Add(40 * time.Second)
	if !l.Allow("sheet") {
		t.Fatal("a new window should allow calls again")
	}
	if got := l.RetryAfter("sheet"); got != 0 {
		t.Errorf("RetryAfter() = %v, want 0", got)
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 0})
	if l != nil {
		t.Fatal("zero rate should disable the limiter")
	}
	for i := 0; i < 1000; i++ {
		if !l.Allow("sheet") {
			t.Fatal("nil limiter refused a call")
		}
	}
	if l.RetryAfter("sheet") != 0 {
		t.Error("nil limiter should never ask to wait")
	}
}

func TestDefaultConfig(t *testing.T) {
	if DefaultConfig().RequestsPerMinute != 60 {
		t.Errorf("DefaultConfig() = %+v", DefaultConfig())
	}
}
