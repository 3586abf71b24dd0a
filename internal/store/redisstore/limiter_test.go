package redisstore

import (
	"context"
	"testing"
)

func TestAllow_NilLimiterFailsOpen(t *testing.T) {
	var l *Limiter
	ok, err := l.Allow(context.Background(), "u1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !ok {
		t.Fatalf("nil limiter must allow")
	}
}

func TestAllow_DisabledLimit(t *testing.T) {
	l := &Limiter{perMinute: 0}
	ok, err := l.Allow(context.Background(), "u1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !ok {
		t.Fatalf("zero limit means no limiting")
	}
}
