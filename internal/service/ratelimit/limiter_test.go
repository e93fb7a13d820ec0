package ratelimit

import (
    "testing"
    "time"
)

func TestAllowConsumesAndRefills(t *testing.T) {
    now := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
    l := New()
    l.now = func() time.Time { return now }

    for i := 0; i < 2; i++ {
        if !l.Allow("k", 2, 1) {
            t.Fatalf("call %d should be allowed", i)
        }
    }
    if l.Allow("k", 2, 1) {
        t.Fatalf("bucket should be empty")
    }
    if !l.Allow("other", 2, 1) {
        t.Fatalf("keys must not share buckets")
    }

    now = now.Add(1500 * time.Millisecond)
    if !l.Allow("k", 2, 1) {
        t.Fatalf("expected refill after 1.5s")
    }
    if l.Allow("k", 2, 1) {
        t.Fatalf("only one token should have been refilled")
    }
}

func TestPrune(t *testing.T) {
    now := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
    l := New()
    l.now = func() time.Time { return now }

    l.Allow("old", 1, 1)
    now = now.Add(time.Hour)
    l.Allow("fresh", 1, 1)

    if n := l.Prune(10 * time.Minute); n != 1 {
        t.Fatalf("expected 1 pruned bucket, got %d", n)
    }
    if _, ok := l.m["fresh"]; !ok {
        t.Fatalf("fresh bucket must survive")
    }
}
