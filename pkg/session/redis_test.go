package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/detect"
)

func newTestRedisStore(t *testing.T, opts ...RedisStoreOption) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	tracker := NewTracker(detect.Get(), store)
	ctx := context.Background()

	for _, text := range sampleTranscript {
		if _, err := tracker.AddTurn(ctx, "call-redis", text); err != nil {
			t.Fatal(err)
		}
	}

	state, err := store.Get(ctx, "call-redis")
	if err != nil {
		t.Fatal(err)
	}
	if state == nil || state.TurnCount != 5 {
		t.Fatalf("expected 5 turns after reload, got %+v", state)
	}
	// Findings must survive the JSON round trip with severity intact.
	var seen bool
	for _, f := range state.Turns[4].Findings {
		if f.Category == complaint.CategoryViolenceThreat && f.Severity == complaint.SeverityHigh {
			seen = true
		}
	}
	if !seen {
		t.Errorf("reloaded turn 4 findings = %v, want HIGH violence threat", state.Turns[4].Findings)
	}
}

func TestRedisStoreMissingSession(t *testing.T) {
	store, _ := newTestRedisStore(t)

	state, err := store.Get(context.Background(), "no-such-session")
	if err != nil {
		t.Fatal(err)
	}
	if state != nil {
		t.Errorf("unknown session should read as not found, got %+v", state)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t, WithTTL(30*time.Second))
	ctx := context.Background()

	if err := store.Save(ctx, &State{SessionID: "ttl-check", TurnCount: 1}); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(time.Minute)

	state, err := store.Get(ctx, "ttl-check")
	if err != nil {
		t.Fatal(err)
	}
	if state != nil {
		t.Error("session should expire with its key TTL")
	}
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, &State{SessionID: "gone"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatal(err)
	}

	state, err := store.Get(ctx, "gone")
	if err != nil {
		t.Fatal(err)
	}
	if state != nil {
		t.Error("deleted session should read as not found")
	}
}
