package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, "u1"); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}
	if _, err := store.Load(ctx, ""); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}

	history := []*schema.Message{
		schema.UserMessage("hola"),
		schema.AssistantMessage("¡Hola! ¿En qué puedo ayudarte?", nil),
	}
	if err := store.Save(ctx, "u1", history); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].Content != "hola" {
		t.Fatalf("unexpected history: %+v", got)
	}

	// The returned slice is a copy; appending to it must not leak into the
	// stored history.
	_ = append(got, schema.UserMessage("extra"))
	got2, _ := store.Load(ctx, "u1")
	if len(got2) != 2 {
		t.Fatalf("stored history mutated through a loaded copy: %d entries", len(got2))
	}

	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "u1"); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreEvictIdle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewMemoryStore(WithIdleTTL(time.Hour), WithClock(clock))
	ctx := context.Background()

	if err := store.Save(ctx, "idle", []*schema.Message{schema.UserMessage("hi")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "active", []*schema.Message{schema.UserMessage("hi")}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// "active" is touched just before the sweep; "idle" is not.
	now = now.Add(59 * time.Minute)
	if _, err := store.Load(ctx, "active"); err != nil {
		t.Fatalf("load: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if evicted := store.EvictIdle(); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 remaining history, got %d", store.Len())
	}
	if _, err := store.Load(ctx, "idle"); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("idle history should be gone, got %v", err)
	}
	if _, err := store.Load(ctx, "active"); err != nil {
		t.Fatalf("active history should survive: %v", err)
	}
}
