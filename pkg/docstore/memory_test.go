package docstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCollectionCRUD(t *testing.T) {
	t.Parallel()

	coll := NewMemoryStore().Collection("things")
	ctx := context.Background()

	id, err := coll.Add(ctx, map[string]any{"name": "first", "count": 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id == "" {
		t.Fatal("add should mint an id")
	}

	doc, err := coll.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["name"] != "first" {
		t.Fatalf("unexpected document: %#v", doc)
	}

	// Mutating the returned map must not write through to the store.
	doc["name"] = "mutated"
	doc2, _ := coll.Get(ctx, id)
	if doc2["name"] != "first" {
		t.Fatal("get should return a copy")
	}

	if err := coll.Update(ctx, id, map[string]any{"count": 2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc3, _ := coll.Get(ctx, id)
	if doc3["count"] != 2 || doc3["name"] != "first" {
		t.Fatalf("merge update broken: %#v", doc3)
	}

	if err := coll.Update(ctx, "missing", map[string]any{"x": 1}); !errors.Is(err, ErrDocNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	if err := coll.Set(ctx, id, map[string]any{"name": "replaced"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	doc4, _ := coll.Get(ctx, id)
	if _, ok := doc4["count"]; ok {
		t.Fatalf("set should replace wholesale: %#v", doc4)
	}

	if err := coll.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := coll.Delete(ctx, id); !errors.Is(err, ErrDocNotFound) {
		t.Fatalf("double delete: %v", err)
	}
	if _, err := coll.Get(ctx, id); !errors.Is(err, ErrDocNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestMemoryQueryFilters(t *testing.T) {
	t.Parallel()

	coll := NewMemoryStore().Collection("bookings")
	ctx := context.Background()

	seed := func(doc map[string]any) string {
		id, err := coll.Add(ctx, doc)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		return id
	}

	a := seed(map[string]any{"owner": "ana", "people": 2, "time": "2026-09-12T12:00:00Z"})
	seed(map[string]any{"owner": "beto", "people": 6, "time": "2026-09-12T20:00:00Z"})
	c := seed(map[string]any{"owner": "ana", "people": "4", "time": "2026-09-13T12:00:00Z"})

	// Equality on text.
	docs, err := coll.Query(ctx, Query{
		Filters: []Filter{{Field: "owner", Op: OpEq, Value: "ana"}},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(docs))
	}

	// Numeric comparison covers string-stored numbers, like the Postgres
	// ::numeric cast does.
	docs, err = coll.Query(ctx, Query{
		Filters: []Filter{{Field: "people", Op: OpGte, Value: 4}},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 numeric matches, got %d", len(docs))
	}

	// Chronological range over string timestamps.
	docs, err = coll.Query(ctx, Query{
		Filters: []Filter{
			{Field: "time", Op: OpGte, Value: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)},
			{Field: "time", Op: OpLte, Value: time.Date(2026, 9, 12, 23, 0, 0, 0, time.UTC)},
		},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 in-range matches, got %d", len(docs))
	}
	for _, d := range docs {
		if d.ID == c {
			t.Fatal("next-day document should be out of range")
		}
	}

	_ = a
}

func TestMemoryQueryOrdering(t *testing.T) {
	t.Parallel()

	coll := NewMemoryStore().Collection("tables")
	ctx := context.Background()

	seed := func(doc map[string]any) string {
		id, err := coll.Add(ctx, doc)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		return id
	}

	big := seed(map[string]any{"name": "salon", "people": 10})
	small := seed(map[string]any{"name": "bar", "people": 2})
	mid := seed(map[string]any{"name": "patio", "people": 6})

	docs, err := coll.Query(ctx, Query{
		OrderBy: []Order{{Field: "people", Numeric: true}},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []string{small, mid, big}
	for i, id := range want {
		if docs[i].ID != id {
			t.Fatalf("numeric ascending order broken at %d: %#v", i, docs)
		}
	}

	docs, err = coll.Query(ctx, Query{
		OrderBy: []Order{{Field: "people", Desc: true, Numeric: true}},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if docs[0].ID != big {
		t.Fatalf("descending order broken: %#v", docs)
	}
}
