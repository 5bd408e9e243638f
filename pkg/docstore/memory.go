package docstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same filter and ordering
// semantics as the Postgres implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
	}
}

func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *memoryCollection) docs() map[string]map[string]any {
	coll, ok := c.store.collections[c.name]
	if !ok {
		coll = make(map[string]map[string]any)
		c.store.collections[c.name] = coll
	}
	return coll
}

func (c *memoryCollection) Add(_ context.Context, doc map[string]any) (string, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	id := uuid.NewString()
	c.docs()[id] = cloneDoc(doc)
	return id, nil
}

func (c *memoryCollection) Set(_ context.Context, id string, doc map[string]any) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.docs()[id] = cloneDoc(doc)
	return nil
}

func (c *memoryCollection) Get(_ context.Context, id string) (map[string]any, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	doc, ok := c.store.collections[c.name][id]
	if !ok {
		return nil, ErrDocNotFound
	}
	return cloneDoc(doc), nil
}

func (c *memoryCollection) Update(_ context.Context, id string, fields map[string]any) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	doc, ok := c.store.collections[c.name][id]
	if !ok {
		return ErrDocNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (c *memoryCollection) Delete(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if _, ok := c.store.collections[c.name][id]; !ok {
		return ErrDocNotFound
	}
	delete(c.store.collections[c.name], id)
	return nil
}

func (c *memoryCollection) Query(_ context.Context, q Query) ([]Document, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var out []Document
	for id, doc := range c.store.collections[c.name] {
		match := true
		for _, f := range q.Filters {
			ok, err := matches(doc[f.Field], f)
			if err != nil {
				return nil, err
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			out = append(out, Document{ID: id, Data: cloneDoc(doc)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.OrderBy {
			cmp := compareValues(out[i].Data[o.Field], out[j].Data[o.Field], o.Numeric)
			if cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func matches(field any, f Filter) (bool, error) {
	cmp := compareWith(field, f.Value)
	switch f.Op {
	case OpEq:
		return cmp == 0, nil
	case OpNotEq:
		return cmp != 0, nil
	case OpGte:
		return cmp >= 0, nil
	case OpLte:
		return cmp <= 0, nil
	case OpLt:
		return cmp < 0, nil
	case OpGt:
		return cmp > 0, nil
	default:
		return false, fmt.Errorf("unsupported filter op %q", f.Op)
	}
}

// compareWith compares a stored field against a filter value, matching the
// Postgres casts: time.Time filters compare chronologically, numeric filters
// numerically, everything else as text.
func compareWith(field, value any) int {
	if t, ok := value.(time.Time); ok {
		ft, err := asTime(field)
		if err != nil {
			return -1
		}
		switch {
		case ft.Before(t):
			return -1
		case ft.After(t):
			return 1
		default:
			return 0
		}
	}
	if n, ok := asNumber(value); ok {
		fn, fok := asNumber(field)
		if !fok {
			return -1
		}
		switch {
		case fn < n:
			return -1
		case fn > n:
			return 1
		default:
			return 0
		}
	}
	fs, vs := fmt.Sprint(field), fmt.Sprint(value)
	switch {
	case fs < vs:
		return -1
	case fs > vs:
		return 1
	default:
		return 0
	}
}

func compareValues(a, b any, numeric bool) int {
	if numeric {
		an, aok := asNumber(a)
		bn, bok := asNumber(b)
		if aok && bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	default:
		return time.Time{}, fmt.Errorf("value %v is not a time", v)
	}
}

func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
