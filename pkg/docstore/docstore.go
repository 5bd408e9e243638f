// Package docstore is a small document store: named collections of
// schemaless JSON documents with id-based CRUD, equality and range filters,
// and ordered queries. The Postgres implementation keeps documents in a
// single JSONB table; the memory implementation mirrors its semantics for
// tests.
package docstore

import (
	"context"
	"errors"
)

var ErrDocNotFound = errors.New("document not found")

type Op string

const (
	OpEq    Op = "="
	OpNotEq Op = "!="
	OpGte   Op = ">="
	OpLte   Op = "<="
	OpLt    Op = "<"
	OpGt    Op = ">"
)

// Filter constrains a query on one top-level document field. Comparison is
// numeric when Value is a number, chronological when Value is a time.Time,
// and lexical otherwise.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Order sorts query results on one top-level field. Numeric forces numeric
// comparison for fields stored as JSON numbers.
type Order struct {
	Field   string
	Desc    bool
	Numeric bool
}

type Query struct {
	Filters []Filter
	OrderBy []Order
}

type Document struct {
	ID   string
	Data map[string]any
}

// Collection is one named set of documents.
type Collection interface {
	// Add stores doc under a fresh id and returns it.
	Add(ctx context.Context, doc map[string]any) (string, error)
	// Set stores doc under id, replacing any previous content.
	Set(ctx context.Context, id string, doc map[string]any) error
	// Get returns the document or ErrDocNotFound.
	Get(ctx context.Context, id string) (map[string]any, error)
	// Update merges fields into the existing document. ErrDocNotFound if absent.
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q Query) ([]Document, error)
}

type Store interface {
	Collection(name string) Collection
}
