// Package vectorstore provides interfaces and implementations for vector
// similarity search, plus the Vector Index Coordinator that layers two
// collections per artifact class (overview, chunk), a write pipeline, and a
// stateful filtered retriever on top of a VectorStore.
package vectorstore

import (
	"context"
)

// Point is one record to upsert: an embedding plus its content and metadata.
type Point struct {
	ID      string
	Vector  []float32
	Content string
	Meta    map[string]any
}

// SearchResult represents a search result from the vector store.
type SearchResult struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]any
}

// FilterOperator enumerates the filter tree's node kinds.
type FilterOperator string

const (
	// OpIn matches when the named field's value is a member of Value.
	OpIn FilterOperator = "in"
	// OpAND requires every child condition to hold.
	OpAND FilterOperator = "AND"
)

// Filter is a node in the stateful retriever's filter tree: either a leaf
// `{field, operator: in, value}` or a composite `{operator: AND, conditions}`.
type Filter struct {
	Field      string
	Operator   FilterOperator
	Value      []string
	Conditions []Filter
}

// FieldIn builds a leaf filter requiring field to be one of values.
func FieldIn(field string, values []string) Filter {
	return Filter{Field: field, Operator: OpIn, Value: values}
}

// And builds a composite AND filter over the given conditions.
func And(conditions ...Filter) Filter {
	return Filter{Operator: OpAND, Conditions: conditions}
}

// VectorStore defines the interface for vector storage operations against a
// single named collection.
type VectorStore interface {
	// EnsureCollection creates the named collection if it does not already
	// exist, sized for dimension-wide dense vectors.
	EnsureCollection(ctx context.Context, collection string, dimension int) error

	// Upsert inserts or updates points in the named collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs similarity search, optionally constrained by filter.
	Search(ctx context.Context, collection string, vector []float32, topK int, filter *Filter) ([]SearchResult, error)
}
