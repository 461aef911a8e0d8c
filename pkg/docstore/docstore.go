// Package docstore provides a small document-database abstraction: named
// collections of schemaless JSON documents addressed by string IDs.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a document does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// DefaultListLimit bounds queries whose callers pass a non-positive limit.
const DefaultListLimit = 1000

// SortDirection controls ordered query direction.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// Document is a single stored record: an ID plus a flat JSON object.
type Document struct {
	ID     string
	Fields map[string]interface{}
}

// Store exposes named collections and owns the underlying connection.
type Store interface {
	Collection(name string) Collection
	Close() error
}

// Collection is one logical bucket of documents.
//
// Delete is idempotent: removing an absent document succeeds. Create is not:
// inserting an existing ID fails so lifecycle moves never silently overwrite.
type Collection interface {
	// List returns up to limit documents with no ordering guarantee.
	List(ctx context.Context, limit int) ([]Document, error)
	// ListOrdered returns up to limit documents sorted by a single field.
	// Documents missing the field sort last regardless of direction.
	ListOrdered(ctx context.Context, orderBy string, dir SortDirection, limit int) ([]Document, error)
	// Get fetches one document by ID, returning ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Document, error)
	// Create inserts a document. An empty id requests a generated one; the
	// effective ID is returned.
	Create(ctx context.Context, id string, fields map[string]interface{}) (string, error)
	// Update merges the given fields into an existing document.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// Delete removes a document if present.
	Delete(ctx context.Context, id string) error
}

// CompareValues orders two JSON field values: numbers numerically, strings
// lexically, bools false-first. Mixed or unknown types fall back to their
// string rendering so ordering stays total.
func CompareValues(a, b interface{}) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	as := fmt.Sprint(a)
	bs := fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// SortByField stably sorts documents by one field. Documents missing the
// field (or holding null) sort last in either direction, matching the
// NULLS LAST behaviour of the SQL driver.
func SortByField(docs []Document, field string, dir SortDirection) {
	sort.SliceStable(docs, func(i, j int) bool {
		av, aok := docs[i].Fields[field]
		bv, bok := docs[j].Fields[field]
		if !aok || av == nil {
			return false
		}
		if !bok || bv == nil {
			return true
		}
		cmp := CompareValues(av, bv)
		if dir == Ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
