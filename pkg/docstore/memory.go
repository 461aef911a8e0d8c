package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development.
// Writes are normalised through a JSON round trip so stored values carry the
// same types (float64, string, bool) a JSONB read would produce.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	orderedErrs map[string]error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		orderedErrs: make(map[string]error),
	}
}

// Collection returns a handle bound to one collection name.
func (s *MemoryStore) Collection(name string) Collection {
	return &memCollection{store: s, name: name}
}

// Close is a no-op for the in-memory driver.
func (s *MemoryStore) Close() error {
	return nil
}

// FailOrderedQueries makes ListOrdered on the given collection and field
// return err. Passing a nil error clears the injection. Test hook for
// exercising sort-fallback paths.
func (s *MemoryStore) FailOrderedQueries(collection, field string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := collection + "/" + field
	if err == nil {
		delete(s.orderedErrs, key)
		return
	}
	s.orderedErrs[key] = err
}

type memCollection struct {
	store *MemoryStore
	name  string
}

func (c *memCollection) List(ctx context.Context, limit int) ([]Document, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	docs := c.snapshotLocked()
	if n := normalizeLimit(limit); len(docs) > n {
		docs = docs[:n]
	}
	return docs, nil
}

func (c *memCollection) ListOrdered(ctx context.Context, orderBy string, dir SortDirection, limit int) ([]Document, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if err := c.store.orderedErrs[c.name+"/"+orderBy]; err != nil {
		return nil, err
	}
	docs := c.snapshotLocked()
	SortByField(docs, orderBy, dir)
	if n := normalizeLimit(limit); len(docs) > n {
		docs = docs[:n]
	}
	return docs, nil
}

func (c *memCollection) Get(ctx context.Context, id string) (*Document, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	fields, ok := c.store.collections[c.name][id]
	if !ok {
		return nil, ErrNotFound
	}
	copied, err := cloneFields(fields)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}
	return &Document{ID: id, Fields: copied}, nil
}

func (c *memCollection) Create(ctx context.Context, id string, fields map[string]interface{}) (string, error) {
	normalized, err := cloneFields(fields)
	if err != nil {
		return "", fmt.Errorf("create %s/%s: %w", c.name, id, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	coll := c.store.collections[c.name]
	if coll == nil {
		coll = make(map[string]map[string]interface{})
		c.store.collections[c.name] = coll
	}
	if _, exists := coll[id]; exists {
		return "", fmt.Errorf("create %s/%s: document already exists", c.name, id)
	}
	coll[id] = normalized
	return id, nil
}

func (c *memCollection) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	normalized, err := cloneFields(fields)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	existing, ok := c.store.collections[c.name][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range normalized {
		existing[k] = v
	}
	return nil
}

func (c *memCollection) Delete(ctx context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if coll, ok := c.store.collections[c.name]; ok {
		delete(coll, id)
	}
	return nil
}

// snapshotLocked deep-copies the collection; callers hold at least a read lock.
func (c *memCollection) snapshotLocked() []Document {
	coll := c.store.collections[c.name]
	docs := make([]Document, 0, len(coll))
	for id, fields := range coll {
		copied, err := cloneFields(fields)
		if err != nil {
			continue
		}
		docs = append(docs, Document{ID: id, Fields: copied})
	}
	return docs
}

func cloneFields(fields map[string]interface{}) (map[string]interface{}, error) {
	if fields == nil {
		return make(map[string]interface{}), nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("normalise fields: %w", err)
	}
	copied := make(map[string]interface{}, len(fields))
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, fmt.Errorf("normalise fields: %w", err)
	}
	return copied, nil
}
