package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

// storeObserver receives adapter-level instrumentation. Nil observers are
// tolerated so tests can construct the repository bare.
type storeObserver interface {
	ObserveStoreQuery(op string, duration time.Duration)
	RecordSortFallback(collection, stage string)
}

// RecordRepository is the uniform access layer over the document store for
// record collections. Every read and write the lifecycle engine performs
// goes through it.
type RecordRepository struct {
	store        docstore.Store
	metrics      storeObserver
	logger       *zap.Logger
	limit        int
	queryTimeout time.Duration
}

// NewRecordRepository constructs the adapter. listLimit bounds every listing
// query so views stay linear-scan friendly; queryTimeout caps each store
// operation, and the ordered-query fallback chain shares a single deadline.
func NewRecordRepository(store docstore.Store, metrics storeObserver, logger *zap.Logger, listLimit int, queryTimeout time.Duration) *RecordRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if listLimit <= 0 {
		listLimit = 500
	}
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &RecordRepository{store: store, metrics: metrics, logger: logger, limit: listLimit, queryTimeout: queryTimeout}
}

// ListOrdered fetches documents ordered for display. When the primary ordered
// query fails it degrades stepwise: the secondary sort field when the kind
// defines one, then an unordered fetch sorted in memory by the primary field.
// Callers receive display-ordered documents unless every strategy failed.
func (r *RecordRepository) ListOrdered(ctx context.Context, collection, primaryField, secondaryField string, dir docstore.SortDirection) ([]docstore.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()
	coll := r.store.Collection(collection)

	docs, err := r.timedListOrdered(ctx, coll, collection, primaryField, dir)
	if err == nil {
		return docs, nil
	}
	r.logger.Warn("primary ordered query failed",
		zap.String("collection", collection),
		zap.String("order_by", primaryField),
		zap.Error(err))

	if secondaryField != "" {
		r.fallback(collection, "secondary")
		docs, serr := r.timedListOrdered(ctx, coll, collection, secondaryField, dir)
		if serr == nil {
			return docs, nil
		}
		r.logger.Warn("secondary ordered query failed",
			zap.String("collection", collection),
			zap.String("order_by", secondaryField),
			zap.Error(serr))
	}

	r.fallback(collection, "unordered")
	start := time.Now()
	docs, uerr := coll.List(ctx, r.limit)
	r.observe("list", start)
	if uerr != nil {
		return nil, fmt.Errorf("list %s: %w", collection, uerr)
	}
	docstore.SortByField(docs, primaryField, dir)
	return docs, nil
}

// List fetches documents with no ordering requirement.
func (r *RecordRepository) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()
	start := time.Now()
	docs, err := r.store.Collection(collection).List(ctx, r.limit)
	r.observe("list", start)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

// Get fetches one document. A missing document surfaces docstore.ErrNotFound.
func (r *RecordRepository) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()
	start := time.Now()
	doc, err := r.store.Collection(collection).Get(ctx, id)
	r.observe("get", start)
	return doc, err
}

// Create inserts a document, returning the effective ID.
func (r *RecordRepository) Create(ctx context.Context, collection, id string, fields map[string]interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()
	start := time.Now()
	newID, err := r.store.Collection(collection).Create(ctx, id, fields)
	r.observe("create", start)
	return newID, err
}

// Update merges fields into an existing document.
func (r *RecordRepository) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()
	start := time.Now()
	err := r.store.Collection(collection).Update(ctx, id, fields)
	r.observe("update", start)
	return err
}

// Delete removes a document. Deleting an absent document succeeds, which is
// what makes lifecycle moves safely retryable.
func (r *RecordRepository) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()
	start := time.Now()
	err := r.store.Collection(collection).Delete(ctx, id)
	r.observe("delete", start)
	return err
}

func (r *RecordRepository) timedListOrdered(ctx context.Context, coll docstore.Collection, collection, field string, dir docstore.SortDirection) ([]docstore.Document, error) {
	start := time.Now()
	docs, err := coll.ListOrdered(ctx, field, dir, r.limit)
	r.observe("list_ordered", start)
	return docs, err
}

func (r *RecordRepository) observe(op string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveStoreQuery(op, time.Since(start))
	}
}

func (r *RecordRepository) fallback(collection, stage string) {
	if r.metrics != nil {
		r.metrics.RecordSortFallback(collection, stage)
	}
}
