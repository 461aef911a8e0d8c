package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateNormalizesValues(t *testing.T) {
	store := NewMemoryStore()
	coll := store.Collection("residents")

	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	id, err := coll.Create(context.Background(), "", map[string]interface{}{
		"fullName":  "Budi Santoso",
		"createdAt": created,
		"unit":      12,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := coll.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Budi Santoso", doc.Fields["fullName"])
	require.Equal(t, created.Format(time.RFC3339), doc.Fields["createdAt"])
	require.Equal(t, float64(12), doc.Fields["unit"])
}

func TestMemoryStoreCreateDuplicateFails(t *testing.T) {
	store := NewMemoryStore()
	coll := store.Collection("residents")

	_, err := coll.Create(context.Background(), "res-1", map[string]interface{}{"fullName": "A"})
	require.NoError(t, err)

	_, err = coll.Create(context.Background(), "res-1", map[string]interface{}{"fullName": "B"})
	require.Error(t, err)
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Collection("residents").Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateMerges(t *testing.T) {
	store := NewMemoryStore()
	coll := store.Collection("residents")

	_, err := coll.Create(context.Background(), "res-1", map[string]interface{}{"fullName": "A", "status": "active"})
	require.NoError(t, err)

	require.NoError(t, coll.Update(context.Background(), "res-1", map[string]interface{}{"status": "inactive"}))

	doc, err := coll.Get(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, "A", doc.Fields["fullName"])
	require.Equal(t, "inactive", doc.Fields["status"])

	require.ErrorIs(t, coll.Update(context.Background(), "missing", map[string]interface{}{"status": "x"}), ErrNotFound)
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	store := NewMemoryStore()
	coll := store.Collection("residents")

	_, err := coll.Create(context.Background(), "res-1", map[string]interface{}{"fullName": "A"})
	require.NoError(t, err)

	require.NoError(t, coll.Delete(context.Background(), "res-1"))
	require.NoError(t, coll.Delete(context.Background(), "res-1"))

	_, err = coll.Get(context.Background(), "res-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListOrdered(t *testing.T) {
	store := NewMemoryStore()
	coll := store.Collection("complaints")
	ctx := context.Background()

	_, err := coll.Create(ctx, "c-1", map[string]interface{}{"createdAt": "2024-01-02T00:00:00Z"})
	require.NoError(t, err)
	_, err = coll.Create(ctx, "c-2", map[string]interface{}{"createdAt": "2024-01-03T00:00:00Z"})
	require.NoError(t, err)
	_, err = coll.Create(ctx, "c-3", map[string]interface{}{"title": "no timestamp"})
	require.NoError(t, err)

	docs, err := coll.ListOrdered(ctx, "createdAt", Descending, 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "c-2", docs[0].ID)
	require.Equal(t, "c-1", docs[1].ID)
	// Document without the sort field lands last.
	require.Equal(t, "c-3", docs[2].ID)

	docs, err = coll.ListOrdered(ctx, "createdAt", Ascending, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "c-1", docs[0].ID)
}

func TestMemoryStoreOrderedFailureInjection(t *testing.T) {
	store := NewMemoryStore()
	coll := store.Collection("complaints")
	ctx := context.Background()

	_, err := coll.Create(ctx, "c-1", map[string]interface{}{"createdAt": "2024-01-02T00:00:00Z"})
	require.NoError(t, err)

	injected := errors.New("index unavailable")
	store.FailOrderedQueries("complaints", "createdAt", injected)

	_, err = coll.ListOrdered(ctx, "createdAt", Descending, 0)
	require.ErrorIs(t, err, injected)

	// Other fields and plain listing stay healthy.
	_, err = coll.ListOrdered(ctx, "updatedAt", Descending, 0)
	require.NoError(t, err)
	_, err = coll.List(ctx, 0)
	require.NoError(t, err)

	store.FailOrderedQueries("complaints", "createdAt", nil)
	_, err = coll.ListOrdered(ctx, "createdAt", Descending, 0)
	require.NoError(t, err)
}
