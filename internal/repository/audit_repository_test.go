package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

func TestAuditRepositoryRoundTrip(t *testing.T) {
	repo := NewAuditRepository(docstore.NewMemoryStore())

	entry := &models.AuditEntry{
		ActorID:       "admin-1",
		Operation:     models.OperationArchive,
		Kind:          models.KindComplaint,
		RecordID:      "c-1",
		ResultID:      "a-1",
		Outcome:       models.TransitionPartiallyCompleted,
		DuplicateRisk: true,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	require.NotEmpty(t, entry.ID)

	entries, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "admin-1", entries[0].ActorID)
	require.Equal(t, models.OperationArchive, entries[0].Operation)
	require.Equal(t, "a-1", entries[0].ResultID)
	require.True(t, entries[0].DuplicateRisk)
	require.False(t, entries[0].CreatedAt.IsZero())
}

func TestAuditRepositoryListRecentNewestFirst(t *testing.T) {
	repo := NewAuditRepository(docstore.NewMemoryStore())

	older := &models.AuditEntry{
		ActorID:   "admin-1",
		Operation: models.OperationArchive,
		Kind:      models.KindComplaint,
		RecordID:  "c-1",
		Outcome:   models.TransitionCompleted,
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), older))

	newer := &models.AuditEntry{
		ActorID:   "admin-2",
		Operation: models.OperationRestore,
		Kind:      models.KindComplaint,
		RecordID:  "a-1",
		Outcome:   models.TransitionCompleted,
		CreatedAt: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), newer))

	entries, err := repo.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a-1", entries[0].RecordID)
	require.Equal(t, models.OperationRestore, entries[0].Operation)
}
