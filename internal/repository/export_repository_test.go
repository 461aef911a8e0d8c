package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

func TestExportRepositoryCreateAssignsIDAndCreatedAt(t *testing.T) {
	repo := NewExportRepository(docstore.NewMemoryStore())

	job := &models.ExportJob{
		Kind:      models.KindComplaint,
		Format:    models.ExportFormatCSV,
		Status:    models.ExportStatusQueued,
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)
	require.False(t, job.CreatedAt.IsZero())

	loaded, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.KindComplaint, loaded.Kind)
	require.Equal(t, models.ExportFormatCSV, loaded.Format)
	require.Equal(t, models.ExportStatusQueued, loaded.Status)
	require.Equal(t, "admin-1", loaded.CreatedBy)
	require.Nil(t, loaded.ResultURL)
	require.Nil(t, loaded.FinishedAt)
}

func TestExportRepositoryGetByIDMissing(t *testing.T) {
	repo := NewExportRepository(docstore.NewMemoryStore())

	_, err := repo.GetByID(context.Background(), "nope")
	require.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestExportRepositoryUpdateTouchesOnlyGivenFields(t *testing.T) {
	repo := NewExportRepository(docstore.NewMemoryStore())

	job := &models.ExportJob{Kind: models.KindResident, Format: models.ExportFormatPDF, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))

	status := models.ExportStatusProcessing
	progress := 40
	require.NoError(t, repo.Update(context.Background(), job.ID, UpdateExportJobParams{
		Status:   &status,
		Progress: &progress,
	}))

	loaded, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusProcessing, loaded.Status)
	require.Equal(t, 40, loaded.Progress)
	require.Equal(t, models.ExportFormatPDF, loaded.Format)

	// An empty update is a no-op, not an error.
	require.NoError(t, repo.Update(context.Background(), job.ID, UpdateExportJobParams{}))

	finished := models.ExportStatusFinished
	url := "/api/v1/exports/download?token=abc"
	done := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Update(context.Background(), job.ID, UpdateExportJobParams{
		Status:     &finished,
		ResultURL:  &url,
		FinishedAt: &done,
	}))

	loaded, err = repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.ResultURL)
	require.Equal(t, url, *loaded.ResultURL)
	require.NotNil(t, loaded.FinishedAt)
	require.True(t, loaded.FinishedAt.Equal(done))
}

func TestExportRepositoryListQueued(t *testing.T) {
	repo := NewExportRepository(docstore.NewMemoryStore())

	queued := &models.ExportJob{Kind: models.KindComplaint, Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), queued))

	running := &models.ExportJob{Kind: models.KindComplaint, Format: models.ExportFormatCSV, Status: models.ExportStatusProcessing}
	require.NoError(t, repo.Create(context.Background(), running))

	jobs, err := repo.ListQueued(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, queued.ID, jobs[0].ID)
}

func TestExportRepositoryListFinishedBefore(t *testing.T) {
	repo := NewExportRepository(docstore.NewMemoryStore())
	cutoff := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	old := &models.ExportJob{Kind: models.KindComplaint, Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), old))
	finished := models.ExportStatusFinished
	oldDone := cutoff.Add(-48 * time.Hour)
	require.NoError(t, repo.Update(context.Background(), old.ID, UpdateExportJobParams{Status: &finished, FinishedAt: &oldDone}))

	fresh := &models.ExportJob{Kind: models.KindComplaint, Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), fresh))
	freshDone := cutoff.Add(time.Hour)
	require.NoError(t, repo.Update(context.Background(), fresh.ID, UpdateExportJobParams{Status: &finished, FinishedAt: &freshDone}))

	failed := &models.ExportJob{Kind: models.KindComplaint, Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), failed))
	failedStatus := models.ExportStatusFailed
	require.NoError(t, repo.Update(context.Background(), failed.ID, UpdateExportJobParams{Status: &failedStatus, FinishedAt: &oldDone}))

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, old.ID, jobs[0].ID)
}
