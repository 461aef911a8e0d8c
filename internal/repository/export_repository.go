package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

const exportJobsCollection = "export_jobs"

// UpdateExportJobParams names the fields an export job update may touch.
// Nil pointers leave the stored value untouched.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// ExportRepository persists export job metadata in the document store, next
// to the records the jobs describe.
type ExportRepository struct {
	store docstore.Store
}

// NewExportRepository constructs the repository.
func NewExportRepository(store docstore.Store) *ExportRepository {
	return &ExportRepository{store: store}
}

// Create persists a new job and assigns its ID and creation time.
func (r *ExportRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	fields := map[string]interface{}{
		"kind":      string(job.Kind),
		"format":    string(job.Format),
		"status":    string(job.Status),
		"progress":  job.Progress,
		"createdBy": job.CreatedBy,
		"createdAt": models.FormatPayloadTime(job.CreatedAt),
	}
	id, err := r.store.Collection(exportJobsCollection).Create(ctx, "", fields)
	if err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	job.ID = id
	return nil
}

// GetByID loads one job. Missing jobs surface docstore.ErrNotFound.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	doc, err := r.store.Collection(exportJobsCollection).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	job := exportJobFromDocument(*doc)
	return &job, nil
}

// Update merges the provided fields into the stored job document.
func (r *ExportRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	fields := make(map[string]interface{})
	if params.Status != nil {
		fields["status"] = string(*params.Status)
	}
	if params.Progress != nil {
		fields["progress"] = *params.Progress
	}
	if params.ResultURL != nil {
		fields["resultUrl"] = *params.ResultURL
	}
	if params.ErrorMessage != nil {
		fields["errorMessage"] = *params.ErrorMessage
	}
	if params.FinishedAt != nil {
		fields["finishedAt"] = models.FormatPayloadTime(*params.FinishedAt)
	}
	if len(fields) == 0 {
		return nil
	}
	if err := r.store.Collection(exportJobsCollection).Update(ctx, id, fields); err != nil {
		return fmt.Errorf("update export job %s: %w", id, err)
	}
	return nil
}

// ListQueued returns jobs still waiting for a worker, used to replay the
// queue after a process restart.
func (r *ExportRepository) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	return r.listByStatus(ctx, limit, func(job models.ExportJob) bool {
		return job.Status == models.ExportStatusQueued
	})
}

// ListFinishedBefore returns finished jobs whose completion time falls before
// the cutoff. The document store has no predicate queries, so this filters a
// bounded fetch client-side.
func (r *ExportRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	return r.listByStatus(ctx, limit, func(job models.ExportJob) bool {
		return job.Status == models.ExportStatusFinished &&
			job.FinishedAt != nil && job.FinishedAt.Before(cutoff)
	})
}

func (r *ExportRepository) listByStatus(ctx context.Context, limit int, keep func(models.ExportJob) bool) ([]models.ExportJob, error) {
	docs, err := r.store.Collection(exportJobsCollection).List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	jobs := make([]models.ExportJob, 0)
	for _, doc := range docs {
		job := exportJobFromDocument(doc)
		if !keep(job) {
			continue
		}
		jobs = append(jobs, job)
		if limit > 0 && len(jobs) >= limit {
			break
		}
	}
	return jobs, nil
}

func exportJobFromDocument(doc docstore.Document) models.ExportJob {
	job := models.ExportJob{ID: doc.ID}
	if v, ok := doc.Fields["kind"].(string); ok {
		job.Kind = models.RecordKind(v)
	}
	if v, ok := doc.Fields["format"].(string); ok {
		job.Format = models.ExportFormat(v)
	}
	if v, ok := doc.Fields["status"].(string); ok {
		job.Status = models.ExportStatus(v)
	}
	if v, ok := doc.Fields["progress"].(float64); ok {
		job.Progress = int(v)
	}
	if v, ok := doc.Fields["resultUrl"].(string); ok && v != "" {
		job.ResultURL = &v
	}
	if v, ok := doc.Fields["errorMessage"].(string); ok && v != "" {
		job.ErrorMessage = &v
	}
	if v, ok := doc.Fields["createdBy"].(string); ok {
		job.CreatedBy = v
	}
	if ts, ok := models.ParsePayloadTime(doc.Fields["createdAt"]); ok {
		job.CreatedAt = ts
	}
	if ts, ok := models.ParsePayloadTime(doc.Fields["finishedAt"]); ok {
		job.FinishedAt = &ts
	}
	return job
}
