package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perum-adp-api/internal/dto"
	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/internal/repository"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
	appErrors "github.com/noah-isme/perum-adp-api/pkg/errors"
	"github.com/noah-isme/perum-adp-api/pkg/jobs"
	"github.com/noah-isme/perum-adp-api/pkg/storage"
)

type exportRepoStub struct {
	jobs      map[string]*models.ExportJob
	nextID    int
	createErr error
}

func newExportRepoStub() *exportRepoStub {
	return &exportRepoStub{jobs: make(map[string]*models.ExportJob)}
}

func (s *exportRepoStub) Create(_ context.Context, job *models.ExportJob) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	job.ID = fmt.Sprintf("job-%d", s.nextID)
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	}
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *exportRepoStub) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *exportRepoStub) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := s.jobs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *exportRepoStub) ListQueued(_ context.Context, _ int) ([]models.ExportJob, error) {
	out := make([]models.ExportJob, 0)
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *exportRepoStub) ListFinishedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.ExportJob, error) {
	out := make([]models.ExportJob, 0)
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

type dispatcherStub struct {
	enqueued []jobs.Job
	err      error
}

func (s *dispatcherStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}

type viewListerStub struct {
	views []dto.RecordView
	err   error
}

func (s *viewListerStub) ListArchived(_ context.Context, _ models.RecordKind, _ models.FilterCriteria) ([]dto.RecordView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.views, nil
}

func archivedComplaintViews() []dto.RecordView {
	return []dto.RecordView{
		{
			ID:        "x-1",
			Kind:      models.KindComplaint,
			ActorName: "Budi Santoso",
			Payload: map[string]interface{}{
				"title":                "Water leak",
				"category":             "plumbing",
				models.FieldArchivedAt: "2026-03-10T08:00:00Z",
				models.FieldArchivedBy: "admin-1",
				models.FieldOriginalID: "c-1",
			},
		},
	}
}

func newTestExportService(t *testing.T, repo *exportRepoStub, views *viewListerStub, queue *dispatcherStub) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(repo, views, queue, store, signer, ExportServiceConfig{
		APIPrefix:  "/api/v1",
		ResultTTL:  time.Hour,
		MaxRetries: 3,
	}, nil)
}

func TestCreateJobQueuesExport(t *testing.T) {
	repo := newExportRepoStub()
	queue := &dispatcherStub{}
	svc := newTestExportService(t, repo, &viewListerStub{}, queue)

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "complaint", Format: "csv"}, testActor())
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	require.Equal(t, resp.ID, queue.enqueued[0].ID)
	require.Equal(t, ExportJobKind, queue.enqueued[0].Kind)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Equal(t, models.KindComplaint, stored.Kind)
	require.Equal(t, "admin-1", stored.CreatedBy)
}

func TestCreateJobValidatesRequest(t *testing.T) {
	svc := newTestExportService(t, newExportRepoStub(), &viewListerStub{}, &dispatcherStub{})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "payroll", Format: "csv"}, testActor())
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "complaint", Format: "xlsx"}, testActor())
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "complaint", Format: "csv"}, nil)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestCreateJobMarksJobFailedWhenEnqueueFails(t *testing.T) {
	repo := newExportRepoStub()
	queue := &dispatcherStub{err: fmt.Errorf("queue closed")}
	svc := newTestExportService(t, repo, &viewListerStub{}, queue)

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "complaint", Format: "csv"}, testActor())
	require.Error(t, err)
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		require.Equal(t, models.ExportStatusFailed, job.Status)
	}
}

func TestWorkerGeneratesExportAndServesDownload(t *testing.T) {
	repo := newExportRepoStub()
	views := &viewListerStub{views: archivedComplaintViews()}
	queue := &dispatcherStub{}
	svc := newTestExportService(t, repo, views, queue)

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "complaint", Format: "csv"}, testActor())
	require.NoError(t, err)

	worker := NewExportWorker(repo, svc, 3, nil)
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: resp.ID}))

	status, err := svc.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusFinished, status.Status)
	require.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	require.Contains(t, *status.ResultURL, "/api/v1/exports/download?token=")

	token := extractDownloadToken(*status.ResultURL)
	require.NotEmpty(t, token)
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	require.Contains(t, string(content), "submittedBy")
	require.Contains(t, string(content), "Water leak")
	require.Contains(t, string(content), "Budi Santoso")
	require.True(t, strings.HasSuffix(download.Filename, ".csv"))
}

func TestWorkerRequeuesThenFails(t *testing.T) {
	repo := newExportRepoStub()
	views := &viewListerStub{err: fmt.Errorf("store down")}
	svc := newTestExportService(t, repo, views, &dispatcherStub{})
	worker := NewExportWorker(repo, svc, 3, nil)

	job := &models.ExportJob{Kind: models.KindComplaint, Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0})
	require.Error(t, err)
	stored, _ := repo.GetByID(context.Background(), job.ID)
	require.Equal(t, models.ExportStatusQueued, stored.Status, "early attempts go back to the queue")

	err = worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 3})
	require.Error(t, err)
	stored, _ = repo.GetByID(context.Background(), job.ID)
	require.Equal(t, models.ExportStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
}

func TestResolveDownloadRejectsTamperedToken(t *testing.T) {
	repo := newExportRepoStub()
	views := &viewListerStub{views: archivedComplaintViews()}
	svc := newTestExportService(t, repo, views, &dispatcherStub{})

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "complaint", Format: "csv"}, testActor())
	require.NoError(t, err)
	worker := NewExportWorker(repo, svc, 3, nil)
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: resp.ID}))

	status, err := svc.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	token := extractDownloadToken(*status.ResultURL)

	_, err = svc.ResolveDownload(context.Background(), token+"x")
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGetStatusUnknownJob(t *testing.T) {
	svc := newTestExportService(t, newExportRepoStub(), &viewListerStub{}, &dispatcherStub{})
	_, err := svc.GetStatus(context.Background(), "missing")
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCleanupExpiredRemovesStoredFiles(t *testing.T) {
	repo := newExportRepoStub()
	views := &viewListerStub{views: archivedComplaintViews()}
	svc := newTestExportService(t, repo, views, &dispatcherStub{})

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{Kind: "complaint", Format: "csv"}, testActor())
	require.NoError(t, err)
	worker := NewExportWorker(repo, svc, 3, nil)
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: resp.ID}))

	finishedAt := time.Now().Add(-48 * time.Hour)
	stored := repo.jobs[resp.ID]
	stored.FinishedAt = &finishedAt

	status, err := svc.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	token := extractDownloadToken(*status.ResultURL)

	svc.cleanupExpired(context.Background())

	_, err = svc.ResolveDownload(context.Background(), token)
	require.Error(t, err, "the swept file must no longer be downloadable")
}
