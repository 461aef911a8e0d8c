package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/perum-adp-api/internal/dto"
	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
	appErrors "github.com/noah-isme/perum-adp-api/pkg/errors"
)

type recordStore interface {
	ListOrdered(ctx context.Context, collection, primaryField, secondaryField string, dir docstore.SortDirection) ([]docstore.Document, error)
	Get(ctx context.Context, collection, id string) (*docstore.Document, error)
	Create(ctx context.Context, collection, id string, fields map[string]interface{}) (string, error)
	Delete(ctx context.Context, collection, id string) error
}

type nameResolver interface {
	ResolveBatch(ctx context.Context, records []models.Record, desc models.KindDescriptor) map[string]string
}

type auditTrail interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

type viewCache interface {
	GetViews(ctx context.Context, kind models.RecordKind, state models.RecordState) ([]dto.RecordView, bool)
	SetViews(ctx context.Context, kind models.RecordKind, state models.RecordState, views []dto.RecordView)
	InvalidateKind(ctx context.Context, kind models.RecordKind)
}

type lifecycleMetrics interface {
	RecordLifecycleTransition(kind models.RecordKind, op models.LifecycleOperation, outcome models.TransitionOutcome)
}

// LifecycleService moves records between a kind's active and archive
// collections and assembles the console's list views.
//
// The two collections are never written atomically. Both move directions
// write the destination copy first and delete the source copy second, so an
// interrupted move can duplicate a record but never lose one. A failed delete
// is reported as PartiallyCompleted with the duplicate-risk flag set.
type LifecycleService struct {
	store    recordStore
	resolver nameResolver
	audit    auditTrail
	cache    viewCache
	metrics  lifecycleMetrics
	logger   *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewLifecycleService constructs the engine. Resolver, audit trail, view
// cache and metrics are optional; the engine degrades without them.
func NewLifecycleService(store recordStore, resolver nameResolver, audit auditTrail, cache viewCache, metrics lifecycleMetrics, logger *zap.Logger) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		store:    store,
		resolver: resolver,
		audit:    audit,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// ListActive returns the filtered active view of a kind.
func (s *LifecycleService) ListActive(ctx context.Context, kind models.RecordKind, criteria models.FilterCriteria) ([]dto.RecordView, error) {
	return s.list(ctx, kind, models.StateActive, criteria)
}

// ListArchived returns the filtered archived view of a kind.
func (s *LifecycleService) ListArchived(ctx context.Context, kind models.RecordKind, criteria models.FilterCriteria) ([]dto.RecordView, error) {
	return s.list(ctx, kind, models.StateArchived, criteria)
}

// RecentActivity returns the newest lifecycle audit entries for the
// console's activity feed.
func (s *LifecycleService) RecentActivity(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if s.audit == nil {
		return []models.AuditEntry{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	entries, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "failed to list lifecycle activity")
	}
	return entries, nil
}

func (s *LifecycleService) list(ctx context.Context, kind models.RecordKind, state models.RecordState, criteria models.FilterCriteria) ([]dto.RecordView, error) {
	desc, err := s.descriptor(kind)
	if err != nil {
		return nil, err
	}
	if views, ok := s.cachedViews(ctx, desc.Kind, state); ok {
		return ApplyFilter(views, criteria, desc), nil
	}

	collection := desc.CollectionFor(state)
	docs, err := s.store.ListOrdered(ctx, collection, desc.PrimarySortField, desc.SecondarySortField, docstore.Descending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
			fmt.Sprintf("failed to list %s %s records", state, desc.Label))
	}

	records := models.RecordsFromDocuments(desc.Kind, docs)
	views := s.buildViews(ctx, records, desc)
	s.storeViews(ctx, desc.Kind, state, views)
	return ApplyFilter(views, criteria, desc), nil
}

// Archive moves one active record into the kind's archive collection. The
// archive copy is stamped with archivedAt, archivedBy and originalId before
// the active copy is touched.
func (s *LifecycleService) Archive(ctx context.Context, kind models.RecordKind, id string, actor *models.JWTClaims) (*models.TransitionResult, error) {
	desc, err := s.descriptor(kind)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "record id is required")
	}
	if !s.acquire(desc.Kind, id) {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("another transition for %s %s is still in flight", desc.Label, id))
	}
	defer s.release(desc.Kind, id)

	doc, err := s.store.Get(ctx, desc.ActiveCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return s.fail(ctx, desc, models.OperationArchive, id, actor,
				appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("active %s %s not found", desc.Label, id)))
		}
		return s.fail(ctx, desc, models.OperationArchive, id, actor,
			appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
				fmt.Sprintf("failed to read %s %s before archiving", desc.Label, id)))
	}

	fields := clonePayload(doc.Fields)
	fields[models.FieldArchivedAt] = models.FormatPayloadTime(time.Now())
	fields[models.FieldArchivedBy] = actor.UserID
	fields[models.FieldOriginalID] = id

	newID, err := s.store.Create(ctx, desc.ArchiveCollection, "", fields)
	if err != nil {
		return s.fail(ctx, desc, models.OperationArchive, id, actor,
			appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
				fmt.Sprintf("failed to write archive copy of %s %s", desc.Label, id)))
	}

	result := &models.TransitionResult{
		Outcome:   models.TransitionCompleted,
		Operation: models.OperationArchive,
		Kind:      desc.Kind,
		SourceID:  id,
		NewID:     newID,
	}
	if derr := s.store.Delete(ctx, desc.ActiveCollection, id); derr != nil {
		result.Outcome = models.TransitionPartiallyCompleted
		result.DuplicateRisk = true
		result.Warning = fmt.Sprintf(
			"the %s was archived but its active copy could not be removed; it may appear in both views until the next archive attempt", desc.Label)
		s.logger.Warn("active copy not removed after archive",
			zap.String("kind", string(desc.Kind)),
			zap.String("record_id", id),
			zap.String("archive_id", newID),
			zap.Error(derr))
	}
	s.finish(ctx, desc, result, actor)
	return result, nil
}

// Restore moves one archived record back into the kind's active collection,
// stripping the archive stamps. Kinds with identity continuity reuse the
// original id; the rest accept a store-assigned one.
func (s *LifecycleService) Restore(ctx context.Context, kind models.RecordKind, archiveID string, actor *models.JWTClaims) (*models.TransitionResult, error) {
	desc, err := s.descriptor(kind)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if strings.TrimSpace(archiveID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "record id is required")
	}
	if !s.acquire(desc.Kind, archiveID) {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("another transition for %s %s is still in flight", desc.Label, archiveID))
	}
	defer s.release(desc.Kind, archiveID)

	doc, err := s.store.Get(ctx, desc.ArchiveCollection, archiveID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return s.fail(ctx, desc, models.OperationRestore, archiveID, actor,
				appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("archived %s %s not found", desc.Label, archiveID)))
		}
		return s.fail(ctx, desc, models.OperationRestore, archiveID, actor,
			appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
				fmt.Sprintf("failed to read archived %s %s before restoring", desc.Label, archiveID)))
	}

	fields := clonePayload(doc.Fields)
	originalID, _ := fields[models.FieldOriginalID].(string)
	delete(fields, models.FieldArchivedAt)
	delete(fields, models.FieldArchivedBy)
	delete(fields, models.FieldOriginalID)
	fields[models.FieldUpdatedAt] = models.FormatPayloadTime(time.Now())

	targetID := ""
	if desc.KeepIDOnRestore && originalID != "" {
		targetID = originalID
	}
	newID, err := s.store.Create(ctx, desc.ActiveCollection, targetID, fields)
	if err != nil {
		return s.fail(ctx, desc, models.OperationRestore, archiveID, actor,
			appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
				fmt.Sprintf("failed to write restored copy of %s %s", desc.Label, archiveID)))
	}

	result := &models.TransitionResult{
		Outcome:   models.TransitionCompleted,
		Operation: models.OperationRestore,
		Kind:      desc.Kind,
		SourceID:  archiveID,
		NewID:     newID,
	}
	if derr := s.store.Delete(ctx, desc.ArchiveCollection, archiveID); derr != nil {
		result.Outcome = models.TransitionPartiallyCompleted
		result.DuplicateRisk = true
		result.Warning = fmt.Sprintf(
			"the %s was restored but its archive copy could not be removed; it may appear in both views until the next restore attempt", desc.Label)
		s.logger.Warn("archive copy not removed after restore",
			zap.String("kind", string(desc.Kind)),
			zap.String("record_id", archiveID),
			zap.String("restored_id", newID),
			zap.Error(derr))
	}
	s.finish(ctx, desc, result, actor)
	return result, nil
}

func (s *LifecycleService) descriptor(kind models.RecordKind) (models.KindDescriptor, error) {
	desc, ok := models.DescriptorFor(kind)
	if !ok {
		return models.KindDescriptor{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown record kind %q", kind))
	}
	return desc, nil
}

// acquire claims the per-record transition slot. The guard is in-process
// only; concurrent moves from other replicas are defended by the
// write-before-delete ordering, not by this lock.
func (s *LifecycleService) acquire(kind models.RecordKind, id string) bool {
	key := string(kind) + "/" + id
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *LifecycleService) release(kind models.RecordKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, string(kind)+"/"+id)
}

// fail records a failed attempt on the audit trail and metrics before
// surfacing the error. Nothing was moved.
func (s *LifecycleService) fail(ctx context.Context, desc models.KindDescriptor, op models.LifecycleOperation, id string, actor *models.JWTClaims, appErr error) (*models.TransitionResult, error) {
	s.recordTransition(desc.Kind, op, models.TransitionFailed)
	s.emitAudit(ctx, &models.AuditEntry{
		ActorID:   actor.UserID,
		Operation: op,
		Kind:      desc.Kind,
		RecordID:  id,
		Outcome:   models.TransitionFailed,
	})
	return nil, appErr
}

// finish records the effective transition and drops the kind's cached views.
// The cache survives failed attempts so the console keeps its last known
// good listing.
func (s *LifecycleService) finish(ctx context.Context, desc models.KindDescriptor, result *models.TransitionResult, actor *models.JWTClaims) {
	s.recordTransition(desc.Kind, result.Operation, result.Outcome)
	s.emitAudit(ctx, &models.AuditEntry{
		ActorID:       actor.UserID,
		Operation:     result.Operation,
		Kind:          desc.Kind,
		RecordID:      result.SourceID,
		ResultID:      result.NewID,
		Outcome:       result.Outcome,
		DuplicateRisk: result.DuplicateRisk,
	})
	s.invalidateViews(ctx, desc.Kind)
}

func (s *LifecycleService) buildViews(ctx context.Context, records []models.Record, desc models.KindDescriptor) []dto.RecordView {
	var resolved map[string]string
	if s.resolver != nil {
		resolved = s.resolver.ResolveBatch(ctx, records, desc)
	}
	views := make([]dto.RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, dto.RecordView{
			ID:        rec.ID,
			Kind:      rec.Kind,
			ActorName: displayActorName(rec, desc, resolved),
			Payload:   rec.Payload,
		})
	}
	return views
}

func (s *LifecycleService) cachedViews(ctx context.Context, kind models.RecordKind, state models.RecordState) ([]dto.RecordView, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.GetViews(ctx, kind, state)
}

func (s *LifecycleService) storeViews(ctx context.Context, kind models.RecordKind, state models.RecordState, views []dto.RecordView) {
	if s.cache != nil {
		s.cache.SetViews(ctx, kind, state, views)
	}
}

func (s *LifecycleService) invalidateViews(ctx context.Context, kind models.RecordKind) {
	if s.cache != nil {
		s.cache.InvalidateKind(ctx, kind)
	}
}

func (s *LifecycleService) recordTransition(kind models.RecordKind, op models.LifecycleOperation, outcome models.TransitionOutcome) {
	if s.metrics != nil {
		s.metrics.RecordLifecycleTransition(kind, op, outcome)
	}
}

func (s *LifecycleService) emitAudit(ctx context.Context, entry *models.AuditEntry) {
	if s.audit == nil || entry == nil {
		return
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record lifecycle audit", zap.Error(err))
	}
}

func clonePayload(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		out[k] = v
	}
	return out
}
