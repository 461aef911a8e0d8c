package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

const auditCollection = "audit_logs"

// AuditRepository persists the lifecycle activity trail.
type AuditRepository struct {
	store docstore.Store
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(store docstore.Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// Create appends one audit entry. The entry ID is assigned by the store.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	fields := map[string]interface{}{
		"actorId":       entry.ActorID,
		"operation":     string(entry.Operation),
		"kind":          string(entry.Kind),
		"recordId":      entry.RecordID,
		"resultId":      entry.ResultID,
		"outcome":       string(entry.Outcome),
		"duplicateRisk": entry.DuplicateRisk,
		"createdAt":     models.FormatPayloadTime(entry.CreatedAt),
	}
	id, err := r.store.Collection(auditCollection).Create(ctx, "", fields)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	entry.ID = id
	return nil
}

// ListRecent returns the newest audit entries for the activity view.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	docs, err := r.store.Collection(auditCollection).ListOrdered(ctx, "createdAt", docstore.Descending, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	entries := make([]models.AuditEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, auditEntryFromDocument(doc))
	}
	return entries, nil
}

func auditEntryFromDocument(doc docstore.Document) models.AuditEntry {
	entry := models.AuditEntry{ID: doc.ID}
	if v, ok := doc.Fields["actorId"].(string); ok {
		entry.ActorID = v
	}
	if v, ok := doc.Fields["operation"].(string); ok {
		entry.Operation = models.LifecycleOperation(v)
	}
	if v, ok := doc.Fields["kind"].(string); ok {
		entry.Kind = models.RecordKind(v)
	}
	if v, ok := doc.Fields["recordId"].(string); ok {
		entry.RecordID = v
	}
	if v, ok := doc.Fields["resultId"].(string); ok {
		entry.ResultID = v
	}
	if v, ok := doc.Fields["outcome"].(string); ok {
		entry.Outcome = models.TransitionOutcome(v)
	}
	if v, ok := doc.Fields["duplicateRisk"].(bool); ok {
		entry.DuplicateRisk = v
	}
	if ts, ok := models.ParsePayloadTime(doc.Fields["createdAt"]); ok {
		entry.CreatedAt = ts
	}
	return entry
}
