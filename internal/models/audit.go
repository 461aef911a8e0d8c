package models

import "time"

// AuditEntry records one lifecycle action for the estate's activity trail.
// Entries are written for every attempted move, including failures, so the
// trail explains duplicate-risk situations after the fact.
type AuditEntry struct {
	ID            string             `json:"id"`
	ActorID       string             `json:"actorId"`
	Operation     LifecycleOperation `json:"operation"`
	Kind          RecordKind         `json:"kind"`
	RecordID      string             `json:"recordId"`
	ResultID      string             `json:"resultId,omitempty"`
	Outcome       TransitionOutcome  `json:"outcome"`
	DuplicateRisk bool               `json:"duplicateRisk"`
	CreatedAt     time.Time          `json:"createdAt"`
}
