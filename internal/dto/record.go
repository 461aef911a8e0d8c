package dto

import "github.com/noah-isme/perum-adp-api/internal/models"

// RecordView is one row of the console's list view: the stored payload plus
// the resolved submitter display name.
type RecordView struct {
	ID        string                 `json:"id"`
	Kind      models.RecordKind      `json:"kind"`
	ActorName string                 `json:"actorName"`
	Payload   map[string]interface{} `json:"payload"`
}

// TransitionResponse mirrors a lifecycle move result for API clients.
type TransitionResponse struct {
	Outcome       models.TransitionOutcome  `json:"outcome"`
	Operation     models.LifecycleOperation `json:"operation"`
	Kind          models.RecordKind         `json:"kind"`
	SourceID      string                    `json:"sourceId"`
	NewID         string                    `json:"newId,omitempty"`
	DuplicateRisk bool                      `json:"duplicateRisk"`
	Warning       string                    `json:"warning,omitempty"`
}

// NewTransitionResponse converts the service result.
func NewTransitionResponse(res models.TransitionResult) TransitionResponse {
	return TransitionResponse{
		Outcome:       res.Outcome,
		Operation:     res.Operation,
		Kind:          res.Kind,
		SourceID:      res.SourceID,
		NewID:         res.NewID,
		DuplicateRisk: res.DuplicateRisk,
		Warning:       res.Warning,
	}
}
