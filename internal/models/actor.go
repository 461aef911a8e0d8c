package models

import "strings"

// UnknownActorName is the terminal display fallback when neither the actor
// lookup nor the record's own contact fields produce anything usable.
const UnknownActorName = "Unknown"

// Actor is a user-store entry referenced by record payloads.
type Actor struct {
	ID        string
	FullName  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// DisplayName derives the best human-readable name for the actor: full name,
// then assembled first/last name, then email, then phone. Returns "" when
// nothing is usable so callers can continue with record-level fallbacks.
func (a *Actor) DisplayName() string {
	if a == nil {
		return ""
	}
	if name := strings.TrimSpace(a.FullName); name != "" {
		return name
	}
	if assembled := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName)); assembled != "" {
		return assembled
	}
	if email := strings.TrimSpace(a.Email); email != "" {
		return email
	}
	return strings.TrimSpace(a.Phone)
}
