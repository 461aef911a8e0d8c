package models

import (
	"time"

	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

// Payload field names shared by every record kind.
const (
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"
	FieldArchivedAt = "archivedAt"
	FieldArchivedBy = "archivedBy"
	FieldOriginalID = "originalId"
)

// Record is one document of a given kind together with its payload.
//
// Lifecycle state is never stored on the payload: a record is active when it
// lives in the kind's active collection and archived when it lives in the
// archive collection. The archive copy additionally carries archivedAt,
// archivedBy and originalId stamps.
type Record struct {
	ID      string
	Kind    RecordKind
	Payload map[string]interface{}
}

// StringField returns a payload value as a string, or "" when absent or not
// a string.
func (r Record) StringField(name string) string {
	if v, ok := r.Payload[name].(string); ok {
		return v
	}
	return ""
}

// TimeField parses a payload timestamp field.
func (r Record) TimeField(name string) (time.Time, bool) {
	return ParsePayloadTime(r.Payload[name])
}

// RecordFromDocument attaches kind information to a raw store document.
func RecordFromDocument(kind RecordKind, doc docstore.Document) Record {
	return Record{ID: doc.ID, Kind: kind, Payload: doc.Fields}
}

// RecordsFromDocuments converts a store result set.
func RecordsFromDocuments(kind RecordKind, docs []docstore.Document) []Record {
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, RecordFromDocument(kind, doc))
	}
	return records
}

// ParsePayloadTime interprets payload timestamp values. RFC3339 strings are
// the canonical wire format; time.Time is tolerated for values that have not
// crossed a JSON boundary yet.
func ParsePayloadTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatPayloadTime renders the canonical payload timestamp format.
func FormatPayloadTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
