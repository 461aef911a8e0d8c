package service

import (
	"strings"
	"time"

	"github.com/noah-isme/perum-adp-api/internal/dto"
	"github.com/noah-isme/perum-adp-api/internal/models"
)

// ApplyFilter narrows a list of assembled views by the console filter bar.
// Both criteria must hold when both are set. The input is never mutated so
// cached view slices can be filtered per request.
func ApplyFilter(views []dto.RecordView, criteria models.FilterCriteria, desc models.KindDescriptor) []dto.RecordView {
	if criteria.IsZero() {
		return views
	}
	query := strings.ToLower(strings.TrimSpace(criteria.Query))
	out := make([]dto.RecordView, 0, len(views))
	for _, view := range views {
		if criteria.Date != nil && !matchesDate(view, *criteria.Date) {
			continue
		}
		if query != "" && !matchesQuery(view, desc, query) {
			continue
		}
		out = append(out, view)
	}
	return out
}

// matchesDate compares the view's reference timestamp against a calendar day
// in the server's local zone. Archived copies are dated by when they were
// archived; everything else falls back to creation time. Views without a
// parseable reference timestamp never match an active date filter.
func matchesDate(view dto.RecordView, day time.Time) bool {
	stamp, ok := models.ParsePayloadTime(view.Payload[models.FieldArchivedAt])
	if !ok {
		stamp, ok = models.ParsePayloadTime(view.Payload[models.FieldCreatedAt])
	}
	if !ok {
		return false
	}
	local := stamp.In(time.Local)
	return local.Year() == day.Year() && local.Month() == day.Month() && local.Day() == day.Day()
}

// matchesQuery checks the lowered query against the kind's search fields and
// the resolved actor name.
func matchesQuery(view dto.RecordView, desc models.KindDescriptor, query string) bool {
	if strings.Contains(strings.ToLower(view.ActorName), query) {
		return true
	}
	for _, field := range desc.SearchFields {
		value, ok := view.Payload[field].(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), query) {
			return true
		}
	}
	return false
}
