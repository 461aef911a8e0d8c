package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perum-adp-api/internal/dto"
	"github.com/noah-isme/perum-adp-api/internal/models"
)

func complaintView(id, actorName string, payload map[string]interface{}) dto.RecordView {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return dto.RecordView{ID: id, Kind: models.KindComplaint, ActorName: actorName, Payload: payload}
}

func TestApplyFilterZeroCriteriaKeepsEverything(t *testing.T) {
	desc, _ := models.DescriptorFor(models.KindComplaint)
	views := []dto.RecordView{
		complaintView("c-1", "Budi", nil),
		complaintView("c-2", "", nil),
	}
	require.Equal(t, views, ApplyFilter(views, models.FilterCriteria{}, desc))
}

func TestApplyFilterQueryMatchesSearchFieldsAndActor(t *testing.T) {
	desc, _ := models.DescriptorFor(models.KindComplaint)
	views := []dto.RecordView{
		complaintView("c-1", "Budi Santoso", map[string]interface{}{"title": "Broken Gate Light"}),
		complaintView("c-2", "Rina Wati", map[string]interface{}{"title": "Water leak"}),
		complaintView("c-3", "", map[string]interface{}{"title": "Noise", "category": 7}),
	}

	byTitle := ApplyFilter(views, models.FilterCriteria{Query: "gate"}, desc)
	require.Len(t, byTitle, 1)
	require.Equal(t, "c-1", byTitle[0].ID)

	byActor := ApplyFilter(views, models.FilterCriteria{Query: "RINA"}, desc)
	require.Len(t, byActor, 1)
	require.Equal(t, "c-2", byActor[0].ID)

	require.Empty(t, ApplyFilter(views, models.FilterCriteria{Query: "elevator"}, desc))
}

func TestApplyFilterDateUsesLocalDayAndArchiveStamp(t *testing.T) {
	desc, _ := models.DescriptorFor(models.KindComplaint)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)

	lateEvening := time.Date(2026, 3, 14, 23, 59, 0, 0, time.Local)
	nextMorning := time.Date(2026, 3, 15, 0, 1, 0, 0, time.Local)

	views := []dto.RecordView{
		complaintView("c-1", "", map[string]interface{}{
			models.FieldArchivedAt: models.FormatPayloadTime(lateEvening),
			models.FieldCreatedAt:  models.FormatPayloadTime(nextMorning),
		}),
		complaintView("c-2", "", map[string]interface{}{
			models.FieldArchivedAt: models.FormatPayloadTime(nextMorning),
		}),
		complaintView("c-3", "", map[string]interface{}{
			models.FieldCreatedAt: models.FormatPayloadTime(lateEvening),
		}),
		complaintView("c-4", "", map[string]interface{}{
			models.FieldCreatedAt: "not-a-timestamp",
		}),
		complaintView("c-5", "", nil),
	}

	got := ApplyFilter(views, models.FilterCriteria{Date: &day}, desc)
	require.Len(t, got, 2)
	require.Equal(t, "c-1", got[0].ID, "archive stamp wins over creation time")
	require.Equal(t, "c-3", got[1].ID, "active records match on creation time")
}

func TestApplyFilterCombinesDateAndQuery(t *testing.T) {
	desc, _ := models.DescriptorFor(models.KindComplaint)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	onDay := models.FormatPayloadTime(time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local))
	offDay := models.FormatPayloadTime(time.Date(2026, 3, 16, 10, 0, 0, 0, time.Local))

	views := []dto.RecordView{
		complaintView("c-1", "", map[string]interface{}{"title": "Gate stuck", models.FieldCreatedAt: onDay}),
		complaintView("c-2", "", map[string]interface{}{"title": "Gate stuck", models.FieldCreatedAt: offDay}),
		complaintView("c-3", "", map[string]interface{}{"title": "Pool cleaning", models.FieldCreatedAt: onDay}),
	}

	got := ApplyFilter(views, models.FilterCriteria{Date: &day, Query: "gate"}, desc)
	require.Len(t, got, 1)
	require.Equal(t, "c-1", got[0].ID)
}
