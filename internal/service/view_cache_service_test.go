package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perum-adp-api/internal/dto"
	"github.com/noah-isme/perum-adp-api/internal/models"
	appErrors "github.com/noah-isme/perum-adp-api/pkg/errors"
)

// cacheRepoStub keeps entries as JSON so cached views cross the same
// marshalling boundary they would in Redis.
type cacheRepoStub struct {
	entries map[string][]byte
	getErr  error
	sets    int
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: make(map[string][]byte)}
}

func (s *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	s.sets++
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func sampleViews() []dto.RecordView {
	return []dto.RecordView{
		{ID: "c-1", Kind: models.KindComplaint, ActorName: "Budi Santoso", Payload: map[string]interface{}{"title": "Water leak"}},
	}
}

func TestViewCacheRoundTrip(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewViewCacheService(repo, nil, time.Minute, nil, true)

	_, ok := svc.GetViews(context.Background(), models.KindComplaint, models.StateActive)
	require.False(t, ok)

	svc.SetViews(context.Background(), models.KindComplaint, models.StateActive, sampleViews())

	views, ok := svc.GetViews(context.Background(), models.KindComplaint, models.StateActive)
	require.True(t, ok)
	require.Len(t, views, 1)
	require.Equal(t, "c-1", views[0].ID)
	require.Equal(t, "Budi Santoso", views[0].ActorName)
	require.Equal(t, "Water leak", views[0].Payload["title"])
}

func TestViewCacheInvalidateKindDropsBothStates(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewViewCacheService(repo, nil, time.Minute, nil, true)

	svc.SetViews(context.Background(), models.KindComplaint, models.StateActive, sampleViews())
	svc.SetViews(context.Background(), models.KindComplaint, models.StateArchived, sampleViews())
	svc.SetViews(context.Background(), models.KindResident, models.StateActive, sampleViews())

	svc.InvalidateKind(context.Background(), models.KindComplaint)

	_, ok := svc.GetViews(context.Background(), models.KindComplaint, models.StateActive)
	require.False(t, ok)
	_, ok = svc.GetViews(context.Background(), models.KindComplaint, models.StateArchived)
	require.False(t, ok)
	_, ok = svc.GetViews(context.Background(), models.KindResident, models.StateActive)
	require.True(t, ok, "other kinds keep their cached views")
}

func TestViewCacheDisabledSkipsRepository(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewViewCacheService(repo, nil, time.Minute, nil, false)

	svc.SetViews(context.Background(), models.KindComplaint, models.StateActive, sampleViews())
	require.Zero(t, repo.sets)

	_, ok := svc.GetViews(context.Background(), models.KindComplaint, models.StateActive)
	require.False(t, ok)
}

func TestViewCacheReadErrorDegradesToMiss(t *testing.T) {
	repo := newCacheRepoStub()
	repo.getErr = appErrors.ErrTransport
	svc := NewViewCacheService(repo, nil, time.Minute, nil, true)

	_, ok := svc.GetViews(context.Background(), models.KindComplaint, models.StateActive)
	require.False(t, ok)
}
