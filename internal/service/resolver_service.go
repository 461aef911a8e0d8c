package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

type actorDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Actor, error)
}

type resolverMetrics interface {
	RecordResolverLookup(cached bool)
}

// ResolverService turns actor user IDs into display names for list views.
//
// Every attempted lookup outcome is cached, including misses and failures, so
// one session never issues more than one point lookup per distinct actor ID.
// An empty cached value marks an ID that produced no usable name; the view
// then falls back to the record's own contact fields.
type ResolverService struct {
	directory actorDirectory
	cache     *expirable.LRU[string, string]
	metrics   resolverMetrics
	logger    *zap.Logger
}

// NewResolverService constructs the resolver with an expiring LRU cache.
func NewResolverService(directory actorDirectory, metrics resolverMetrics, logger *zap.Logger, cacheSize int, cacheTTL time.Duration) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = 2048
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &ResolverService{
		directory: directory,
		cache:     expirable.NewLRU[string, string](cacheSize, nil, cacheTTL),
		metrics:   metrics,
		logger:    logger,
	}
}

// ResolveBatch resolves every distinct actor reference in the given records.
// Uncached IDs are looked up concurrently, one round trip per distinct ID,
// and all lookups complete before the method returns. The result holds an
// entry for every referenced ID; "" marks IDs without a usable name.
func (s *ResolverService) ResolveBatch(ctx context.Context, records []models.Record, desc models.KindDescriptor) map[string]string {
	resolved := make(map[string]string)
	if desc.ActorRefField == "" {
		return resolved
	}

	pending := make([]string, 0)
	for _, rec := range records {
		id := strings.TrimSpace(rec.StringField(desc.ActorRefField))
		if id == "" {
			continue
		}
		if _, seen := resolved[id]; seen {
			continue
		}
		if name, ok := s.cache.Get(id); ok {
			resolved[id] = name
			s.record(true)
			continue
		}
		resolved[id] = ""
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return resolved
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range pending {
		wg.Add(1)
		go func(actorID string) {
			defer wg.Done()
			name := s.lookup(ctx, actorID)
			mu.Lock()
			resolved[actorID] = name
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return resolved
}

func (s *ResolverService) lookup(ctx context.Context, id string) string {
	s.record(false)
	actor, err := s.directory.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			s.logger.Warn("actor lookup failed", zap.String("actor_id", id), zap.Error(err))
		}
		s.cache.Add(id, "")
		return ""
	}
	name := actor.DisplayName()
	s.cache.Add(id, name)
	return name
}

func (s *ResolverService) record(cached bool) {
	if s.metrics != nil {
		s.metrics.RecordResolverLookup(cached)
	}
}

// displayActorName applies the display fallback chain for one record: the
// resolved directory name, then the record's own contact fields in
// descriptor order, then the Unknown placeholder.
func displayActorName(rec models.Record, desc models.KindDescriptor, resolved map[string]string) string {
	if desc.ActorRefField != "" {
		if id := strings.TrimSpace(rec.StringField(desc.ActorRefField)); id != "" {
			if name := resolved[id]; name != "" {
				return name
			}
		}
	}
	for _, field := range desc.ContactFields {
		if v := strings.TrimSpace(rec.StringField(field)); v != "" {
			return v
		}
	}
	return models.UnknownActorName
}
