package memories

import (
	"context"

	"github.com/everkeep/backend/internal/models"
)

// Cache keys. The list, video, and latest payloads are the ones worth a warm
// start, so they are the persisted ones.
const (
	keyList   = "memories:list"
	keyVideos = "memories:videos"
	keyLatest = "memories:latest"
	keyByID   = "memories:id:"
)

const latestStripSize = 6

// Service is the read/write surface the HTTP handlers consume. Reads go
// through the query cache; the only write (create) goes straight to the
// remote API and invalidates the affected cache keys on success.
type Service struct {
	cache     *Cache
	client    *Client
	latest    LatestSource
	reconcile func(cached, fresh []models.Memory) []models.Memory
}

// NewService wires the cache, remote client, and optional latest-memories
// source. When byID is set, reconciliation compares records by id instead of
// by position.
func NewService(cache *Cache, client *Client, latest LatestSource, byID bool) *Service {
	reconcile := Reconcile
	if byID {
		reconcile = ReconcileByID
	}
	return &Service{
		cache:     cache,
		client:    client,
		latest:    latest,
		reconcile: reconcile,
	}
}

// List returns the memory gallery, filtered and ordered.
func (s *Service) List(ctx context.Context, filter Filter) ([]models.Memory, error) {
	items, err := Query(ctx, s.cache, keyList, s.client.List, QueryOptions[[]models.Memory]{
		Persist:   true,
		Reconcile: s.reconcile,
	})
	if err != nil {
		return nil, err
	}
	return filter.Apply(items), nil
}

// Get returns a single memory by id.
func (s *Service) Get(ctx context.Context, id string) (models.Memory, error) {
	return Query(ctx, s.cache, keyByID+id, func(ctx context.Context) (models.Memory, error) {
		return s.client.Get(ctx, id)
	}, QueryOptions[models.Memory]{})
}

// Videos returns the memories carrying at least one video, for the video
// gallery. The result has its own cache key and persistent copy.
func (s *Service) Videos(ctx context.Context) ([]models.Memory, error) {
	return Query(ctx, s.cache, keyVideos, func(ctx context.Context) ([]models.Memory, error) {
		items, err := s.client.List(ctx)
		if err != nil {
			return nil, err
		}
		videos := make([]models.Memory, 0)
		for _, item := range items {
			if item.HasVideo() {
				videos = append(videos, item)
			}
		}
		return videos, nil
	}, QueryOptions[[]models.Memory]{
		Persist:   true,
		Reconcile: s.reconcile,
	})
}

// Latest returns the latest-memories strip from the Supabase source. Without
// a configured source it falls back to the newest entries of the main list.
func (s *Service) Latest(ctx context.Context) ([]models.Memory, error) {
	if s.latest == nil {
		items, err := s.List(ctx, Filter{Sort: SortNewest})
		if err != nil {
			return nil, err
		}
		if len(items) > latestStripSize {
			items = items[:latestStripSize]
		}
		return items, nil
	}

	return Query(ctx, s.cache, keyLatest, func(ctx context.Context) ([]models.Memory, error) {
		return s.latest.Latest(ctx, latestStripSize)
	}, QueryOptions[[]models.Memory]{
		Persist:   true,
		Reconcile: s.reconcile,
	})
}

// Tags returns every tag in use, deduplicated and sorted.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	items, err := s.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	return CollectTags(items), nil
}

// Create submits a new memory and, on success, invalidates the list-shaped
// caches so the next read sees it.
func (s *Service) Create(ctx context.Context, draft models.MemoryDraft, files []FileUpload) (models.Memory, error) {
	created, err := s.client.Create(ctx, draft, files)
	if err != nil {
		return models.Memory{}, err
	}

	s.cache.Invalidate(ctx, keyList, keyVideos, keyLatest)
	return created, nil
}
