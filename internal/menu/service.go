package menu

import (
	"context"
	"errors"
)

// Reader is the storage dependency of Service, satisfied by *Store.
type Reader interface {
	Get(ctx context.Context, id string) (MenuItem, error)
	GetBatch(ctx context.Context, ids []string) (map[string]MenuItem, error)
	List(ctx context.Context) ([]MenuItem, error)
}

// Service answers catalog lookups through the cache, falling back to the
// store on a miss. Cache failures degrade to direct reads.
type Service struct {
	Reader Reader
	Cache  *Cache
}

// GetMenuItem resolves one catalog entry.
func (s *Service) GetMenuItem(ctx context.Context, id string) (MenuItem, error) {
	if s == nil || s.Reader == nil {
		return MenuItem{}, errors.New("menu: service not configured")
	}
	var cached MenuItem
	if ok, err := s.Cache.GetItem(ctx, id, &cached); err == nil && ok {
		return cached, nil
	}
	item, err := s.Reader.Get(ctx, id)
	if err != nil {
		return MenuItem{}, err
	}
	_ = s.Cache.SetItem(ctx, item)
	return item, nil
}

// GetMenuItemsBatch resolves the requested ids, serving what it can from the
// cache and fetching the remainder in a single query. Ids that resolve
// nowhere are omitted from the map.
func (s *Service) GetMenuItemsBatch(ctx context.Context, ids []string) (map[string]MenuItem, error) {
	if s == nil || s.Reader == nil {
		return nil, errors.New("menu: service not configured")
	}
	result := make(map[string]MenuItem, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range dedupe(ids) {
		var cached MenuItem
		if ok, err := s.Cache.GetItem(ctx, id, &cached); err == nil && ok {
			result[cached.ID] = cached
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}
	fetched, err := s.Reader.GetBatch(ctx, missing)
	if err != nil {
		return result, err
	}
	for id, item := range fetched {
		result[id] = item
		_ = s.Cache.SetItem(ctx, item)
	}
	return result, nil
}

// List returns the whole catalog for the storefront menu page.
func (s *Service) List(ctx context.Context) ([]MenuItem, error) {
	if s == nil || s.Reader == nil {
		return nil, errors.New("menu: service not configured")
	}
	return s.Reader.List(ctx)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
