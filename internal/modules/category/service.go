// README: Category service with an in-process cache of the (rarely changing) list.
package category

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	listKey    = "categories"
	DefaultTTL = 5 * time.Minute
)

type Lister interface {
	List(ctx context.Context) ([]Category, error)
	Upsert(ctx context.Context, c Category) error
}

type Service struct {
	store Lister
	cache *cache.Cache
}

func NewService(store Lister, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, cache: cache.New(ttl, 2*ttl)}
}

// List returns categories ordered by display name, served from cache when warm.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	if v, ok := s.cache.Get(listKey); ok {
		return v.([]Category), nil
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(listKey, list)
	return list, nil
}

// Exists reports whether slug is a known category.
func (s *Service) Exists(ctx context.Context, slug string) (bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range list {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// Seed upserts cats and drops the cached list.
func (s *Service) Seed(ctx context.Context, cats []Category) error {
	for _, c := range cats {
		if err := s.store.Upsert(ctx, c); err != nil {
			return err
		}
	}
	s.cache.Delete(listKey)
	return nil
}
