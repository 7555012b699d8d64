// README: Place service: nearby lookup with provider fallback, plain filter and city listing.
package place

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"placemap/internal/maps"
	"placemap/internal/metrics"
	"placemap/internal/types"
)

// Reader is the query side of the place store.
type Reader interface {
	ListInBox(ctx context.Context, box types.BoundingBox, category string, limit int) ([]Summary, error)
	Search(ctx context.Context, f Filter) ([]Summary, error)
	Cities(ctx context.Context) ([]string, error)
}

// NearbyProvider is the slice of the external provider used for fallback.
type NearbyProvider interface {
	Nearby(ctx context.Context, r maps.NearbyRequest) ([]maps.ExternalPlace, error)
}

// Scheduler queues external results for background persistence.
type Scheduler interface {
	Schedule(places []maps.ExternalPlace, categorySlug string)
}

type Service struct {
	store    Reader
	provider NearbyProvider
	cache    Scheduler
	typeOf   func(slug string) string
	logger   *zap.Logger
}

type Option func(*Service)

// WithProviderTypes overrides how a category slug is translated into a
// provider place type.
func WithProviderTypes(fn func(slug string) string) Option {
	return func(s *Service) { s.typeOf = fn }
}

// NewService wires the lookup. provider and cache may be nil, which disables
// the external fallback.
func NewService(store Reader, provider NearbyProvider, cache Scheduler, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, provider: provider, cache: cache, typeOf: ProviderType, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Nearby answers from the local store when it has at least one match and
// falls back to the provider otherwise. Provider results are scheduled for
// caching and never awaited.
func (s *Service) Nearby(ctx context.Context, q NearbyQuery) (*NearbyResult, error) {
	q.Category = strings.TrimSpace(q.Category)
	if q.Location.IsZero() || q.Category == "" {
		return nil, fmt.Errorf("%w: lat, lng, category required", ErrBadRequest)
	}
	if q.RadiusKm <= 0 || math.IsNaN(q.RadiusKm) {
		q.RadiusKm = DefaultRadiusKm
	}

	local, err := s.store.ListInBox(ctx, types.BoxAround(q.Location, q.RadiusKm), q.Category, MaxRows)
	if err != nil {
		return nil, fmt.Errorf("list places in box: %w", err)
	}
	if len(local) > 0 {
		metrics.LookupsTotal.WithLabelValues("nearby", FromDatabase).Inc()
		return &NearbyResult{Source: FromDatabase, Places: local}, nil
	}

	res := &NearbyResult{Source: FromExternal, Places: []Summary{}}
	metrics.LookupsTotal.WithLabelValues("nearby", FromExternal).Inc()
	if s.provider == nil {
		return res, nil
	}

	external, err := s.provider.Nearby(ctx, maps.NearbyRequest{
		Location:     q.Location,
		RadiusMeters: radiusMeters(q.RadiusKm),
		Type:         s.typeOf(q.Category),
	})
	if err != nil {
		s.logger.Warn("external nearby search failed",
			zap.String("category", q.Category),
			zap.Error(err),
		)
		return res, nil
	}

	for _, e := range external {
		res.Places = append(res.Places, ExternalSummary(e, nil))
	}
	if s.cache != nil {
		s.cache.Schedule(external, q.Category)
	}
	return res, nil
}

// Filter is the plain listing path: exact city/state, name substring, category.
func (s *Service) Filter(ctx context.Context, f Filter) ([]Summary, error) {
	f.Limit = clampLimit(f.Limit)
	out, err := s.store.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("filter places: %w", err)
	}
	return out, nil
}

func (s *Service) Cities(ctx context.Context) ([]string, error) {
	return s.store.Cities(ctx)
}

// ProviderType is the default slug-to-type mapping: the first "-" becomes "_".
func ProviderType(slug string) string {
	return strings.Replace(slug, "-", "_", 1)
}

func radiusMeters(km float64) uint {
	m := km * 1000
	if m > maps.MaxRadiusMeters {
		return maps.MaxRadiusMeters
	}
	return uint(m)
}
