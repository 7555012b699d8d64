// README: Smart search: intent detection, local search, provider top-up below a threshold, merge.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"placemap/internal/ai"
	"placemap/internal/maps"
	"placemap/internal/metrics"
	"placemap/internal/modules/place"
	"placemap/internal/types"
)

const (
	// DefaultThreshold is the local result count at which the provider is skipped.
	DefaultThreshold = 10
	// DefaultNearMeRadiusKm bounds near-me queries locally and at the provider.
	DefaultNearMeRadiusKm = 10.0
)

type Store interface {
	Search(ctx context.Context, f place.Filter) ([]place.Summary, error)
	FindByExternalIDs(ctx context.Context, ids []string) (map[string]place.Summary, error)
}

type TextSearcher interface {
	TextSearch(ctx context.Context, r maps.TextSearchRequest) ([]maps.ExternalPlace, error)
}

// Request is a free-text search. Category and City, when set, override what
// the query text suggests.
type Request struct {
	Query    string
	Category string
	City     string
	// State is accepted from the listing endpoint but does not narrow smart search.
	State    string
	Location *types.Point
}

type Service struct {
	store      Store
	provider   TextSearcher
	cache      place.Scheduler
	vocab      *Vocabulary
	classifier ai.CategoryClassifier
	threshold  int
	radiusKm   float64
	logger     *zap.Logger
}

type Option func(*Service)

func WithThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.threshold = n
		}
	}
}

func WithNearMeRadius(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.radiusKm = km
		}
	}
}

// WithClassifier enables the model fallback for queries no keyword matches.
func WithClassifier(c ai.CategoryClassifier) Option {
	return func(s *Service) { s.classifier = c }
}

// NewService wires smart search. provider and cache may be nil.
func NewService(store Store, provider TextSearcher, cache place.Scheduler, vocab *Vocabulary, logger *zap.Logger, opts ...Option) *Service {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		provider:  provider,
		cache:     cache,
		vocab:     vocab,
		threshold: DefaultThreshold,
		radiusKm:  DefaultNearMeRadiusKm,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search returns local matches first and, when there are fewer than the
// threshold, provider matches that are not already known. An empty query
// returns an empty list without touching the store or the provider.
func (s *Service) Search(ctx context.Context, req Request) ([]place.Summary, error) {
	if strings.TrimSpace(req.Query) == "" {
		return []place.Summary{}, nil
	}

	in := s.Intent(ctx, req)

	f := place.Filter{
		Category: in.Category,
		City:     in.City,
		Name:     in.Query,
		Limit:    place.MaxRows,
	}
	if in.HasNearLocation() {
		box := types.BoxAround(*in.Location, s.radiusKm)
		f.Box = &box
	}
	local, err := s.store.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("local search: %w", err)
	}
	if len(local) >= s.threshold || s.provider == nil {
		metrics.LookupsTotal.WithLabelValues("search", place.FromDatabase).Inc()
		return local, nil
	}

	external, err := s.provider.TextSearch(ctx, s.externalRequest(in))
	if err != nil {
		s.logger.Warn("external text search failed", zap.String("query", in.Query), zap.Error(err))
		metrics.LookupsTotal.WithLabelValues("search", place.FromDatabase).Inc()
		return local, nil
	}
	if len(external) > 0 && in.Category != "" && s.cache != nil {
		s.cache.Schedule(external, in.Category)
	}

	ids := make([]string, 0, len(external))
	for _, e := range external {
		if e.ExternalID != "" {
			ids = append(ids, e.ExternalID)
		}
	}
	known, err := s.store.FindByExternalIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("external id lookup failed", zap.Error(err))
		known = nil
	}

	metrics.LookupsTotal.WithLabelValues("search", place.FromExternal).Inc()
	return Merge(local, external, known), nil
}

// Intent resolves the structured intent of req, consulting the classifier
// only when neither the caller nor the keyword table named a category. The
// classifier only adds a category; the leftover text stays the name filter.
func (s *Service) Intent(ctx context.Context, req Request) Intent {
	in := s.vocab.Detect(req.Query, req.Location)
	if c := strings.TrimSpace(req.Category); c != "" {
		in.Category = c
	}
	if c := strings.TrimSpace(req.City); c != "" {
		in.City = c
	}
	if in.Category == "" && s.classifier != nil && in.Query != "" {
		slug, err := s.classifier.ClassifyCategory(ctx, in.Query, s.vocab.Slugs())
		switch {
		case err != nil:
			s.logger.Warn("category classifier failed", zap.Error(err))
		case slug != "":
			in.Category = slug
		}
	}
	return in
}

func (s *Service) externalRequest(in Intent) maps.TextSearchRequest {
	q := in.Query
	if in.Category != "" {
		q = strings.TrimSpace(humanize(in.Category) + " " + q)
	}
	if in.City != "" {
		q = strings.TrimSpace(q + " in " + in.City)
	}
	r := maps.TextSearchRequest{Query: q}
	if in.HasNearLocation() {
		loc := *in.Location
		r.Location = &loc
		r.RadiusMeters = uint(s.radiusKm * 1000)
	}
	return r
}

func humanize(slug string) string {
	return strings.Replace(slug, "-", " ", 1)
}
