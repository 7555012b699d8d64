// README: Place details enricher: stored details first, provider top-up when incomplete, persisted in the background.
package details

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"placemap/internal/maps"
	"placemap/internal/metrics"
	"placemap/internal/modules/place"
	"placemap/internal/types"
	"placemap/internal/worker"
)

const (
	SourceDB  = "db"
	SourceAPI = "api"

	// DefaultCategory is reported for places without a linked category.
	DefaultCategory = "other"
)

var ErrNotFound = place.ErrNotFound

type Store interface {
	Get(ctx context.Context, id types.ID) (*place.Place, string, error)
	UpdateDetails(ctx context.Context, id types.ID, d place.Details) error
}

type DetailsProvider interface {
	Details(ctx context.Context, externalID string) (*maps.Details, error)
}

type PhotoURLer interface {
	URL(ref string, maxWidth int) string
}

// PlaceDetails is the response of a details lookup.
type PlaceDetails struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Address       *string             `json:"address"`
	Phone         *string             `json:"phone"`
	Website       *string             `json:"website"`
	Photos        []string            `json:"photos"`
	OpeningStatus types.OpeningStatus `json:"openingStatus"`
	Latitude      float64             `json:"latitude"`
	Longitude     float64             `json:"longitude"`
	Category      string              `json:"category"`
	Source        string              `json:"source"`
}

type Service struct {
	store    Store
	provider DetailsProvider
	photos   PhotoURLer
	queue    worker.Submitter
	logger   *zap.Logger
}

// NewService wires the enricher. provider may be nil (stored details only).
func NewService(store Store, provider DetailsProvider, photos PhotoURLer, queue worker.Submitter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, provider: provider, photos: photos, queue: queue, logger: logger}
}

// Get returns the details of a place, enriching incomplete stored details
// from the provider when the place has an external id.
func (s *Service) Get(ctx context.Context, id types.ID) (*PlaceDetails, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, fmt.Errorf("%w: place id required", place.ErrBadRequest)
	}
	p, category, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	final := p.Details
	source := SourceDB

	if !IsComplete(p.Details) && p.ExternalID != nil && s.provider != nil {
		fresh, err := s.provider.Details(ctx, *p.ExternalID)
		switch {
		case err == nil && fresh != nil:
			merged := Merge(p.Details, fresh)
			final = &merged
			source = SourceAPI
			s.persist(p.ID, merged)
		case errors.Is(err, maps.ErrNoDetails):
			s.logger.Debug("provider has no details", zap.String("place_id", string(p.ID)))
		case err != nil:
			s.logger.Warn("provider details failed", zap.String("place_id", string(p.ID)), zap.Error(err))
		}
	}
	if final == nil {
		final = &place.Details{OpeningStatus: types.OpeningUnknown}
	}
	metrics.LookupsTotal.WithLabelValues("details", source).Inc()

	if category == "" {
		category = DefaultCategory
	}
	out := &PlaceDetails{
		ID:            string(p.ID),
		Name:          p.Name,
		Address:       p.Address,
		Phone:         final.Phone,
		Website:       final.Website,
		Photos:        make([]string, 0, len(final.PhotoRefs)),
		OpeningStatus: types.ParseOpeningStatus(string(final.OpeningStatus)),
		Latitude:      p.Location.Lat,
		Longitude:     p.Location.Lng,
		Category:      category,
		Source:        source,
	}
	for _, ref := range final.PhotoRefs {
		out.Photos = append(out.Photos, s.photoURL(ref))
	}
	return out, nil
}

func (s *Service) persist(id types.ID, d place.Details) {
	if s.queue == nil {
		return
	}
	s.queue.Submit(worker.Task{
		Name: "persist-place-details",
		Run: func(ctx context.Context) error {
			if err := s.store.UpdateDetails(ctx, id, d); err != nil {
				return fmt.Errorf("save details of %s: %w", id, err)
			}
			return nil
		},
	})
}

func (s *Service) photoURL(ref string) string {
	if s.photos == nil {
		return ""
	}
	return s.photos.URL(ref, maps.DefaultPhotoWidth)
}

// IsComplete reports whether d has at least one useful field. Nil and
// "unknown only" details are incomplete.
func IsComplete(d *place.Details) bool {
	if d == nil {
		return false
	}
	return hasText(d.Phone) ||
		hasText(d.Website) ||
		len(d.PhotoRefs) > 0 ||
		(d.OpeningStatus != "" && d.OpeningStatus != types.OpeningUnknown)
}

// Merge combines stored details with fresh provider data field by field:
// the provider value when present, else the stored one, else empty/unknown.
func Merge(stored *place.Details, api *maps.Details) place.Details {
	var out place.Details
	var prev place.Details
	if stored != nil {
		prev = *stored
	}
	if api == nil {
		api = &maps.Details{}
	}

	out.Phone = pick(api.Phone, prev.Phone)
	out.Website = pick(api.Website, prev.Website)
	switch {
	case len(api.PhotoRefs) > 0:
		out.PhotoRefs = append([]string(nil), api.PhotoRefs...)
	case len(prev.PhotoRefs) > 0:
		out.PhotoRefs = append([]string(nil), prev.PhotoRefs...)
	}
	out.OpeningStatus = types.OpeningUnknown
	if st := types.ParseOpeningStatus(string(api.OpeningStatus)); st != types.OpeningUnknown {
		out.OpeningStatus = st
	} else if prev.OpeningStatus != "" {
		out.OpeningStatus = types.ParseOpeningStatus(string(prev.OpeningStatus))
	}
	return out
}

func pick(fresh string, stored *string) *string {
	if strings.TrimSpace(fresh) != "" {
		v := fresh
		return &v
	}
	if hasText(stored) {
		v := *stored
		return &v
	}
	return nil
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
