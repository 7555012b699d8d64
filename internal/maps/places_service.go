package maps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"placemap/internal/metrics"
	"placemap/internal/types"
)

const (
	// MaxRadiusMeters is the provider's hard cap for nearby/text search radius.
	MaxRadiusMeters = 50000
	// DefaultPhotoWidth is used when callers don't ask for a specific width.
	DefaultPhotoWidth = 400

	defaultPhotoBaseURL = "https://maps.googleapis.com"
	photoPath           = "/maps/api/place/photo"
)

var (
	// ErrNoDetails means the provider answered but had nothing for the place.
	ErrNoDetails = errors.New("no place details from provider")
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("maps provider not configured")
)

// ExternalPlace is a provider result normalized into the local place shape.
type ExternalPlace struct {
	ExternalID string  `json:"externalId"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address,omitempty"`
}

type NearbyRequest struct {
	Location     types.Point
	RadiusMeters uint
	// Type is the provider place type, e.g. "hospital" or "gas_station".
	Type string
}

type TextSearchRequest struct {
	Query string
	// Location and RadiusMeters bias results around a point; both or neither.
	Location     *types.Point
	RadiusMeters uint
}

// Details is what the provider knows about a single place.
type Details struct {
	Phone         string
	Website       string
	PhotoRefs     []string
	OpeningStatus types.OpeningStatus
}

// Provider is the read-only contract of the external mapping API.
type Provider interface {
	Nearby(ctx context.Context, r NearbyRequest) ([]ExternalPlace, error)
	TextSearch(ctx context.Context, r TextSearchRequest) ([]ExternalPlace, error)
	Details(ctx context.Context, externalID string) (*Details, error)
}

type Option func(*options)

type options struct {
	baseURL  string
	timeout  time.Duration
	language string
	region   string
}

// WithBaseURL points the client at another host (tests use an httptest server).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLanguage(lang, region string) Option {
	return func(o *options) {
		o.language = lang
		o.region = region
	}
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
	opts   options
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string, opts ...Option) (*PlacesService, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	clientOpts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(o.baseURL))
	}
	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client, opts: o}, nil
}

// Nearby runs a nearby search. The radius is clamped to MaxRadiusMeters.
func (s *PlacesService) Nearby(ctx context.Context, r NearbyRequest) ([]ExternalPlace, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: r.Location.Lat, Lng: r.Location.Lng},
		Radius:   clampRadius(r.RadiusMeters),
		Type:     maps.PlaceType(r.Type),
		Language: s.opts.language,
	}

	start := time.Now()
	resp, err := s.client.NearbySearch(ctx, req)
	observe("nearby", start, err)
	if err != nil {
		return nil, fmt.Errorf("places nearby search: %w", err)
	}

	out := make([]ExternalPlace, 0, len(resp.Results))
	for _, p := range resp.Results {
		out = append(out, toExternalPlace(p, p.Vicinity))
	}
	return out, nil
}

// TextSearch runs a free-text search. An empty query searches for "places".
func (s *PlacesService) TextSearch(ctx context.Context, r TextSearchRequest) ([]ExternalPlace, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := strings.TrimSpace(r.Query)
	if query == "" {
		query = "places"
	}
	req := &maps.TextSearchRequest{
		Query:    query,
		Language: s.opts.language,
	}
	if r.Location != nil {
		req.Location = &maps.LatLng{Lat: r.Location.Lat, Lng: r.Location.Lng}
		req.Radius = clampRadius(r.RadiusMeters)
	}

	start := time.Now()
	resp, err := s.client.TextSearch(ctx, req)
	observe("text", start, err)
	if err != nil {
		return nil, fmt.Errorf("places text search: %w", err)
	}

	out := make([]ExternalPlace, 0, len(resp.Results))
	for _, p := range resp.Results {
		out = append(out, toExternalPlace(p, p.FormattedAddress))
	}
	return out, nil
}

var detailsFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskName,
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
	maps.PlaceDetailsFieldMaskInternationalPhoneNumber,
	maps.PlaceDetailsFieldMaskWebsite,
	maps.PlaceDetailsFieldMaskPhotos,
	maps.PlaceDetailsFieldMaskOpeningHours,
}

// Details fetches contact, photo and opening information for externalID.
// Phone prefers the international format.
func (s *PlacesService) Details(ctx context.Context, externalID string) (*Details, error) {
	if externalID == "" {
		return nil, ErrNoDetails
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  externalID,
		Fields:   detailsFields,
		Language: s.opts.language,
	})
	observe("details", start, err)
	if err != nil {
		if strings.Contains(err.Error(), "NOT_FOUND") {
			return nil, ErrNoDetails
		}
		return nil, fmt.Errorf("place details: %w", err)
	}
	// ZERO_RESULTS is not an error for the client library; it yields an empty result.
	if res.PlaceID == "" && res.Name == "" {
		return nil, ErrNoDetails
	}

	d := &Details{
		Phone:         firstNonEmpty(res.InternationalPhoneNumber, res.FormattedPhoneNumber),
		Website:       res.Website,
		PhotoRefs:     make([]string, 0, len(res.Photos)),
		OpeningStatus: types.OpeningUnknown,
	}
	for _, ph := range res.Photos {
		if ph.PhotoReference != "" {
			d.PhotoRefs = append(d.PhotoRefs, ph.PhotoReference)
		}
	}
	if res.OpeningHours != nil && res.OpeningHours.OpenNow != nil {
		if *res.OpeningHours.OpenNow {
			d.OpeningStatus = types.OpeningOpen
		} else {
			d.OpeningStatus = types.OpeningClosed
		}
	}
	return d, nil
}

func (s *PlacesService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.timeout)
}

// PhotoURLBuilder turns stored photo references into fetchable URLs. Only the
// reference is ever persisted; the key is attached at read time.
type PhotoURLBuilder struct {
	APIKey  string
	BaseURL string
}

// URL returns "" when no API key is configured.
func (b PhotoURLBuilder) URL(ref string, maxWidth int) string {
	if b.APIKey == "" || ref == "" {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = DefaultPhotoWidth
	}
	base := b.BaseURL
	if base == "" {
		base = defaultPhotoBaseURL
	}
	return base + photoPath +
		"?maxwidth=" + strconv.Itoa(maxWidth) +
		"&photoreference=" + url.QueryEscape(ref) +
		"&key=" + url.QueryEscape(b.APIKey)
}

func toExternalPlace(p maps.PlacesSearchResult, address string) ExternalPlace {
	return ExternalPlace{
		ExternalID: p.PlaceID,
		Name:       p.Name,
		Latitude:   p.Geometry.Location.Lat,
		Longitude:  p.Geometry.Location.Lng,
		Address:    address,
	}
}

func clampRadius(r uint) uint {
	if r == 0 {
		return 1
	}
	if r > MaxRadiusMeters {
		return MaxRadiusMeters
	}
	return r
}

func observe(method string, start time.Time, err error) {
	metrics.ProviderDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ProviderRequests.WithLabelValues(method, outcome).Inc()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
