// README: Place aggregate, typed details record and the summary shape returned by lookups.
package place

import (
	"errors"
	"strings"
	"time"

	"placemap/internal/maps"
	"placemap/internal/types"
)

var (
	ErrNotFound            = errors.New("place not found")
	ErrBadRequest          = errors.New("bad request")
	ErrDuplicateExternalID = errors.New("external id already stored")
)

// Source is the provenance of a place row.
type Source string

const (
	SourceManual     Source = "manual"
	SourceCSVCity    Source = "csv-city"
	SourceCSVHighway Source = "csv-highway"
	SourceGoogle     Source = "google"
)

// Result source tags for lookups.
const (
	FromDatabase = "database"
	FromExternal = "external"
)

const (
	// MaxRows caps every local query.
	MaxRows = 500
	// DefaultRadiusKm is used by nearby lookups when the caller sends none.
	DefaultRadiusKm = 5.0
)

// Details is the optional contact/photo/opening information of a place. Nil
// Phone or Website means absent; PhotoRefs holds provider references only.
type Details struct {
	Phone         *string             `json:"phone,omitempty"`
	Website       *string             `json:"website,omitempty"`
	PhotoRefs     []string            `json:"photoRefs,omitempty"`
	OpeningStatus types.OpeningStatus `json:"openingStatus"`
}

// Normalize drops blank strings and empty photo refs and coerces unknown
// opening status values.
func (d *Details) Normalize() {
	d.Phone = nonBlank(d.Phone)
	d.Website = nonBlank(d.Website)
	var refs []string
	for _, r := range d.PhotoRefs {
		if strings.TrimSpace(r) != "" {
			refs = append(refs, r)
		}
	}
	d.PhotoRefs = refs
	d.OpeningStatus = types.ParseOpeningStatus(string(d.OpeningStatus))
}

type Place struct {
	ID         types.ID
	Name       string
	Location   types.Point
	Address    *string
	City       *string
	State      *string
	Country    *string
	Source     Source
	ExternalID *string
	Active     bool
	Details    *Details
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Summary is the list item returned by nearby, filter and search lookups.
type Summary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Address   *string `json:"address,omitempty"`

	ExternalID string `json:"externalId,omitempty"`
}

func (p *Place) Summary() Summary {
	s := Summary{
		ID:        string(p.ID),
		Name:      p.Name,
		Latitude:  p.Location.Lat,
		Longitude: p.Location.Lng,
		City:      p.City,
		State:     p.State,
		Address:   p.Address,
	}
	if p.ExternalID != nil {
		s.ExternalID = *p.ExternalID
	}
	return s
}

// Filter selects active places. Empty fields do not constrain the query.
type Filter struct {
	Category string
	// City matches case-insensitively as a substring; CityExact must match exactly.
	City      string
	CityExact string
	State     string
	// Name matches case-insensitively as a substring.
	Name  string
	Box   *types.BoundingBox
	Limit int
}

// NearbyQuery is the input of the fallback lookup.
type NearbyQuery struct {
	Location types.Point
	RadiusKm float64
	Category string
}

type NearbyResult struct {
	Source string    `json:"source"`
	Places []Summary `json:"places"`
}

// NewFromExternal builds an unsaved google-sourced place.
func NewFromExternal(e maps.ExternalPlace) *Place {
	id := e.ExternalID
	return &Place{
		Name:       e.Name,
		Location:   types.Point{Lat: e.Latitude, Lng: e.Longitude},
		Address:    nonBlank(&e.Address),
		Source:     SourceGoogle,
		ExternalID: &id,
		Active:     true,
	}
}

// ExternalSummary is the response shape of a provider result that is not
// stored locally yet; its id is the external identifier.
func ExternalSummary(e maps.ExternalPlace, city *string) Summary {
	return Summary{
		ID:         e.ExternalID,
		Name:       e.Name,
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		City:       city,
		Address:    nonBlank(&e.Address),
		ExternalID: e.ExternalID,
	}
}

func clampLimit(n int) int {
	if n <= 0 || n > MaxRows {
		return MaxRows
	}
	return n
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
