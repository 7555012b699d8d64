package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"placemap/internal/types"
)

// ErrNoRoute means the provider answered but found no route between the points.
var ErrNoRoute = errors.New("no route found")

// StatusError is a non-OK status answered by the provider, as opposed to a
// transport failure.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "maps: " + e.Status
	}
	return "maps: " + e.Status + " - " + e.Message
}

// statusError recovers the provider status from the client's "maps: STATUS - message" errors.
func statusError(err error) error {
	rest, ok := strings.CutPrefix(err.Error(), "maps: ")
	if !ok {
		return fmt.Errorf("maps api error: %w", err)
	}
	status, msg, _ := strings.Cut(rest, " - ")
	if status == "" || strings.ContainsAny(status, " :") {
		return fmt.Errorf("maps api error: %w", err)
	}
	return &StatusError{Status: status, Message: msg}
}

// Step is a single turn-by-turn instruction.
type Step struct {
	Instruction string `json:"instruction"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
}

// Route is the first leg of the provider's preferred route. Coordinates are
// [lat, lng] pairs decoded from the overview polyline.
type Route struct {
	Distance       string       `json:"distance"`
	Duration       string       `json:"duration"`
	DistanceMeters int          `json:"distanceMeters"`
	DurationSec    float64      `json:"durationSec"`
	StartAddress   string       `json:"startAddress"`
	EndAddress     string       `json:"endAddress"`
	Coordinates    [][2]float64 `json:"coordinates"`
	Steps          []Step       `json:"steps"`
}

// RouteService handles interactions with Google Directions API.
type RouteService struct {
	client *maps.Client
	opts   options
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string, opts ...Option) (*RouteService, error) {
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
	return &RouteService{client: client, opts: o}, nil
}

// Directions returns a driving route from origin to destination.
// It assumes driving mode.
func (s *RouteService) Directions(ctx context.Context, origin, destination types.Point) (*Route, error) {
	if s.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.timeout)
		defer cancel()
	}

	r := &maps.DirectionsRequest{
		Origin:      latLngString(origin),
		Destination: latLngString(destination),
		Mode:        maps.TravelModeDriving,
		Language:    s.opts.language,
		Region:      s.opts.region,
	}

	start := time.Now()
	routes, _, err := s.client.Directions(ctx, r)
	observe("directions", start, err)
	if err != nil {
		return nil, statusError(err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	out := &Route{
		Distance:       leg.Distance.HumanReadable,
		Duration:       humanDuration(leg.Duration),
		DistanceMeters: leg.Distance.Meters,
		DurationSec:    leg.Duration.Seconds(),
		StartAddress:   leg.StartAddress,
		EndAddress:     leg.EndAddress,
		Coordinates:    [][2]float64{},
		Steps:          make([]Step, 0, len(leg.Steps)),
	}
	for _, st := range leg.Steps {
		out.Steps = append(out.Steps, Step{
			Instruction: st.HTMLInstructions,
			Distance:    st.Distance.HumanReadable,
			Duration:    humanDuration(st.Duration),
		})
	}
	pts, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	for _, p := range pts {
		out.Coordinates = append(out.Coordinates, [2]float64{p.Lat, p.Lng})
	}
	return out, nil
}

func latLngString(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

// humanDuration renders d the way the provider's text fields do: "1 min",
// "12 mins", "1 hour 5 mins", "2 days 3 hours".
func humanDuration(d time.Duration) string {
	mins := int(d.Round(time.Minute) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	days, hours := mins/(24*60), (mins/60)%24
	mins %= 60
	switch {
	case days > 0:
		return plural(days, "day") + " " + plural(hours, "hour")
	case hours > 0:
		if mins == 0 {
			return plural(hours, "hour")
		}
		return plural(hours, "hour") + " " + plural(mins, "min")
	default:
		return plural(mins, "min")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
