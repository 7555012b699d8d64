// README: Merges local and provider search results without duplicates.
package search

import (
	"math"
	"strings"

	"placemap/internal/maps"
	"placemap/internal/modules/place"
)

// ProximityDegrees is the per-axis distance under which two places are the
// same (about 50 m at the equator).
const ProximityDegrees = 0.0005

// Merge appends provider results to local ones. A result whose external id
// is stored locally is replaced by the stored record (once). Any result,
// stored or not, lying within ProximityDegrees of an already merged place is
// dropped.
// Local order is kept, followed by provider order.
func Merge(local []place.Summary, external []maps.ExternalPlace, known map[string]place.Summary) []place.Summary {
	out := make([]place.Summary, 0, len(local)+len(external))
	out = append(out, local...)
	ids := make(map[string]bool, len(out))
	for _, p := range out {
		ids[p.ID] = true
	}

	for _, e := range external {
		if stored, ok := known[e.ExternalID]; ok && e.ExternalID != "" {
			if !ids[stored.ID] && !near(out, stored.Latitude, stored.Longitude) {
				out = append(out, stored)
				ids[stored.ID] = true
			}
			continue
		}
		if near(out, e.Latitude, e.Longitude) {
			continue
		}
		out = append(out, place.ExternalSummary(e, CityFromAddress(e.Address)))
		ids[e.ExternalID] = true
	}
	return out
}

func near(list []place.Summary, lat, lng float64) bool {
	for _, p := range list {
		if math.Abs(p.Latitude-lat) < ProximityDegrees && math.Abs(p.Longitude-lng) < ProximityDegrees {
			return true
		}
	}
	return false
}

// CityFromAddress guesses the city of a "street, city, state, country"
// address: the third segment from the end, else the second from the end.
func CityFromAddress(address string) *string {
	if address == "" {
		return nil
	}
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	n := len(parts)
	if n < 2 {
		return nil
	}
	if n >= 3 && parts[n-3] != "" {
		return &parts[n-3]
	}
	if parts[n-2] != "" {
		return &parts[n-2]
	}
	return nil
}
