// README: Common value objects shared across modules (IDs, coordinates, opening status).
package types

type ID string

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether either coordinate is missing. A literal 0 latitude or
// longitude is treated as "not supplied", matching how clients send empty values.
func (p Point) IsZero() bool {
	return p.Lat == 0 || p.Lng == 0
}

type OpeningStatus string

const (
	OpeningOpen    OpeningStatus = "open"
	OpeningClosed  OpeningStatus = "closed"
	OpeningUnknown OpeningStatus = "unknown"
)

// ParseOpeningStatus maps anything unrecognised to OpeningUnknown.
func ParseOpeningStatus(v string) OpeningStatus {
	switch OpeningStatus(v) {
	case OpeningOpen:
		return OpeningOpen
	case OpeningClosed:
		return OpeningClosed
	default:
		return OpeningUnknown
	}
}
