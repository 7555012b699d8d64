// README: Geographic helpers: degree-based bounding boxes.
package types

// KmPerDegree is the flat approximation used for bounding boxes.
const KmPerDegree = 111.0

// BoundingBox is an inclusive lat/lng rectangle.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoxAround returns the square box of ±radiusKm/111 degrees around p. The same
// delta is applied to longitude, so boxes get narrower in km toward the poles.
func BoxAround(p Point, radiusKm float64) BoundingBox {
	delta := radiusKm / KmPerDegree
	return BoundingBox{
		MinLat: p.Lat - delta,
		MaxLat: p.Lat + delta,
		MinLng: p.Lng - delta,
		MaxLng: p.Lng + delta,
	}
}

func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}
