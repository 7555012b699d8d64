// README: Place endpoints: plain listing, smart search, nearby lookup with fallback, cities.
package handlers

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"placemap/internal/modules/place"
	"placemap/internal/modules/search"
)

type PlaceLookup interface {
	Nearby(ctx context.Context, q place.NearbyQuery) (*place.NearbyResult, error)
	Filter(ctx context.Context, f place.Filter) ([]place.Summary, error)
	Cities(ctx context.Context) ([]string, error)
}

type SmartSearcher interface {
	Search(ctx context.Context, req search.Request) ([]place.Summary, error)
}

type PlaceHandler struct {
	places PlaceLookup
	search SmartSearcher
}

func NewPlaceHandler(places PlaceLookup, search SmartSearcher) *PlaceHandler {
	return &PlaceHandler{places: places, search: search}
}

// List is GET /api/places. With a query it behaves like Search; otherwise it
// filters by exact city/state and category.
func (h *PlaceHandler) List(c *gin.Context) {
	if strings.TrimSpace(c.Query("query")) != "" {
		h.Search(c)
		return
	}
	out, err := h.places.Filter(c.Request.Context(), place.Filter{
		Category:  c.Query("category"),
		CityExact: c.Query("city"),
		State:     c.Query("state"),
		Limit:     place.MaxRows,
	})
	if err != nil {
		writePlaceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *PlaceHandler) Search(c *gin.Context) {
	req := search.Request{
		Query:    c.Query("query"),
		Category: c.Query("category"),
		City:     c.Query("city"),
		State:    c.Query("state"),
	}
	if p, ok := queryPoint(c); ok {
		req.Location = &p
	}
	out, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		writePlaceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *PlaceHandler) Nearby(c *gin.Context) {
	loc, ok := queryPoint(c)
	category := strings.TrimSpace(c.Query("category"))
	if !ok || category == "" {
		writeError(c, http.StatusBadRequest, "lat, lng, category required")
		return
	}
	radius := place.DefaultRadiusKm
	if c.Query("radius") != "" {
		radius = queryFloat(c, "radius")
		if math.IsInf(radius, 0) {
			radius = 0
		}
	}
	res, err := h.places.Nearby(c.Request.Context(), place.NearbyQuery{
		Location: loc,
		RadiusKm: radius,
		Category: category,
	})
	if err != nil {
		writePlaceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *PlaceHandler) Cities(c *gin.Context) {
	out, err := h.places.Cities(c.Request.Context())
	if err != nil {
		writePlaceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}
