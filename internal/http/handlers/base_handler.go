// README: Base handler utilities (JSON helpers, error mapping, query parsing).
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"placemap/internal/modules/place"
	"placemap/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

type errorMessageResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writePlaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, place.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, place.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// queryFloat parses a numeric query parameter. Missing or malformed values are 0.
func queryFloat(c *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Query(key)), 64)
	if err != nil {
		return 0
	}
	return v
}

// queryPoint reads lat/lng; ok is false when either is missing or zero.
func queryPoint(c *gin.Context) (types.Point, bool) {
	p := types.Point{Lat: queryFloat(c, "lat"), Lng: queryFloat(c, "lng")}
	return p, !p.IsZero()
}

// parseLatLng parses "lat,lng".
func parseLatLng(v string) (types.Point, bool) {
	latStr, lngStr, ok := strings.Cut(v, ",")
	if !ok {
		return types.Point{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return types.Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return types.Point{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
