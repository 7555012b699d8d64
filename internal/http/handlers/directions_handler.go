// README: Driving directions between two coordinates via the mapping provider.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"placemap/internal/maps"
	"placemap/internal/types"
)

type RouteFinder interface {
	Directions(ctx context.Context, origin, destination types.Point) (*maps.Route, error)
}

type DirectionsHandler struct {
	routes RouteFinder
}

// NewDirectionsHandler accepts a nil finder when no provider key is configured.
func NewDirectionsHandler(routes RouteFinder) *DirectionsHandler {
	return &DirectionsHandler{routes: routes}
}

func (h *DirectionsHandler) Get(c *gin.Context) {
	origin, okOrigin := parseLatLng(c.Query("origin"))
	destination, okDest := parseLatLng(c.Query("destination"))
	if !okOrigin || !okDest {
		writeError(c, http.StatusBadRequest, "origin and destination required (format: lat,lng)")
		return
	}
	if h.routes == nil {
		writeError(c, http.StatusServiceUnavailable, "directions not configured")
		return
	}

	route, err := h.routes.Directions(c.Request.Context(), origin, destination)
	var status *maps.StatusError
	switch {
	case err == nil:
		writeJSON(c, http.StatusOK, route)
	case errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusNotFound, "No route found")
	case errors.As(err, &status):
		msg := status.Message
		if msg == "" {
			msg = "Directions not available"
		}
		writeJSON(c, http.StatusBadRequest, errorMessageResponse{Error: status.Status, Message: msg})
	default:
		_ = c.Error(err)
		writeJSON(c, http.StatusInternalServerError, errorMessageResponse{
			Error:   "Failed to get directions",
			Message: err.Error(),
		})
	}
}
