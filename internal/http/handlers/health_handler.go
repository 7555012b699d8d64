// README: Liveness and debug endpoints (DB ping, row counts).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type healthResponse struct {
	Status    string `json:"status"`
	DB        string `json:"db"`
	Timestamp string `json:"timestamp"`
}

type HealthHandler struct {
	db         Pinger
	places     Counter
	categories Counter
	now        func() time.Time
}

func NewHealthHandler(db Pinger, places, categories Counter) *HealthHandler {
	return &HealthHandler{db: db, places: places, categories: categories, now: time.Now}
}

// Health never calls the mapping provider.
func (h *HealthHandler) Health(c *gin.Context) {
	ts := h.now().UTC().Format(timestampLayout)
	if err := h.db.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		writeJSON(c, http.StatusServiceUnavailable, healthResponse{Status: "error", DB: "disconnected", Timestamp: ts})
		return
	}
	writeJSON(c, http.StatusOK, healthResponse{Status: "ok", DB: "connected", Timestamp: ts})
}

func (h *HealthHandler) DebugDB(c *gin.Context) {
	ctx := c.Request.Context()
	places, err := h.places.Count(ctx)
	if err != nil {
		writePlaceError(c, err)
		return
	}
	categories, err := h.categories.Count(ctx)
	if err != nil {
		writePlaceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"placeCount": places, "categoryCount": categories})
}
