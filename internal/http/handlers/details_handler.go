// README: Place details endpoint; enriches stored contact info from the provider on demand.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"placemap/internal/modules/details"
	"placemap/internal/types"
)

type DetailsGetter interface {
	Get(ctx context.Context, id types.ID) (*details.PlaceDetails, error)
}

type DetailsHandler struct {
	details DetailsGetter
}

func NewDetailsHandler(d DetailsGetter) *DetailsHandler {
	return &DetailsHandler{details: d}
}

func (h *DetailsHandler) Get(c *gin.Context) {
	out, err := h.details.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writePlaceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}
