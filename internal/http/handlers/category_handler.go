// README: Category listing endpoint.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"placemap/internal/modules/category"
)

type CategoryLister interface {
	List(ctx context.Context) ([]category.Category, error)
}

type CategoryHandler struct {
	categories CategoryLister
}

func NewCategoryHandler(categories CategoryLister) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(c *gin.Context) {
	out, err := h.categories.List(c.Request.Context())
	if err != nil {
		writePlaceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}
