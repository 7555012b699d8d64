// README: HTTP route registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"placemap/internal/http/handlers"
)

func registerRoutes(r *gin.Engine, deps ServerDeps) {
	placeHandler := handlers.NewPlaceHandler(deps.Places, deps.Search)
	r.GET("/api/places", placeHandler.List)
	r.GET("/api/places/search", placeHandler.Search)
	r.GET("/api/places/nearby", placeHandler.Nearby)
	r.GET("/api/places/cities", placeHandler.Cities)

	detailsHandler := handlers.NewDetailsHandler(deps.Details)
	r.GET("/api/places/:id/details", detailsHandler.Get)

	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	r.GET("/api/categories", categoryHandler.List)

	directionsHandler := handlers.NewDirectionsHandler(deps.Routes)
	r.GET("/api/directions", directionsHandler.Get)

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.PlaceCounter, deps.CategoryCounter)
	r.GET("/health", healthHandler.Health)
	r.GET("/debug/db", healthHandler.DebugDB)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Map backend is running")
	})
}
