// README: API gateway; holds module services and builds the gin engine.
package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"placemap/internal/http/handlers"
	"placemap/internal/http/middleware"
)

type ServerDeps struct {
	Places     handlers.PlaceLookup
	Search     handlers.SmartSearcher
	Details    handlers.DetailsGetter
	Categories handlers.CategoryLister

	// Routes is nil when no provider key is configured.
	Routes handlers.RouteFinder

	DB              handlers.Pinger
	PlaceCounter    handlers.Counter
	CategoryCounter handlers.Counter

	Logger    *zap.Logger
	AccessLog bool
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(s.deps.Logger), middleware.Logging(s.deps.Logger, s.deps.AccessLog))
	registerRoutes(r, s.deps)
	return r
}
