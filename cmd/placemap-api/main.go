// README: Entry point; loads config, wires stores, provider and services, starts the HTTP server and background workers.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"placemap/internal/ai"
	"placemap/internal/config"
	httptransport "placemap/internal/http"
	"placemap/internal/http/handlers"
	"placemap/internal/infra"
	"placemap/internal/maps"
	"placemap/internal/modules/category"
	"placemap/internal/modules/details"
	"placemap/internal/modules/place"
	"placemap/internal/modules/search"
	"placemap/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.IsProduction())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	if redisClient != nil {
		defer redisClient.Close()
	}

	queue := worker.NewQueue(worker.Options{
		Workers:     cfg.Worker.Workers,
		QueueSize:   cfg.Worker.QueueSize,
		TaskTimeout: cfg.Worker.TaskTimeout,
	}, logger.Named("worker"))
	queue.Start()

	vocab := search.DefaultVocabulary()
	if cfg.Search.VocabularyFile != "" {
		if vocab, err = search.LoadVocabulary(cfg.Search.VocabularyFile); err != nil {
			logger.Fatal("load vocabulary", zap.String("file", cfg.Search.VocabularyFile), zap.Error(err))
		}
	}

	placeStore := place.NewStore(dbPool)
	categoryStore := category.NewStore(dbPool)
	categorySvc := category.NewService(categoryStore, category.DefaultTTL)
	cacheWriter := place.NewCacheWriter(placeStore, queue, logger.Named("cache"))

	// Interface values stay nil (not typed nil) when the provider is disabled.
	var (
		nearbyProvider  place.NearbyProvider
		textProvider    search.TextSearcher
		detailsProvider details.DetailsProvider
		routeFinder     handlers.RouteFinder
	)
	providerOpts := []maps.Option{
		maps.WithTimeout(cfg.Maps.Timeout),
		maps.WithLanguage(cfg.Maps.Language, cfg.Maps.Region),
	}
	if cfg.Maps.APIKey != "" {
		placesSvc, err := maps.NewPlacesService(cfg.Maps.APIKey, providerOpts...)
		if err != nil {
			logger.Fatal("maps places init", zap.Error(err))
		}
		cached := maps.NewCachedPlaces(placesSvc, redisClient, cfg.Maps.CacheTTL, logger.Named("provider-cache"))
		nearbyProvider, textProvider, detailsProvider = cached, cached, cached

		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey, providerOpts...)
		if err != nil {
			logger.Fatal("maps routes init", zap.Error(err))
		}
		routeFinder = routeSvc
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set; provider fallback, enrichment and directions disabled")
	}
	photos := maps.PhotoURLBuilder{APIKey: cfg.Maps.APIKey}

	searchOpts := []search.Option{
		search.WithThreshold(cfg.Search.Threshold),
		search.WithNearMeRadius(cfg.Search.NearMeRadiusKm),
	}
	if cfg.AI.GeminiKey != "" {
		classifier, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			logger.Fatal("gemini init", zap.Error(err))
		}
		defer classifier.Close()
		searchOpts = append(searchOpts, search.WithClassifier(classifier))
	}

	placeSvc := place.NewService(placeStore, nearbyProvider, cacheWriter, logger.Named("place"),
		place.WithProviderTypes(vocab.ProviderType))
	searchSvc := search.NewService(placeStore, textProvider, cacheWriter, vocab, logger.Named("search"), searchOpts...)
	detailsSvc := details.NewService(placeStore, detailsProvider, photos, queue, logger.Named("details"))

	server := httptransport.NewServer(httptransport.ServerDeps{
		Places:          placeSvc,
		Search:          searchSvc,
		Details:         detailsSvc,
		Categories:      categorySvc,
		Routes:          routeFinder,
		DB:              placeStore,
		PlaceCounter:    placeStore,
		CategoryCounter: categoryStore,
		Logger:          logger.Named("http"),
		AccessLog:       cfg.HTTP.AccessLog,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(server.Routes())

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("placemap api listening", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := queue.Close(drainCtx); err != nil {
		logger.Warn("background queue did not drain", zap.Error(err))
	}
}
