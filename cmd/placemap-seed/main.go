// README: Seed tool; applies migrations, upserts the default categories and inserts the sample Nagpur places.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"placemap/internal/config"
	"placemap/internal/infra"
	"placemap/internal/modules/category"
	"placemap/internal/modules/place"
	"placemap/internal/types"
)

type sample struct {
	name     string
	category string
	lat, lng float64
	city     string
	state    string
}

var samples = []sample{
	{name: "City Hospital Nagpur", category: "hospital", lat: 21.1458, lng: 79.0882, city: "Nagpur", state: "Maharashtra"},
	{name: "IOC Petrol Pump Sitabuldi", category: "petrol-pump", lat: 21.1492, lng: 79.0835, city: "Nagpur", state: "Maharashtra"},
}

func main() {
	migrate := flag.Bool("migrate", true, "apply migrations before seeding")
	dir := flag.String("migrations", "", "migrations directory (default: <module root>/migrations)")
	withSamples := flag.Bool("samples", true, "insert sample places")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger(cfg.IsProduction())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db init", zap.Error(err))
	}
	defer db.Close()

	if *migrate {
		path := *dir
		if path == "" {
			if path, err = infra.MigrationsDir(); err != nil {
				logger.Fatal("locate migrations", zap.Error(err))
			}
		}
		if err := infra.ApplyMigrations(ctx, db, path); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		logger.Info("migrations applied", zap.String("dir", path))
	}

	categories := category.NewService(category.NewStore(db), 0)
	if err := categories.Seed(ctx, category.Defaults); err != nil {
		logger.Fatal("seed categories", zap.Error(err))
	}
	logger.Info("categories seeded", zap.Int("count", len(category.Defaults)))

	if !*withSamples {
		return
	}
	places := place.NewStore(db)
	for _, s := range samples {
		created, err := insertSample(ctx, places, s)
		if err != nil {
			logger.Fatal("insert sample place", zap.String("name", s.name), zap.Error(err))
		}
		logger.Info("sample place", zap.String("name", s.name), zap.Bool("created", created))
	}
}

type sampleStore interface {
	Get(ctx context.Context, id types.ID) (*place.Place, string, error)
	Create(ctx context.Context, p *place.Place, categorySlug string) error
	LinkCategory(ctx context.Context, id types.ID, categorySlug string) error
}

// insertSample is idempotent: the id is derived from the name, and an
// existing row only gets its category link ensured.
func insertSample(ctx context.Context, store sampleStore, s sample) (bool, error) {
	id := sampleID(s.name)
	_, _, err := store.Get(ctx, id)
	switch {
	case err == nil:
		return false, store.LinkCategory(ctx, id, s.category)
	case !errors.Is(err, place.ErrNotFound):
		return false, err
	}

	city, state := s.city, s.state
	p := &place.Place{
		ID:       id,
		Name:     s.name,
		Location: types.Point{Lat: s.lat, Lng: s.lng},
		City:     &city,
		State:    &state,
		Source:   place.SourceManual,
		Active:   true,
	}
	if err := store.Create(ctx, p, s.category); err != nil {
		return false, err
	}
	return true, nil
}

func sampleID(name string) types.ID {
	return types.ID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("placemap:sample:"+name)).String())
}
