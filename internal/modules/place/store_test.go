package place

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placemap/internal/infra"
	"placemap/internal/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("PLACEMAP_TEST_DSN")
	if dsn == "" {
		t.Skip("PLACEMAP_TEST_DSN not set; skipping DB-backed store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "connect db")
	t.Cleanup(func() { db.Close() })

	dir, err := infra.MigrationsDir()
	require.NoError(t, err)
	require.NoError(t, infra.ApplyMigrations(ctx, db, dir), "apply migrations")

	_, err = db.Exec(ctx, "TRUNCATE TABLE place_category_links, places, place_categories")
	require.NoError(t, err, "truncate tables")
	_, err = db.Exec(ctx, `
        INSERT INTO place_categories (id, slug, display_name) VALUES
            ('c-hospital', 'hospital', 'Hospital'),
            ('c-atm', 'atm', 'ATM')`)
	require.NoError(t, err, "seed categories")

	return NewStore(db)
}

func strPtr(s string) *string { return &s }

func TestStore_CreateAndQuery(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	hospital := &Place{
		Name:     "City Hospital Nagpur",
		Location: types.Point{Lat: 21.1458, Lng: 79.0882},
		City:     strPtr("Nagpur"),
		State:    strPtr("Maharashtra"),
		Source:   SourceManual,
		Active:   true,
	}
	require.NoError(t, s.Create(ctx, hospital, "hospital"))
	require.NotEmpty(t, hospital.ID)

	inactive := &Place{
		Name:     "Closed Clinic",
		Location: types.Point{Lat: 21.1459, Lng: 79.0883},
		City:     strPtr("Nagpur"),
		Active:   false,
	}
	require.NoError(t, s.Create(ctx, inactive, "hospital"))

	got, err := s.ListInBox(ctx, types.BoxAround(types.Point{Lat: 21.1458, Lng: 79.0882}, 5), "hospital", 500)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, string(hospital.ID), got[0].ID)

	none, err := s.ListInBox(ctx, types.BoxAround(types.Point{Lat: 21.1458, Lng: 79.0882}, 5), "atm", 500)
	require.NoError(t, err)
	assert.Empty(t, none)

	byName, err := s.Search(ctx, Filter{Name: "hospital", City: "nag"})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	exact, err := s.Search(ctx, Filter{CityExact: "nagpur"})
	require.NoError(t, err)
	assert.Empty(t, exact, "exact city match is case sensitive")

	cities, err := s.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nagpur"}, cities)
}

func TestStore_DuplicateExternalID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &Place{Name: "ATM 1", Location: types.Point{Lat: 19, Lng: 72}, Source: SourceGoogle, ExternalID: strPtr("g-1"), Active: true}
	require.NoError(t, s.Create(ctx, first, "atm"))

	second := &Place{Name: "ATM 1 again", Location: types.Point{Lat: 19, Lng: 72}, Source: SourceGoogle, ExternalID: strPtr("g-1"), Active: true}
	assert.ErrorIs(t, s.Create(ctx, second, "atm"), ErrDuplicateExternalID)

	found, err := s.FindByExternalIDs(ctx, []string{"g-1", "missing"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, string(first.ID), found["g-1"].ID)
}

func TestStore_GetAndUpdateDetails(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := &Place{Name: "Clinic", Location: types.Point{Lat: 21, Lng: 79}, ExternalID: strPtr("g-clinic"), Active: true}
	require.NoError(t, s.Create(ctx, p, "hospital"))

	got, cat, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "hospital", cat)
	assert.Nil(t, got.Details)

	phone := "+91 712 000 0000"
	require.NoError(t, s.UpdateDetails(ctx, p.ID, Details{
		Phone:         &phone,
		PhotoRefs:     []string{"ref-a", ""},
		OpeningStatus: "bogus",
	}))

	got, _, err = s.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Details)
	assert.Equal(t, phone, *got.Details.Phone)
	assert.Equal(t, []string{"ref-a"}, got.Details.PhotoRefs)
	assert.Equal(t, types.OpeningUnknown, got.Details.OpeningStatus)

	_, _, err = s.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateDetails(ctx, "does-not-exist", Details{}), ErrNotFound)
}

func TestStore_LinkCategoryAndPing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := &Place{Name: "Unlinked", Location: types.Point{Lat: 21, Lng: 79}, Active: true}
	require.NoError(t, s.Create(ctx, p, ""))
	require.NoError(t, s.LinkCategory(ctx, p.ID, "atm"))
	require.NoError(t, s.LinkCategory(ctx, p.ID, "atm"))
	assert.ErrorIs(t, s.LinkCategory(ctx, "missing", "atm"), ErrNotFound)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, s.Ping(ctx))
}
