package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placemap/internal/maps"
	"placemap/internal/modules/place"
	"placemap/internal/types"
)

type fakeStore struct {
	results []place.Summary
	known   map[string]place.Summary
	filters []place.Filter
	lookups [][]string
	err     error
}

func (f *fakeStore) Search(ctx context.Context, flt place.Filter) ([]place.Summary, error) {
	f.filters = append(f.filters, flt)
	return f.results, f.err
}

func (f *fakeStore) FindByExternalIDs(ctx context.Context, ids []string) (map[string]place.Summary, error) {
	f.lookups = append(f.lookups, ids)
	return f.known, nil
}

type fakeText struct {
	calls   []maps.TextSearchRequest
	results []maps.ExternalPlace
	err     error
}

func (f *fakeText) TextSearch(ctx context.Context, r maps.TextSearchRequest) ([]maps.ExternalPlace, error) {
	f.calls = append(f.calls, r)
	return f.results, f.err
}

type fakeScheduler struct {
	batches int
	cats    []string
}

func (f *fakeScheduler) Schedule(places []maps.ExternalPlace, category string) {
	f.batches++
	f.cats = append(f.cats, category)
}

type fakeClassifier struct {
	answer string
	err    error
	calls  int
}

func (f *fakeClassifier) ClassifyCategory(ctx context.Context, query string, slugs []string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func summaries(n int) []place.Summary {
	out := make([]place.Summary, n)
	for i := range out {
		out[i] = place.Summary{ID: fmt.Sprintf("local-%d", i), Latitude: float64(i), Longitude: float64(i)}
	}
	return out
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := &fakeStore{}
	provider := &fakeText{}
	svc := NewService(store, provider, nil, nil, nil)

	got, err := svc.Search(context.Background(), Request{Query: "   "})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, store.filters)
	assert.Empty(t, provider.calls)
}

func TestSearch_ThresholdSkipsProvider(t *testing.T) {
	for _, n := range []int{10, 11, 500} {
		store := &fakeStore{results: summaries(n)}
		provider := &fakeText{}
		svc := NewService(store, provider, &fakeScheduler{}, nil, nil)

		got, err := svc.Search(context.Background(), Request{Query: "hospital in nagpur"})
		require.NoError(t, err)
		assert.Len(t, got, n)
		assert.Empty(t, provider.calls, "%d local results", n)
	}
}

func TestSearch_BelowThresholdQueriesProvider(t *testing.T) {
	mumbai := &types.Point{Lat: 19.076, Lng: 72.8777}
	store := &fakeStore{results: summaries(2)}
	provider := &fakeText{results: []maps.ExternalPlace{{ExternalID: "g1", Latitude: 19.1, Longitude: 72.9}}}
	sched := &fakeScheduler{}
	svc := NewService(store, provider, sched, nil, nil)

	got, err := svc.Search(context.Background(), Request{Query: "petrol pump near me in mumbai", Location: mumbai})
	require.NoError(t, err)
	assert.Equal(t, []string{"local-0", "local-1", "g1"}, ids(got))

	require.Len(t, store.filters, 1)
	f := store.filters[0]
	assert.Equal(t, "petrol-pump", f.Category)
	assert.Equal(t, "mumbai", f.City)
	assert.Equal(t, "", f.Name)
	require.NotNil(t, f.Box)
	assert.Equal(t, types.BoxAround(*mumbai, 10), *f.Box)

	require.Len(t, provider.calls, 1)
	call := provider.calls[0]
	assert.Equal(t, "petrol pump in mumbai", call.Query)
	require.NotNil(t, call.Location)
	assert.Equal(t, *mumbai, *call.Location)
	assert.Equal(t, uint(10000), call.RadiusMeters)

	assert.Equal(t, 1, sched.batches)
	assert.Equal(t, []string{"petrol-pump"}, sched.cats)
	assert.Equal(t, [][]string{{"g1"}}, store.lookups)
}

func TestSearch_ATMNearMeUsesTenKmBox(t *testing.T) {
	loc := &types.Point{Lat: 21.1458, Lng: 79.0882}
	store := &fakeStore{results: summaries(10)}
	svc := NewService(store, &fakeText{}, nil, nil, nil)

	_, err := svc.Search(context.Background(), Request{Query: "ATM near me", Location: loc})
	require.NoError(t, err)
	require.Len(t, store.filters, 1)
	f := store.filters[0]
	assert.Equal(t, "atm", f.Category)
	assert.Equal(t, "", f.Name)
	require.NotNil(t, f.Box)
	assert.InDelta(t, 10.0/111.0, f.Box.MaxLat-loc.Lat, 1e-9)
	assert.InDelta(t, 10.0/111.0, loc.Lng-f.Box.MinLng, 1e-9)
}

func TestSearch_NoBoxWithoutCoordinates(t *testing.T) {
	store := &fakeStore{results: summaries(10)}
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.Search(context.Background(), Request{Query: "atm near me"})
	require.NoError(t, err)
	assert.Nil(t, store.filters[0].Box)
}

func TestSearch_ExternalQueryShapes(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"category and leftover", Request{Query: "apollo hospital chennai"}, "hospital apollo in chennai"},
		{"category only", Request{Query: "police station"}, "police station"},
		{"leftover only", Request{Query: "bombay canteen"}, "bombay canteen"},
		{"override category", Request{Query: "sion", Category: "fire-station"}, "fire station sion"},
		{"override city", Request{Query: "cafe", City: "Nagpur"}, "cafe in Nagpur"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeText{}
			svc := NewService(&fakeStore{}, provider, nil, nil, nil)
			_, err := svc.Search(context.Background(), tt.req)
			require.NoError(t, err)
			require.Len(t, provider.calls, 1)
			assert.Equal(t, tt.want, provider.calls[0].Query)
			assert.Nil(t, provider.calls[0].Location)
		})
	}
}

func TestSearch_ExternalDedupByExternalID(t *testing.T) {
	stored := place.Summary{ID: "uuid-1", Name: "Stored ATM", Latitude: 30, Longitude: 30, ExternalID: "g-stored"}
	store := &fakeStore{
		results: []place.Summary{{ID: "uuid-0", Latitude: 1, Longitude: 1}},
		known:   map[string]place.Summary{"g-stored": stored},
	}
	provider := &fakeText{results: []maps.ExternalPlace{
		{ExternalID: "g-stored", Name: "Stored ATM (google)", Latitude: 30, Longitude: 30},
		{ExternalID: "g-new", Name: "New ATM", Latitude: 40, Longitude: 40},
	}}
	svc := NewService(store, provider, &fakeScheduler{}, nil, nil)

	got, err := svc.Search(context.Background(), Request{Query: "atm"})
	require.NoError(t, err)
	assert.Equal(t, []string{"uuid-0", "uuid-1", "g-new"}, ids(got))
}

func TestSearch_ProviderFailureReturnsLocal(t *testing.T) {
	store := &fakeStore{results: summaries(3)}
	sched := &fakeScheduler{}
	svc := NewService(store, &fakeText{err: errors.New("REQUEST_DENIED")}, sched, nil, nil)

	got, err := svc.Search(context.Background(), Request{Query: "cafe"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Zero(t, sched.batches)
}

func TestSearch_NoCacheWithoutCategory(t *testing.T) {
	sched := &fakeScheduler{}
	provider := &fakeText{results: []maps.ExternalPlace{{ExternalID: "g1", Latitude: 1, Longitude: 1}}}
	svc := NewService(&fakeStore{}, provider, sched, nil, nil)

	got, err := svc.Search(context.Background(), Request{Query: "bombay canteen"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Zero(t, sched.batches)
}

func TestSearch_StoreErrorSurfaces(t *testing.T) {
	provider := &fakeText{}
	svc := NewService(&fakeStore{err: errors.New("db down")}, provider, nil, nil, nil)

	_, err := svc.Search(context.Background(), Request{Query: "cafe"})
	require.Error(t, err)
	assert.Empty(t, provider.calls)
}

func TestSearch_ThresholdOption(t *testing.T) {
	provider := &fakeText{}
	svc := NewService(&fakeStore{results: summaries(3)}, provider, nil, nil, nil, WithThreshold(3))

	_, err := svc.Search(context.Background(), Request{Query: "cafe"})
	require.NoError(t, err)
	assert.Empty(t, provider.calls)
}

func TestIntent_Classifier(t *testing.T) {
	t.Run("used when nothing matched", func(t *testing.T) {
		c := &fakeClassifier{answer: "atm"}
		svc := NewService(&fakeStore{}, nil, nil, nil, nil, WithClassifier(c))
		in := svc.Intent(context.Background(), Request{Query: "need to withdraw cash"})
		assert.Equal(t, "atm", in.Category)
		assert.Equal(t, "need to withdraw cash", in.Query)
		assert.Equal(t, 1, c.calls)
	})
	t.Run("classified search keeps the name filter", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewService(store, nil, nil, nil, nil, WithClassifier(&fakeClassifier{answer: "restaurant"}))
		_, err := svc.Search(context.Background(), Request{Query: "The Bombay Canteen"})
		require.NoError(t, err)
		require.Len(t, store.filters, 1)
		assert.Equal(t, "restaurant", store.filters[0].Category)
		assert.Equal(t, "the bombay canteen", store.filters[0].Name)
	})
	t.Run("not used when keyword matched", func(t *testing.T) {
		c := &fakeClassifier{answer: "atm"}
		svc := NewService(&fakeStore{}, nil, nil, nil, nil, WithClassifier(c))
		in := svc.Intent(context.Background(), Request{Query: "hospital"})
		assert.Equal(t, "hospital", in.Category)
		assert.Zero(t, c.calls)
	})
	t.Run("not used when caller set category", func(t *testing.T) {
		c := &fakeClassifier{answer: "atm"}
		svc := NewService(&fakeStore{}, nil, nil, nil, nil, WithClassifier(c))
		in := svc.Intent(context.Background(), Request{Query: "something", Category: "cafe"})
		assert.Equal(t, "cafe", in.Category)
		assert.Zero(t, c.calls)
	})
	t.Run("failure leaves category empty", func(t *testing.T) {
		c := &fakeClassifier{err: errors.New("quota")}
		svc := NewService(&fakeStore{}, nil, nil, nil, nil, WithClassifier(c))
		in := svc.Intent(context.Background(), Request{Query: "something"})
		assert.Equal(t, "", in.Category)
		assert.Equal(t, "something", in.Query)
	})
}
