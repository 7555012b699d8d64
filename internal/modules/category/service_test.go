package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	cats  []Category
	calls int
	err   error
}

func (f *fakeLister) List(ctx context.Context) ([]Category, error) {
	f.calls++
	return f.cats, f.err
}

func (f *fakeLister) Upsert(ctx context.Context, c Category) error {
	for i := range f.cats {
		if f.cats[i].Slug == c.Slug {
			f.cats[i] = c
			return nil
		}
	}
	f.cats = append(f.cats, c)
	return nil
}

func TestService_ListIsCached(t *testing.T) {
	store := &fakeLister{cats: []Category{{Slug: "atm", DisplayName: "ATM"}}}
	svc := NewService(store, 0)

	for i := 0; i < 3; i++ {
		got, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, store.calls)
}

func TestService_ListErrorNotCached(t *testing.T) {
	store := &fakeLister{err: errors.New("db down")}
	svc := NewService(store, 0)

	_, err := svc.List(context.Background())
	require.Error(t, err)

	store.err = nil
	store.cats = []Category{{Slug: "cafe", DisplayName: "Cafe"}}
	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, store.calls)
}

func TestService_SeedInvalidatesCache(t *testing.T) {
	store := &fakeLister{}
	svc := NewService(store, 0)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, svc.Seed(context.Background(), Defaults))
	got, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, len(Defaults))

	ok, err := svc.Exists(context.Background(), "police-station")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists(context.Background(), "zoo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefaults_AreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Defaults {
		assert.False(t, seen[c.Slug], "duplicate slug %s", c.Slug)
		seen[c.Slug] = true
	}
	assert.Len(t, Defaults, 10)
}
