package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db/dbtest"
)

func newLists(t *testing.T) *Lists {
	t.Helper()
	return NewLists(dbtest.New(t), zap.NewNop().Sugar())
}

func entry(account, movie uint64, category db.Category) NewEntry {
	poster := "/poster.jpg"
	return NewEntry{
		AccountID:  account,
		MovieID:    movie,
		Title:      "Central do Brasil",
		PosterPath: &poster,
		Category:   category,
	}
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newLists(t)

	outcome, err := s.Add(ctx, entry(1, 42, db.CategoryToWatch))
	require.NoError(t, err)
	assert.Equal(t, Added, outcome)

	outcome, err = s.Add(ctx, entry(1, 42, db.CategoryToWatch))
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, outcome)

	entries, err := s.List(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, db.CategoryToWatch, entries[0].Category)
}

func TestAddToAnotherCategoryDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s := newLists(t)

	_, err := s.Add(ctx, entry(1, 42, db.CategoryWatched))
	require.NoError(t, err)

	other := entry(1, 42, db.CategoryFavorite)
	other.Title = "Renamed"
	outcome, err := s.Add(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, outcome)

	entries, err := s.List(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, db.CategoryWatched, entries[0].Category)
	assert.Equal(t, "Central do Brasil", entries[0].Title)
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	s := newLists(t)

	tests := map[string]NewEntry{
		"no account":   entry(0, 42, db.CategoryWatched),
		"no movie":     entry(1, 0, db.CategoryWatched),
		"bad category": entry(1, 42, db.Category("later")),
	}
	noTitle := entry(1, 42, db.CategoryWatched)
	noTitle.Title = ""
	tests["no title"] = noTitle

	for name, e := range tests {
		_, err := s.Add(ctx, e)
		assert.ErrorIs(t, err, ErrValidation, name)
	}
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	s := newLists(t)

	_, err := s.Add(ctx, entry(1, 42, db.CategoryToWatch))
	require.NoError(t, err)

	require.NoError(t, s.Move(ctx, 1, 42, db.CategoryFavorite))

	entries, err := s.List(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, db.CategoryFavorite, entries[0].Category)

	for _, c := range []db.Category{db.CategoryToWatch, db.CategoryWatched} {
		c := c
		filtered, err := s.List(ctx, 1, &c)
		require.NoError(t, err)
		assert.Empty(t, filtered, c)
	}

	assert.ErrorIs(t, s.Move(ctx, 1, 7, db.CategoryWatched), ErrNotFound)
	assert.ErrorIs(t, s.Move(ctx, 2, 42, db.CategoryWatched), ErrNotFound)
	assert.ErrorIs(t, s.Move(ctx, 1, 42, db.Category("later")), ErrValidation)
}

func TestRemoveIsScopedToCategory(t *testing.T) {
	ctx := context.Background()
	s := newLists(t)

	_, err := s.Add(ctx, entry(1, 42, db.CategoryWatched))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Remove(ctx, 1, 42, db.CategoryFavorite), ErrNotFound)
	entries, err := s.List(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.Remove(ctx, 1, 42, db.CategoryWatched))
	entries, err = s.List(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, s.Remove(ctx, 1, 42, db.CategoryWatched), ErrNotFound)
}

func TestListIsPerAccount(t *testing.T) {
	ctx := context.Background()
	s := newLists(t)

	_, err := s.Add(ctx, entry(1, 42, db.CategoryWatched))
	require.NoError(t, err)
	_, err = s.Add(ctx, entry(1, 43, db.CategoryFavorite))
	require.NoError(t, err)
	_, err = s.Add(ctx, entry(2, 42, db.CategoryToWatch))
	require.NoError(t, err)

	entries, err := s.List(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(42), entries[0].MovieID)
	assert.Equal(t, uint64(43), entries[1].MovieID)
	require.NotNil(t, entries[0].PosterPath)
	assert.Equal(t, "/poster.jpg", *entries[0].PosterPath)

	favorite := db.CategoryFavorite
	entries, err = s.List(ctx, 1, &favorite)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(43), entries[0].MovieID)

	entries, err = s.List(ctx, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConcurrentAddKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	s := newLists(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[AddOutcome]int{}
	)
	for _, c := range db.Categories {
		wg.Add(1)
		go func(c db.Category) {
			defer wg.Done()
			outcome, err := s.Add(ctx, entry(1, 42, c))
			assert.NoError(t, err)
			mu.Lock()
			outcomes[outcome]++
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	assert.Equal(t, 1, outcomes[Added])
	assert.Equal(t, 2, outcomes[AlreadyPresent])

	entries, err := s.List(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
