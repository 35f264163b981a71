package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/program"
	"akneDenikAPI/internal/repository"
	"akneDenikAPI/internal/types/daycontent"
)

func firstTemplate() *program.Generator {
	return program.NewGenerator(func(int) int { return 0 })
}

func newContent(t *testing.T, ttl time.Duration) (*ContentService, *repository.Memory) {
	t.Helper()
	store := repository.NewMemory()
	return NewContentService(store, firstTemplate(), ttl, nil), store
}

func TestResolveFallsBackToGenerated(t *testing.T) {
	s, _ := newContent(t, time.Minute)

	c, err := s.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Day)
	assert.True(t, c.IsPhotoDay)
	assert.False(t, c.IsDualPhotoDay)
	assert.Equal(t, daycontent.SourceGenerated, c.Source)
	assert.Contains(t, c.Task, "7")
}

func TestResolvePrefersAdminContent(t *testing.T) {
	s, store := newContent(t, time.Minute)
	require.NoError(t, store.PutDayContent(context.Background(), daycontent.DayContent{
		Day: 12, Motivation: "Vydrž!", Task: "Vypij dva litry vody.", IsPhotoDay: true,
	}))

	c, err := s.Resolve(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "Vydrž!", c.Motivation)
	assert.True(t, c.IsPhotoDay)
	assert.Equal(t, daycontent.SourceAdmin, c.Source)
}

func TestResolveRejectsOutOfRangeDay(t *testing.T) {
	s, _ := newContent(t, time.Minute)
	for _, day := range []int{0, 366, -1} {
		_, err := s.Resolve(context.Background(), day)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "day %d", day)
	}
}

func TestResolvePropagatesUnavailableWithoutCaching(t *testing.T) {
	s, store := newContent(t, time.Minute)
	store.Fail = func(op string) error { return errors.New("connection reset") }

	_, err := s.Resolve(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))

	store.Fail = nil
	require.NoError(t, store.PutDayContent(context.Background(), daycontent.DayContent{Day: 3, Motivation: "m", Task: "t"}))
	c, err := s.Resolve(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, daycontent.SourceAdmin, c.Source)
}

func TestResolveFallsBackOnMalformedRecord(t *testing.T) {
	s, store := newContent(t, time.Minute)
	require.NoError(t, store.PutDayContent(context.Background(), daycontent.DayContent{Day: 5, Motivation: "", Task: "t"}))

	c, err := s.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, daycontent.SourceGenerated, c.Source)
	assert.NotEmpty(t, c.Motivation)
}

func TestPutInvalidatesCachedDay(t *testing.T) {
	s, store := newContent(t, time.Hour)
	ctx := context.Background()

	first, err := s.Resolve(ctx, 20)
	require.NoError(t, err)
	require.Equal(t, daycontent.SourceGenerated, first.Source)

	// A write that bypasses the service stays hidden behind the cache.
	require.NoError(t, store.PutDayContent(ctx, daycontent.DayContent{Day: 20, Motivation: "a", Task: "b"}))
	cached, err := s.Resolve(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, daycontent.SourceGenerated, cached.Source)

	saved, err := s.Put(ctx, 20, daycontent.UpsertRequest{Motivation: " Nový den ", Task: "Umyj si obličej."}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Nový den", saved.Motivation)
	assert.Equal(t, "admin-1", saved.UpdatedBy)
	require.NotNil(t, saved.UpdatedAt)

	fresh, err := s.Resolve(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, "Nový den", fresh.Motivation)
	assert.Equal(t, daycontent.SourceAdmin, fresh.Source)
}

func TestPutValidatesInput(t *testing.T) {
	s, _ := newContent(t, time.Minute)
	ctx := context.Background()

	_, err := s.Put(ctx, 4, daycontent.UpsertRequest{Motivation: "  ", Task: "t"}, "a")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = s.Put(ctx, 4, daycontent.UpsertRequest{Motivation: "m", Task: ""}, "a")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = s.Put(ctx, 400, daycontent.UpsertRequest{Motivation: "m", Task: "t"}, "a")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDeleteRestoresGeneratedContent(t *testing.T) {
	s, _ := newContent(t, time.Hour)
	ctx := context.Background()

	_, err := s.Put(ctx, 30, daycontent.UpsertRequest{Motivation: "m", Task: "t"}, "a")
	require.NoError(t, err)
	c, err := s.Resolve(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, daycontent.SourceAdmin, c.Source)

	require.NoError(t, s.Delete(ctx, 30))
	c, err = s.Resolve(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, daycontent.SourceGenerated, c.Source)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestZeroTTLDisablesCache(t *testing.T) {
	s, store := newContent(t, 0)
	ctx := context.Background()

	_, err := s.Resolve(ctx, 9)
	require.NoError(t, err)
	require.NoError(t, store.PutDayContent(ctx, daycontent.DayContent{Day: 9, Motivation: "m", Task: "t"}))

	c, err := s.Resolve(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, daycontent.SourceAdmin, c.Source)
}

func TestInvalidateDropsEveryDay(t *testing.T) {
	s, store := newContent(t, time.Hour)
	ctx := context.Background()

	_, err := s.Resolve(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, store.PutDayContent(ctx, daycontent.DayContent{Day: 2, Motivation: "m", Task: "t"}))

	s.Invalidate()
	c, err := s.Resolve(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, daycontent.SourceAdmin, c.Source)
}
