package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmytourguide/internal/domain/guide"
)

func newStoredGuide(t *testing.T, r *GuideRepository) *guide.Guide {
	t.Helper()
	g, err := guide.NewGuide(guide.CreateParams{ID: "g-1", UserID: "ug-1", Name: "Asha"})
	require.NoError(t, err)
	require.NoError(t, r.Save(context.Background(), g))
	return g
}

func septemberDays(from, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, time.Date(2026, time.September, from+i, 0, 0, 0, 0, time.UTC))
	}
	return days
}

func TestGuideReadsReturnCopies(t *testing.T) {
	r := NewGuideRepository()
	ctx := context.Background()
	g := newStoredGuide(t, r)

	require.NoError(t, r.ReserveDates(ctx, g.ID, septemberDays(1, 3)))

	loaded, err := r.ByID(ctx, g.ID)
	require.NoError(t, err)
	loaded.UnavailableDates = loaded.UnavailableDates[:0]

	stored, err := r.ByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, stored.UnavailableDates, 3, "dropping dates on a loaded copy must not touch the store")
}

func TestGuideSaveKeepsReservedDates(t *testing.T) {
	r := NewGuideRepository()
	ctx := context.Background()
	g := newStoredGuide(t, r)

	// a profile snapshot loaded before the reservation
	snapshot, err := r.ByID(ctx, g.ID)
	require.NoError(t, err)

	require.NoError(t, r.ReserveDates(ctx, g.ID, septemberDays(1, 3)))

	snapshot.Description = "Fifteen years in the Western Ghats"
	require.NoError(t, r.Save(ctx, snapshot))

	stored, err := r.ByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fifteen years in the Western Ghats", stored.Description)
	assert.Len(t, stored.UnavailableDates, 3, "a stale profile save must not clobber reservations")
	assert.ErrorIs(t, r.ReserveDates(ctx, g.ID, septemberDays(2, 1)), guide.ErrDatesConflict)
}

func TestGuideReleaseDropsOnlyTheGivenDays(t *testing.T) {
	r := NewGuideRepository()
	ctx := context.Background()
	g := newStoredGuide(t, r)

	require.NoError(t, r.ReserveDates(ctx, g.ID, septemberDays(1, 3)))
	require.NoError(t, r.ReserveDates(ctx, g.ID, septemberDays(10, 2)))
	require.NoError(t, r.ReleaseDates(ctx, g.ID, septemberDays(1, 3)))

	stored, err := r.ByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, stored.UnavailableDates, 2)
}
