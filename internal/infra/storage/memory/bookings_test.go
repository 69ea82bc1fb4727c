package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmytourguide/internal/domain/booking"
	"bookmytourguide/internal/domain/shared/daterange"
)

func newStoredBooking(t *testing.T, r *BookingRepository) *booking.Booking {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := booking.NewBooking(booking.CreateParams{
		ID:               "b-1",
		TourID:           "t-1",
		GuideID:          "g-1",
		UserID:           "u-1",
		Range:            dr,
		NumberOfTourists: 2,
		TourPrice:        100,
		PaymentID:        "pay_123",
	})
	require.NoError(t, err)
	require.NoError(t, r.Save(context.Background(), b))
	return b
}

func TestBookingMutationInvisibleUntilSaved(t *testing.T) {
	r := NewBookingRepository()
	ctx := context.Background()
	b := newStoredBooking(t, r)

	loaded, err := r.ByID(ctx, b.ID)
	require.NoError(t, err)
	loaded.Status = booking.StatusCancelled

	stored, err := r.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusUpcoming, stored.Status, "an unsaved mutation must not leak into the store")

	require.NoError(t, r.Save(ctx, loaded))
	stored, err = r.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, stored.Status)
}

func TestBookingSaveKeepsCallerPointerOutOfStore(t *testing.T) {
	r := NewBookingRepository()
	ctx := context.Background()
	b := newStoredBooking(t, r)

	// mutating the pointer that was saved must not rewrite the stored copy
	b.Status = booking.StatusCompleted
	stored, err := r.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusUpcoming, stored.Status)
}

func TestBookingSaveRejectsStaleVersion(t *testing.T) {
	r := NewBookingRepository()
	ctx := context.Background()
	b := newStoredBooking(t, r)

	first, err := r.ByID(ctx, b.ID)
	require.NoError(t, err)
	second, err := r.ByID(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, r.Save(ctx, first))
	assert.ErrorIs(t, r.Save(ctx, second), booking.ErrConcurrentUpdate)
}
