package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmytourguide/internal/domain/shared/daterange"
)

func testRange(t *testing.T) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return dr
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:               "b-1",
		TourID:           "t-1",
		GuideID:          "g-1",
		UserID:           "u-1",
		Range:            testRange(t),
		NumberOfTourists: 2,
		TourPrice:        100,
		PaymentID:        "pay_123",
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingPriceDerivation(t *testing.T) {
	b := newTestBooking(t)

	// 2 tourists × ₹100, advance is 20% of the total
	assert.Equal(t, 200.0, b.TotalPrice)
	assert.Equal(t, 40.0, b.AdvanceAmount)
	assert.Equal(t, int64(4000), b.AdvanceMinorUnits())
	assert.Equal(t, StatusUpcoming, b.Status)
	assert.Equal(t, PaymentAdvancePaid, b.PaymentStatus)
}

func TestNewBookingValidation(t *testing.T) {
	base := CreateParams{
		ID: "b-1", TourID: "t-1", GuideID: "g-1", UserID: "u-1",
		Range: testRange(t), NumberOfTourists: 2, TourPrice: 100, PaymentID: "pay_123",
	}

	p := base
	p.PaymentID = " "
	_, err := NewBooking(p)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	p = base
	p.NumberOfTourists = 0
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrInvalidTourists)

	p = base
	p.Range = daterange.DateRange{}
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestParseStatusAcceptsOnlyEnumeratedValues(t *testing.T) {
	for _, valid := range []string{"Upcoming", "Completed", "Cancelled", "Awaiting Substitute"} {
		_, err := ParseStatus(valid)
		assert.NoError(t, err, valid)
	}
	for _, invalid := range []string{"upcoming", "Refunded", "", "Pending"} {
		_, err := ParseStatus(invalid)
		assert.ErrorIs(t, err, ErrInvalidStatus, invalid)
	}
}

func TestSetStatusReportsNewlyCancelled(t *testing.T) {
	b := newTestBooking(t)
	now := time.Now()

	newlyCancelled, err := b.SetStatus(StatusCancelled, now)
	require.NoError(t, err)
	assert.True(t, newlyCancelled)

	// a second transition into Cancelled must not trigger another release
	newlyCancelled, err = b.SetStatus(StatusCancelled, now)
	require.NoError(t, err)
	assert.False(t, newlyCancelled)
}

func TestCancelRequiresUpcoming(t *testing.T) {
	b := newTestBooking(t)
	by := CancellerInfo{ID: "u-1", Role: "user", Name: "Ravi"}
	now := time.Now()

	require.NoError(t, b.Cancel(by, now))
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, PaymentRefunded, b.PaymentStatus)
	require.NotNil(t, b.CancelledBy)
	assert.Equal(t, by.Name, b.CancelledBy.Name)

	assert.ErrorIs(t, b.Cancel(by, now), ErrAlreadyCancelled)

	completed := newTestBooking(t)
	_, err := completed.SetStatus(StatusCompleted, now)
	require.NoError(t, err)
	assert.ErrorIs(t, completed.Cancel(by, now), ErrNotCancellable)
}

func TestAssignSubstitute(t *testing.T) {
	b := newTestBooking(t)
	now := time.Now()

	assert.ErrorIs(t, b.AssignSubstitute("g-1", now), ErrSameGuide)

	require.NoError(t, b.AssignSubstitute("g-2", now))
	assert.Equal(t, "g-2", string(b.GuideID))
	assert.Equal(t, "g-1", string(b.OriginalGuideID))
	assert.Equal(t, StatusUpcoming, b.Status)

	// the original guide is recorded once and survives later substitutions
	require.NoError(t, b.AssignSubstitute("g-3", now))
	assert.Equal(t, "g-1", string(b.OriginalGuideID))

	cancelled := newTestBooking(t)
	_, err := cancelled.SetStatus(StatusCancelled, now)
	require.NoError(t, err)
	assert.ErrorIs(t, cancelled.AssignSubstitute("g-2", now), ErrNotReassignable)
}

func TestEventsRecordedAcrossLifecycle(t *testing.T) {
	b := newTestBooking(t)
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.created", b.PendingEvents()[0].EventName())
	b.ClearEvents()

	require.NoError(t, b.AssignSubstitute("g-2", time.Now()))
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.substitute_assigned", b.PendingEvents()[0].EventName())
}
