package booking

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"bookmytourguide/internal/domain/guide"
	"bookmytourguide/internal/domain/shared/daterange"
	"bookmytourguide/internal/domain/shared/events"
	"bookmytourguide/internal/domain/tour"
	"bookmytourguide/internal/domain/user"
)

var (
	ErrIDRequired       = errors.New("booking: id is required")
	ErrTourRequired     = errors.New("booking: tour reference is required")
	ErrGuideRequired    = errors.New("booking: guide reference is required")
	ErrUserRequired     = errors.New("booking: user reference is required")
	ErrPaymentRequired  = errors.New("booking: payment id is required")
	ErrInvalidTourists  = errors.New("booking: number of tourists must be at least 1")
	ErrInvalidStatus    = errors.New("booking: invalid status value")
	ErrNotCancellable   = errors.New("booking: only upcoming bookings can be cancelled")
	ErrSameGuide        = errors.New("booking: substitute must differ from the current guide")
	ErrNotReassignable  = errors.New("booking: booking is not awaiting reassignment")
	ErrNotFound         = errors.New("booking: not found")
	ErrAlreadyCancelled = errors.New("booking: already cancelled")
	ErrConcurrentUpdate = errors.New("booking: concurrent update detected")
)

type ID string

type Status string

const (
	StatusUpcoming           Status = "Upcoming"
	StatusCompleted          Status = "Completed"
	StatusCancelled          Status = "Cancelled"
	StatusAwaitingSubstitute Status = "Awaiting Substitute"
)

type PaymentStatus string

const (
	PaymentAdvancePaid PaymentStatus = "Advance Paid"
	PaymentFullyPaid   PaymentStatus = "Fully Paid"
	PaymentRefunded    PaymentStatus = "Refunded"
)

// AdvanceRate is the share of the total price collected at booking time and
// refunded on cancellation.
const AdvanceRate = 0.20

// CancellerInfo records who triggered a cancellation.
type CancellerInfo struct {
	ID   user.ID
	Role user.Role
	Name string
}

type Booking struct {
	ID               ID
	TourID           tour.ID
	GuideID          guide.ID
	OriginalGuideID  guide.ID // set once, on the first substitution
	UserID           user.ID
	Range            daterange.DateRange
	NumberOfTourists int
	TotalPrice       float64
	AdvanceAmount    float64
	PaymentID        string
	Status           Status
	PaymentStatus    PaymentStatus
	CancelledBy      *CancellerInfo
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	ListAll(ctx context.Context) ([]*Booking, error)
	ListByUser(ctx context.Context, userID user.ID) ([]*Booking, error)
	ListByGuide(ctx context.Context, guideID guide.ID) ([]*Booking, error)
	Save(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID               ID
	TourID           tour.ID
	GuideID          guide.ID
	UserID           user.ID
	Range            daterange.DateRange
	NumberOfTourists int
	// TourPrice is the catalog per-tourist price. Totals are always derived
	// from it here, never taken from client input.
	TourPrice float64
	PaymentID string
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.TourID)) == "" {
		return nil, ErrTourRequired
	}
	if strings.TrimSpace(string(params.GuideID)) == "" {
		return nil, ErrGuideRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(params.PaymentID) == "" {
		return nil, ErrPaymentRequired
	}
	if params.NumberOfTourists < 1 {
		return nil, ErrInvalidTourists
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	total := params.TourPrice * float64(params.NumberOfTourists)
	b := &Booking{
		ID:               params.ID,
		TourID:           params.TourID,
		GuideID:          params.GuideID,
		UserID:           params.UserID,
		Range:            params.Range,
		NumberOfTourists: params.NumberOfTourists,
		TotalPrice:       total,
		AdvanceAmount:    total * AdvanceRate,
		PaymentID:        strings.TrimSpace(params.PaymentID),
		Status:           StatusUpcoming,
		PaymentStatus:    PaymentAdvancePaid,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	b.Record(Created{BookingID: b.ID, TourID: b.TourID, GuideID: b.GuideID, UserID: b.UserID, Range: b.Range, Total: b.TotalPrice, At: now})
	return b, nil
}

// ParseStatus accepts only the four enumerated status values.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.TrimSpace(raw)) {
	case StatusUpcoming:
		return StatusUpcoming, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusAwaitingSubstitute:
		return StatusAwaitingSubstitute, nil
	default:
		return "", ErrInvalidStatus
	}
}

// SetStatus applies an administrative status change. It reports whether the
// booking newly entered the Cancelled state, in which case the caller must
// release the guide's reserved days.
func (b *Booking) SetStatus(status Status, now time.Time) (newlyCancelled bool, err error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return false, err
	}
	newlyCancelled = status == StatusCancelled && b.Status != StatusCancelled
	prev := b.Status
	b.Status = status
	b.UpdatedAt = now.UTC()
	b.Record(StatusChanged{BookingID: b.ID, From: prev, To: status, At: b.UpdatedAt})
	return newlyCancelled, nil
}

// Cancel transitions Upcoming -> Cancelled and marks the advance refunded.
// The aggregate only validates and applies the local state change; issuing
// the refund and undoing a failed one is the caller's job (see Reinstate).
func (b *Booking) Cancel(by CancellerInfo, now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if b.Status != StatusUpcoming {
		return ErrNotCancellable
	}
	b.Status = StatusCancelled
	b.PaymentStatus = PaymentRefunded
	b.CancelledBy = &CancellerInfo{ID: by.ID, Role: by.Role, Name: by.Name}
	b.UpdatedAt = now.UTC()
	b.Record(Cancelled{BookingID: b.ID, GuideID: b.GuideID, Range: b.Range, Refund: b.AdvanceAmount, By: by, At: b.UpdatedAt})
	return nil
}

// Reinstate reverts a cancellation whose refund could not be completed,
// restoring the pre-cancel state so the action stays retryable.
func (b *Booking) Reinstate(now time.Time) {
	if b.Status != StatusCancelled {
		return
	}
	b.Status = StatusUpcoming
	b.PaymentStatus = PaymentAdvancePaid
	b.CancelledBy = nil
	b.UpdatedAt = now.UTC()
}

// AssignSubstitute moves the booking onto a new guide. The first-ever
// original assignment is preserved for audit; later substitutions keep it.
func (b *Booking) AssignSubstitute(substitute guide.ID, now time.Time) error {
	if substitute == "" {
		return ErrGuideRequired
	}
	if substitute == b.GuideID {
		return ErrSameGuide
	}
	switch b.Status {
	case StatusUpcoming, StatusAwaitingSubstitute:
	default:
		return ErrNotReassignable
	}
	if b.OriginalGuideID == "" {
		b.OriginalGuideID = b.GuideID
	}
	prev := b.GuideID
	b.GuideID = substitute
	b.Status = StatusUpcoming
	b.UpdatedAt = now.UTC()
	b.Record(SubstituteAssigned{BookingID: b.ID, From: prev, To: substitute, Range: b.Range, At: b.UpdatedAt})
	return nil
}

// AdvanceMinorUnits is the refundable advance expressed in the currency's
// minor unit (paise), rounded to the nearest integer.
func (b *Booking) AdvanceMinorUnits() int64 {
	return int64(math.Round(b.AdvanceAmount * 100))
}

// Active reports whether the booking still holds its guide's dates.
func (b *Booking) Active() bool {
	return b.Status == StatusUpcoming || b.Status == StatusAwaitingSubstitute || b.Status == StatusCompleted
}
