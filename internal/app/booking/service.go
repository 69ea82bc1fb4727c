package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookmytourguide/internal/app/identity"
	"bookmytourguide/internal/app/outbox"
	"bookmytourguide/internal/app/policies"
	domainbooking "bookmytourguide/internal/domain/booking"
	domainguide "bookmytourguide/internal/domain/guide"
	"bookmytourguide/internal/domain/shared/daterange"
	domaintour "bookmytourguide/internal/domain/tour"
	domainuser "bookmytourguide/internal/domain/user"
)

var (
	ErrSignatureInvalid   = errors.New("booking: payment signature verification failed")
	ErrPaymentNotCaptured = errors.New("booking: payment is not captured, refund not possible")
	ErrForbidden          = errors.New("booking: caller is not allowed to perform this action")
	ErrAmountRequired     = errors.New("booking: order amount must be positive")
	ErrReceiptRequired    = errors.New("booking: order receipt is required")
	ErrGatewayFailure     = errors.New("booking: payment gateway request failed")
)

// Service orchestrates the booking lifecycle: creation against a verified
// payment, status transitions, cancellation with refund, substitute
// reassignment and role-scoped reads.
type Service struct {
	Bookings domainbooking.Repository
	Guides   domainguide.Repository
	Tours    domaintour.Repository
	Users    domainuser.Repository
	Payments policies.PaymentGateway
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Now      func() time.Time
}

type CreateParams struct {
	TourID           domaintour.ID
	GuideID          domainguide.ID
	StartDate        time.Time
	EndDate          time.Time
	NumberOfTourists int
	PaymentID        string
}

type VerifyParams struct {
	OrderID   string
	PaymentID string
	Signature string
	CreateParams
}

// View is a booking with its referenced records expanded.
type View struct {
	Booking       *domainbooking.Booking
	User          *domainuser.User
	Guide         *domainguide.Guide
	OriginalGuide *domainguide.Guide
	Tour          *domaintour.Tour
}

// CreateOrder asks the gateway for a payment order. Amount arrives in
// rupees and is converted to paise before the call; nothing is persisted.
func (s *Service) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (policies.Order, error) {
	if amount <= 0 {
		return policies.Order{}, ErrAmountRequired
	}
	if strings.TrimSpace(receipt) == "" {
		return policies.Order{}, ErrReceiptRequired
	}
	if currency = strings.TrimSpace(currency); currency == "" {
		currency = "INR"
	}
	order, err := s.Payments.CreateOrder(ctx, int64(math.Round(amount*100)), currency, receipt)
	if err != nil {
		return policies.Order{}, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	return order, nil
}

// Create books a tour against an already-collected payment id.
func (s *Service) Create(ctx context.Context, actor identity.Actor, params CreateParams) (*domainbooking.Booking, error) {
	if strings.TrimSpace(params.PaymentID) == "" {
		return nil, domainbooking.ErrPaymentRequired
	}
	return s.create(ctx, actor, params)
}

// VerifyAndCreate checks the gateway signature over "orderID|paymentID"
// before creating the booking. A mismatch rejects the request outright and
// nothing is persisted.
func (s *Service) VerifyAndCreate(ctx context.Context, actor identity.Actor, params VerifyParams) (*domainbooking.Booking, error) {
	if !s.Payments.VerifySignature(params.OrderID, params.PaymentID, params.Signature) {
		return nil, ErrSignatureInvalid
	}
	params.CreateParams.PaymentID = params.PaymentID
	return s.create(ctx, actor, params.CreateParams)
}

func (s *Service) create(ctx context.Context, actor identity.Actor, params CreateParams) (*domainbooking.Booking, error) {
	dr, err := daterange.New(params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}
	t, err := s.Tours.ByID(ctx, params.TourID)
	if err != nil {
		return nil, err
	}
	g, err := s.Guides.ByID(ctx, params.GuideID)
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:               domainbooking.ID(uuid.NewString()),
		TourID:           t.ID,
		GuideID:          g.ID,
		UserID:           actor.ID,
		Range:            dr,
		NumberOfTourists: params.NumberOfTourists,
		TourPrice:        t.Price,
		PaymentID:        params.PaymentID,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return nil, err
	}

	// The reservation is a single conditional write: it fails atomically
	// when any requested day is already taken, so two concurrent requests
	// for overlapping ranges cannot both get through.
	if err := s.Guides.ReserveDates(ctx, g.ID, dr.Days()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		if relErr := s.Guides.ReleaseDates(ctx, g.ID, dr.Days()); relErr != nil {
			s.log().Error("reservation rollback failed", "booking_id", b.ID, "guide_id", g.ID, "error", relErr)
		}
		return nil, err
	}
	s.drainEvents(ctx, b)
	return b, nil
}

// UpdateStatus applies one of the four enumerated statuses. Entering
// Cancelled through this administrative path releases the guide's days but
// issues no refund; the refunding path is Cancel.
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, id domainbooking.ID, rawStatus string) (*domainbooking.Booking, error) {
	status, err := domainbooking.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(ctx, actor, b); err != nil {
		return nil, err
	}
	newlyCancelled, err := b.SetStatus(status, s.now())
	if err != nil {
		return nil, err
	}
	// Persist before releasing: a failed save must not leave an Upcoming
	// booking whose range is no longer guarded. A failed release after the
	// save is only a stale hold on the guide's calendar.
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	if newlyCancelled {
		if err := s.Guides.ReleaseDates(ctx, b.GuideID, b.Range.Days()); err != nil {
			s.log().Error("date release failed after status change", "booking_id", b.ID, "guide_id", b.GuideID, "error", err)
		}
	}
	s.drainEvents(ctx, b)
	return b, nil
}

// Cancel refunds the advance and releases the guide's days. The Cancelled
// state is persisted before the refund is issued, so a retry after a failed
// save cannot refund twice; a refund failure reinstates the booking, and a
// failed date release afterwards leaves only a stale hold.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, id domainbooking.ID) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if b.Status == domainbooking.StatusCancelled {
		return nil, domainbooking.ErrAlreadyCancelled
	}
	if b.Status != domainbooking.StatusUpcoming {
		return nil, domainbooking.ErrNotCancellable
	}

	status, err := s.Payments.PaymentStatus(ctx, b.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	if status != policies.PaymentStatusCaptured {
		return nil, ErrPaymentNotCaptured
	}
	if err := b.Cancel(domainbooking.CancellerInfo{ID: actor.ID, Role: actor.Role, Name: actor.Name}, s.now()); err != nil {
		return nil, err
	}
	// No external effect has happened yet: a failed save aborts the whole
	// cancellation and the retry starts from a clean Upcoming booking.
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}

	notes := map[string]string{
		"booking_id": string(b.ID),
		"reason":     "booking cancelled",
	}
	if _, err := s.Payments.Refund(ctx, b.PaymentID, b.AdvanceMinorUnits(), notes); err != nil {
		b.ClearEvents()
		b.Reinstate(s.now())
		if saveErr := s.Bookings.Save(ctx, b); saveErr != nil {
			s.log().Error("cancellation rollback persist failed", "booking_id", b.ID, "error", saveErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	if err := s.Guides.ReleaseDates(ctx, b.GuideID, b.Range.Days()); err != nil {
		s.log().Error("date release failed after cancellation", "booking_id", b.ID, "guide_id", b.GuideID, "error", err)
	}
	s.drainEvents(ctx, b)
	return b, nil
}

// AssignSubstitute moves the booking to a different guide. The substitute's
// days are reserved first (atomically); only then is the previous guide
// released, so the range is never unguarded mid-swap.
func (s *Service) AssignSubstitute(ctx context.Context, actor identity.Actor, id domainbooking.ID, substituteID domainguide.ID) (*domainbooking.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sub, err := s.Guides.ByID(ctx, substituteID)
	if err != nil {
		return nil, err
	}
	prev := b.GuideID
	if err := b.AssignSubstitute(sub.ID, s.now()); err != nil {
		return nil, err
	}

	days := b.Range.Days()
	if err := s.Guides.ReserveDates(ctx, sub.ID, days); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		if relErr := s.Guides.ReleaseDates(ctx, sub.ID, days); relErr != nil {
			s.log().Error("substitute reservation rollback failed", "booking_id", b.ID, "guide_id", sub.ID, "error", relErr)
		}
		return nil, err
	}
	if err := s.Guides.ReleaseDates(ctx, prev, days); err != nil {
		s.log().Error("previous guide release failed", "booking_id", b.ID, "guide_id", prev, "error", err)
	}
	s.drainEvents(ctx, b)
	return b, nil
}

// Delete removes the booking permanently. Only a booking that still holds
// its guide's dates frees them: a cancelled booking already released its
// range, and those days may since have been reserved by someone else.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id domainbooking.ID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Bookings.Delete(ctx, b.ID); err != nil {
		return err
	}
	if b.Active() {
		if err := s.Guides.ReleaseDates(ctx, b.GuideID, b.Range.Days()); err != nil {
			s.log().Error("date release failed after delete", "booking_id", b.ID, "guide_id", b.GuideID, "error", err)
		}
	}
	ev := domainbooking.Deleted{BookingID: b.ID, GuideID: b.GuideID, Range: b.Range, At: s.now()}
	b.Record(ev)
	s.drainEvents(ctx, b)
	return nil
}

// ListAll returns every booking, newest first. Admin only.
func (s *Service) ListAll(ctx context.Context, actor identity.Actor) ([]View, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	items, err := s.Bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, items)
}

// ListMine returns the caller's own bookings, newest start date first.
func (s *Service) ListMine(ctx context.Context, actor identity.Actor) ([]View, error) {
	items, err := s.Bookings.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, items)
}

// ListForGuide resolves the caller's guide profile and returns its bookings.
// A caller without a guide profile gets an empty list, not an error.
func (s *Service) ListForGuide(ctx context.Context, actor identity.Actor) ([]View, error) {
	profile, err := s.Guides.ByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, domainguide.ErrNotFound) {
			return []View{}, nil
		}
		return nil, err
	}
	items, err := s.Bookings.ListByGuide(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, items)
}

// GetByID returns a single booking with relations expanded. Reads are
// role-scoped: only the owner, the currently assigned guide, or an admin.
func (s *Service) GetByID(ctx context.Context, actor identity.Actor, id domainbooking.ID) (View, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.authorizeRead(ctx, actor, b); err != nil {
		return View{}, err
	}
	views, err := s.expand(ctx, []*domainbooking.Booking{b})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

func (s *Service) authorizeRead(ctx context.Context, actor identity.Actor, b *domainbooking.Booking) error {
	if b.UserID == actor.ID || actor.IsAdmin() {
		return nil
	}
	profile, err := s.Guides.ByUserID(ctx, actor.ID)
	if err == nil && profile.ID == b.GuideID {
		return nil
	}
	if err != nil && !errors.Is(err, domainguide.ErrNotFound) {
		return err
	}
	return ErrForbidden
}

func (s *Service) authorizeManage(ctx context.Context, actor identity.Actor, b *domainbooking.Booking) error {
	if actor.IsAdmin() {
		return nil
	}
	profile, err := s.Guides.ByUserID(ctx, actor.ID)
	if err == nil && profile.ID == b.GuideID {
		return nil
	}
	if err != nil && !errors.Is(err, domainguide.ErrNotFound) {
		return err
	}
	return ErrForbidden
}

// expand resolves the booking's references. A reference that no longer
// exists is omitted from the view; any other lookup failure aborts the whole
// read instead of reporting partial data as success.
func (s *Service) expand(ctx context.Context, items []*domainbooking.Booking) ([]View, error) {
	views := make([]View, 0, len(items))
	for _, b := range items {
		v := View{Booking: b}
		u, err := s.Users.ByID(ctx, b.UserID)
		if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
			return nil, err
		}
		v.User = u
		g, err := s.Guides.ByID(ctx, b.GuideID)
		if err != nil && !errors.Is(err, domainguide.ErrNotFound) {
			return nil, err
		}
		v.Guide = g
		if b.OriginalGuideID != "" {
			og, err := s.Guides.ByID(ctx, b.OriginalGuideID)
			if err != nil && !errors.Is(err, domainguide.ErrNotFound) {
				return nil, err
			}
			v.OriginalGuide = og
		}
		t, err := s.Tours.ByID(ctx, b.TourID)
		if err != nil && !errors.Is(err, domaintour.ErrNotFound) {
			return nil, err
		}
		v.Tour = t
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) drainEvents(ctx context.Context, b *domainbooking.Booking) {
	if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, b.Drain()); err != nil {
		s.log().Warn("outbox record failed", "booking_id", b.ID, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
