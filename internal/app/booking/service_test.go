package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmytourguide/internal/app/identity"
	"bookmytourguide/internal/app/outbox"
	"bookmytourguide/internal/app/policies"
	domainbooking "bookmytourguide/internal/domain/booking"
	domainguide "bookmytourguide/internal/domain/guide"
	domaintour "bookmytourguide/internal/domain/tour"
	domainuser "bookmytourguide/internal/domain/user"
	"bookmytourguide/internal/infra/storage/memory"
)

type fakeGateway struct {
	orders         []policies.Order
	refunds        []refundCall
	status         string
	statusErr      error
	refundErr      error
	validSignature string
}

type refundCall struct {
	paymentID string
	amount    int64
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (policies.Order, error) {
	order := policies.Order{ID: "order_1", Amount: amountMinor, Currency: currency, Receipt: receipt, Status: "created"}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == f.validSignature
}

func (f *fakeGateway) PaymentStatus(_ context.Context, _ string) (string, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	if f.status == "" {
		return policies.PaymentStatusCaptured, nil
	}
	return f.status, nil
}

func (f *fakeGateway) Refund(_ context.Context, paymentID string, amountMinor int64, _ map[string]string) (policies.Refund, error) {
	if f.refundErr != nil {
		return policies.Refund{}, f.refundErr
	}
	f.refunds = append(f.refunds, refundCall{paymentID: paymentID, amount: amountMinor})
	return policies.Refund{ID: "rfnd_1", Amount: amountMinor, Status: "processed"}, nil
}

type fixture struct {
	service  *Service
	bookings *memory.BookingRepository
	guides   *memory.GuideRepository
	tours    *memory.TourRepository
	users    *memory.UserRepository
	outbox   *memory.Outbox
	gateway  *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings: memory.NewBookingRepository(),
		guides:   memory.NewGuideRepository(),
		tours:    memory.NewTourRepository(),
		users:    memory.NewUserRepository(),
		outbox:   memory.NewOutbox(),
		gateway:  &fakeGateway{validSignature: "good"},
	}
	f.service = &Service{
		Bookings: f.bookings,
		Guides:   f.guides,
		Tours:    f.tours,
		Users:    f.users,
		Payments: f.gateway,
		Outbox:   f.outbox,
		Encoder:  outbox.JSONEventEncoder{},
		Now:      func() time.Time { return time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC) },
	}

	ctx := context.Background()
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: "u-1", Email: "ravi@example.com", Name: "Ravi", PasswordHash: "x", Role: domainuser.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(ctx, u))

	g, err := domainguide.NewGuide(domainguide.CreateParams{ID: "g-1", UserID: "ug-1", Name: "Asha"})
	require.NoError(t, err)
	g.Approval = domainguide.ApprovalApproved
	require.NoError(t, f.guides.Save(ctx, g))

	g2, err := domainguide.NewGuide(domainguide.CreateParams{ID: "g-2", UserID: "ug-2", Name: "Meera"})
	require.NoError(t, err)
	g2.Approval = domainguide.ApprovalApproved
	require.NoError(t, f.guides.Save(ctx, g2))

	tr, err := domaintour.NewTour(domaintour.CreateParams{ID: "t-1", Title: "Backwaters", Price: 100, Days: 3, Nights: 2})
	require.NoError(t, err)
	require.NoError(t, f.tours.Save(ctx, tr))

	return f
}

func (f *fixture) createParams() CreateParams {
	return CreateParams{
		TourID:           "t-1",
		GuideID:          "g-1",
		StartDate:        time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
		NumberOfTourists: 2,
		PaymentID:        "pay_123",
	}
}

var (
	owner = identity.Actor{ID: "u-1", Role: domainuser.RoleUser, Name: "Ravi"}
	admin = identity.Actor{ID: "a-1", Role: domainuser.RoleAdmin, Name: "Admin"}
	other = identity.Actor{ID: "u-2", Role: domainuser.RoleUser, Name: "Sita"}
)

func TestCreateDerivesPricesAndReservesDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	assert.Equal(t, 200.0, b.TotalPrice)
	assert.Equal(t, 40.0, b.AdvanceAmount)
	assert.Equal(t, domainbooking.StatusUpcoming, b.Status)

	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, g.UnavailableDates, 3)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.created", records[0].Name)
}

func TestCreateConflictLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	params := f.createParams()
	params.StartDate = time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC)
	params.EndDate = time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC)
	params.PaymentID = "pay_456"
	_, err = f.service.Create(ctx, other, params)
	assert.ErrorIs(t, err, domainguide.ErrDatesConflict)

	all, err := f.bookings.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, g.UnavailableDates, 3, "failed attempt must not extend the reserved set")
}

func TestCreateRequiresPaymentID(t *testing.T) {
	f := newFixture(t)
	params := f.createParams()
	params.PaymentID = ""
	_, err := f.service.Create(context.Background(), owner, params)
	assert.ErrorIs(t, err, domainbooking.ErrPaymentRequired)
}

func TestVerifyAndCreateRejectsTamperedSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.VerifyAndCreate(ctx, owner, VerifyParams{
		OrderID:      "order_1",
		PaymentID:    "pay_123",
		Signature:    "tampered",
		CreateParams: f.createParams(),
	})
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	all, err := f.bookings.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing may persist on a bad signature")
	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, g.UnavailableDates)
}

func TestVerifyAndCreateAcceptsValidSignature(t *testing.T) {
	f := newFixture(t)
	b, err := f.service.VerifyAndCreate(context.Background(), owner, VerifyParams{
		OrderID:      "order_1",
		PaymentID:    "pay_123",
		Signature:    "good",
		CreateParams: f.createParams(),
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_123", b.PaymentID)
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	f := newFixture(t)
	order, err := f.service.CreateOrder(context.Background(), 40.0, "", "rcpt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), order.Amount)
	assert.Equal(t, "INR", order.Currency)

	_, err = f.service.CreateOrder(context.Background(), 0, "INR", "rcpt-1")
	assert.ErrorIs(t, err, ErrAmountRequired)
	_, err = f.service.CreateOrder(context.Background(), 10, "INR", " ")
	assert.ErrorIs(t, err, ErrReceiptRequired)
}

func TestCancelRefundsAdvanceAndReleasesDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, cancelled.Status)
	assert.Equal(t, domainbooking.PaymentRefunded, cancelled.PaymentStatus)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, owner.Name, cancelled.CancelledBy.Name)

	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, int64(4000), f.gateway.refunds[0].amount)

	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, g.UnavailableDates)

	_, err = f.service.Cancel(ctx, owner, b.ID)
	assert.ErrorIs(t, err, domainbooking.ErrAlreadyCancelled)
}

func TestCancelRejectsForeignUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, other, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.service.Cancel(ctx, admin, b.ID)
	assert.NoError(t, err, "admin may cancel on the user's behalf")
}

func TestCancelRequiresCapturedPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	f.gateway.status = "authorized"
	_, err = f.service.Cancel(ctx, owner, b.ID)
	assert.ErrorIs(t, err, ErrPaymentNotCaptured)

	stored, err := f.bookings.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusUpcoming, stored.Status, "a refused refund leaves the booking untouched")
	assert.Empty(t, f.gateway.refunds)
}

func TestCancelRefundFailureLeavesBookingUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	f.gateway.refundErr = errors.New("gateway down")
	_, err = f.service.Cancel(ctx, owner, b.ID)
	assert.ErrorIs(t, err, ErrGatewayFailure)

	stored, err := f.bookings.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusUpcoming, stored.Status)
	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, g.UnavailableDates, 3, "dates stay reserved until the refund succeeds")
}

func TestUpdateStatusCancelledReleasesDatesWithoutRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(ctx, admin, b.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, updated.Status)
	assert.Empty(t, f.gateway.refunds, "the administrative path never refunds")

	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, g.UnavailableDates)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, admin, b.ID, "Postponed")
	assert.ErrorIs(t, err, domainbooking.ErrInvalidStatus)
}

func TestUpdateStatusAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, other, b.ID, "Completed")
	assert.ErrorIs(t, err, ErrForbidden)

	// the assigned guide may manage the booking
	assigned := identity.Actor{ID: "ug-1", Role: domainuser.RoleGuide, Name: "Asha"}
	_, err = f.service.UpdateStatus(ctx, assigned, b.ID, "Completed")
	assert.NoError(t, err)
}

func TestAssignSubstituteMovesReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	updated, err := f.service.AssignSubstitute(ctx, admin, b.ID, "g-2")
	require.NoError(t, err)
	assert.Equal(t, "g-2", string(updated.GuideID))
	assert.Equal(t, "g-1", string(updated.OriginalGuideID))
	assert.Equal(t, domainbooking.StatusUpcoming, updated.Status)

	prev, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, prev.UnavailableDates)
	sub, err := f.guides.ByID(ctx, "g-2")
	require.NoError(t, err)
	assert.Len(t, sub.UnavailableDates, 3)
}

func TestAssignSubstituteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	_, err = f.service.AssignSubstitute(ctx, owner, b.ID, "g-2")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAssignSubstituteConflictKeepsCurrentGuide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	// block the substitute for an overlapping day
	require.NoError(t, f.guides.ReserveDates(ctx, "g-2", b.Range.Days()[:1]))

	_, err = f.service.AssignSubstitute(ctx, admin, b.ID, "g-2")
	assert.ErrorIs(t, err, domainguide.ErrDatesConflict)

	prev, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, prev.UnavailableDates, 3, "previous guide keeps the reservation on conflict")
}

func TestDeleteReleasesDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	require.ErrorIs(t, f.service.Delete(ctx, owner, b.ID), ErrForbidden)
	require.NoError(t, f.service.Delete(ctx, admin, b.ID))

	_, err = f.bookings.ByID(ctx, b.ID)
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, g.UnavailableDates)
}

// brokenSaveBookings fails every Save while delegating the reads, standing
// in for a datastore that stopped accepting writes mid-flow.
type brokenSaveBookings struct {
	domainbooking.Repository
	saveErr error
}

func (r *brokenSaveBookings) Save(context.Context, *domainbooking.Booking) error {
	return r.saveErr
}

func TestCancelPersistFailureIssuesNoRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	f.service.Bookings = &brokenSaveBookings{Repository: f.bookings, saveErr: errors.New("write timeout")}
	_, err = f.service.Cancel(ctx, owner, b.ID)
	require.Error(t, err)

	stored, err := f.bookings.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusUpcoming, stored.Status, "a failed save must not leave a half-cancelled booking")
	assert.Equal(t, domainbooking.PaymentAdvancePaid, stored.PaymentStatus)
	assert.Empty(t, f.gateway.refunds, "the refund is only issued once the cancellation is persisted")

	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, g.UnavailableDates, 3, "the range stays guarded for the retry")
}

func TestUpdateStatusPersistFailureKeepsDatesReserved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	f.service.Bookings = &brokenSaveBookings{Repository: f.bookings, saveErr: errors.New("write timeout")}
	_, err = f.service.UpdateStatus(ctx, admin, b.ID, "Cancelled")
	require.Error(t, err)

	stored, err := f.bookings.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusUpcoming, stored.Status)
	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, g.UnavailableDates, 3)
}

func TestDeleteCancelledBookingKeepsLaterReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, owner, b1.ID)
	require.NoError(t, err)

	// the freed days get rebooked by someone else
	params := f.createParams()
	params.PaymentID = "pay_456"
	b2, err := f.service.Create(ctx, other, params)
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, admin, b1.ID))

	g, err := f.guides.ByID(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, g.UnavailableDates, 3, "deleting the cancelled booking must not free the rebooked days")
	_, err = f.bookings.ByID(ctx, b2.ID)
	assert.NoError(t, err)
}

func TestListAllIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	_, err = f.service.ListAll(ctx, owner)
	assert.ErrorIs(t, err, ErrForbidden)

	views, err := f.service.ListAll(ctx, admin)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Ravi", views[0].User.Name)
	assert.Equal(t, "Backwaters", views[0].Tour.Title)
}

// brokenTourReads fails every ByID, standing in for an unreachable tours
// collection during relation expansion.
type brokenTourReads struct {
	domaintour.Repository
	err error
}

func (r *brokenTourReads) ByID(context.Context, domaintour.ID) (*domaintour.Tour, error) {
	return nil, r.err
}

func TestListAllOmitsDeletedTour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)
	require.NoError(t, f.tours.Delete(ctx, "t-1"))

	views, err := f.service.ListAll(ctx, admin)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].Tour, "a reference that no longer exists is simply omitted")
	assert.Equal(t, "Asha", views[0].Guide.Name)
}

func TestListAllPropagatesRelationLookupFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	lookupErr := errors.New("connection reset")
	f.service.Tours = &brokenTourReads{Repository: f.tours, err: lookupErr}
	_, err = f.service.ListAll(ctx, admin)
	assert.ErrorIs(t, err, lookupErr, "an infrastructure failure must not surface as a partial view")
}

func TestListForGuideWithoutProfileIsEmpty(t *testing.T) {
	f := newFixture(t)
	views, err := f.service.ListForGuide(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetByIDIsRoleScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.service.Create(ctx, owner, f.createParams())
	require.NoError(t, err)

	_, err = f.service.GetByID(ctx, owner, b.ID)
	assert.NoError(t, err)
	_, err = f.service.GetByID(ctx, admin, b.ID)
	assert.NoError(t, err)

	assigned := identity.Actor{ID: "ug-1", Role: domainuser.RoleGuide, Name: "Asha"}
	_, err = f.service.GetByID(ctx, assigned, b.ID)
	assert.NoError(t, err)

	_, err = f.service.GetByID(ctx, other, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
