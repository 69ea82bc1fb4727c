package guide

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookmytourguide/internal/domain/shared/daterange"
	"bookmytourguide/internal/domain/user"
)

var (
	ErrIDRequired     = errors.New("guide: id is required")
	ErrUserRequired   = errors.New("guide: user reference is required")
	ErrNotFound       = errors.New("guide: not found")
	ErrDatesConflict  = errors.New("guide: requested dates already reserved")
	ErrInvalidStatus  = errors.New("guide: invalid approval status")
	ErrNameRequired   = errors.New("guide: name is required")
	ErrProfileMissing = errors.New("guide: profile not found")
)

type ID string

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Guide is the service-provider profile. UnavailableDates is the
// availability ledger: the set of day keys reserved by confirmed bookings,
// and the sole double-booking guard for the guide.
type Guide struct {
	ID               ID
	UserID           user.ID
	Name             string
	Mobile           string
	DOB              string
	State            string
	Country          string
	Languages        []string
	Experience       string
	Specializations  []string
	Description      string
	PhotoURL         string
	LicenseURL       string
	ProfileComplete  bool
	Approval         ApprovalStatus
	UnavailableDates []time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repository persists guides. ReserveDates must be atomic: the persistence
// layer rejects the whole write when any of the requested days is already in
// the guide's set, so two concurrent bookings can never both claim a day.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Guide, error)
	ByUserID(ctx context.Context, userID user.ID) (*Guide, error)
	ListApproved(ctx context.Context) ([]*Guide, error)
	Save(ctx context.Context, g *Guide) error
	ReserveDates(ctx context.Context, id ID, days []time.Time) error
	ReleaseDates(ctx context.Context, id ID, days []time.Time) error
}

type CreateParams struct {
	ID        ID
	UserID    user.ID
	Name      string
	CreatedAt time.Time
}

func NewGuide(params CreateParams) (*Guide, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Guide{
		ID:        params.ID,
		UserID:    params.UserID,
		Name:      name,
		Approval:  ApprovalPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsRangeFree reports whether none of the range's days is reserved.
// Comparison is by day key only; stored dates are normalized on load.
func (g *Guide) IsRangeFree(dr daterange.DateRange) bool {
	reserved := g.daySet()
	for _, day := range dr.Days() {
		if _, taken := reserved[day]; taken {
			return false
		}
	}
	return true
}

// Reserve adds the range's days to the set. The caller must have confirmed
// IsRangeFree; persistence enforces the same condition atomically.
func (g *Guide) Reserve(dr daterange.DateRange) error {
	if !g.IsRangeFree(dr) {
		return ErrDatesConflict
	}
	g.UnavailableDates = append(g.UnavailableDates, dr.Days()...)
	return nil
}

// Release removes the range's days from the set. Days not present are
// ignored, so releasing is idempotent.
func (g *Guide) Release(dr daterange.DateRange) {
	releasing := make(map[time.Time]struct{}, dr.Len())
	for _, day := range dr.Days() {
		releasing[day] = struct{}{}
	}
	kept := g.UnavailableDates[:0]
	for _, raw := range g.UnavailableDates {
		if _, gone := releasing[daterange.DayKey(raw)]; !gone {
			kept = append(kept, raw)
		}
	}
	g.UnavailableDates = kept
}

func (g *Guide) SetApproval(status ApprovalStatus, now time.Time) error {
	switch status {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
	default:
		return ErrInvalidStatus
	}
	g.Approval = status
	g.UpdatedAt = now.UTC()
	return nil
}

// RefreshCompleteness mirrors the original profile-completeness rule: the
// profile counts as complete once the identifying fields and a photo exist.
func (g *Guide) RefreshCompleteness() {
	g.ProfileComplete = g.Name != "" && g.Mobile != "" && g.DOB != "" &&
		g.Country != "" && len(g.Languages) > 0 && g.Experience != "" && g.PhotoURL != ""
}

func (g *Guide) daySet() map[time.Time]struct{} {
	set := make(map[time.Time]struct{}, len(g.UnavailableDates))
	for _, d := range g.UnavailableDates {
		set[daterange.DayKey(d)] = struct{}{}
	}
	return set
}
