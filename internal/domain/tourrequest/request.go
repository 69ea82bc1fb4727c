package tourrequest

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookmytourguide/internal/domain/user"
)

var (
	ErrIDRequired          = errors.New("tourrequest: id is required")
	ErrUserRequired        = errors.New("tourrequest: user reference is required")
	ErrDestinationRequired = errors.New("tourrequest: destination is required")
	ErrInvalidStatus       = errors.New("tourrequest: invalid status")
	ErrNotFound            = errors.New("tourrequest: not found")
)

type ID string

type Status string

const (
	StatusPending  Status = "Pending"
	StatusReviewed Status = "Reviewed"
	StatusAccepted Status = "Accepted"
	StatusDeclined Status = "Declined"
)

// Request is a custom tour enquiry: a user describes the trip they want and
// an admin works it into a quote offline.
type Request struct {
	ID          ID
	UserID      user.ID
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	GroupSize   int
	Budget      float64
	Notes       string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Request, error)
	ListAll(ctx context.Context) ([]*Request, error)
	ListByUser(ctx context.Context, userID user.ID) ([]*Request, error)
	Save(ctx context.Context, r *Request) error
}

type CreateParams struct {
	ID          ID
	UserID      user.ID
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	GroupSize   int
	Budget      float64
	Notes       string
	CreatedAt   time.Time
}

func New(params CreateParams) (*Request, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	destination := strings.TrimSpace(params.Destination)
	if destination == "" {
		return nil, ErrDestinationRequired
	}
	groupSize := params.GroupSize
	if groupSize < 1 {
		groupSize = 1
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Request{
		ID:          params.ID,
		UserID:      params.UserID,
		Destination: destination,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		GroupSize:   groupSize,
		Budget:      params.Budget,
		Notes:       strings.TrimSpace(params.Notes),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *Request) SetStatus(status Status, now time.Time) error {
	switch status {
	case StatusPending, StatusReviewed, StatusAccepted, StatusDeclined:
	default:
		return ErrInvalidStatus
	}
	r.Status = status
	r.UpdatedAt = now.UTC()
	return nil
}
