package subscription

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired   = errors.New("subscription: id is required")
	ErrNameRequired = errors.New("subscription: plan name is required")
	ErrInvalidPrice = errors.New("subscription: price must not be negative")
	ErrNotFound     = errors.New("subscription: plan not found")
)

type ID string

// Plan is a guide-facing subscription tier.
type Plan struct {
	ID           ID
	Name         string
	Price        float64
	DurationDays int
	Features     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	Save(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID           ID
	Name         string
	Price        float64
	DurationDays int
	Features     []string
	CreatedAt    time.Time
}

func NewPlan(params CreateParams) (*Plan, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if params.Price < 0 {
		return nil, ErrInvalidPrice
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Plan{
		ID:           params.ID,
		Name:         name,
		Price:        params.Price,
		DurationDays: params.DurationDays,
		Features:     append([]string(nil), params.Features...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
