package tour

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired    = errors.New("tour: id is required")
	ErrTitleRequired = errors.New("tour: title is required")
	ErrInvalidPrice  = errors.New("tour: price must be positive")
	ErrNotFound      = errors.New("tour: not found")
)

type ID string

// Tour is a catalog package. For the booking engine it is a read-only
// collaborator: only ID and Price participate in the lifecycle.
type Tour struct {
	ID          ID
	Title       string
	Description string
	Locations   []string
	Images      []string
	// Price is per tourist, in rupees.
	Price     float64
	Days      int
	Nights    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Tour, error)
	List(ctx context.Context) ([]*Tour, error)
	Save(ctx context.Context, t *Tour) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID          ID
	Title       string
	Description string
	Locations   []string
	Images      []string
	Price       float64
	Days        int
	Nights      int
	CreatedAt   time.Time
}

func NewTour(params CreateParams) (*Tour, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if params.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Tour{
		ID:          params.ID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Locations:   append([]string(nil), params.Locations...),
		Images:      append([]string(nil), params.Images...),
		Price:       params.Price,
		Days:        params.Days,
		Nights:      params.Nights,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
