package testimonial

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired      = errors.New("testimonial: id is required")
	ErrAuthorRequired  = errors.New("testimonial: author name is required")
	ErrMessageRequired = errors.New("testimonial: message is required")
	ErrNotFound        = errors.New("testimonial: not found")
)

type ID string

type Testimonial struct {
	ID        ID
	Author    string
	Location  string
	Message   string
	Rating    int
	VideoURL  string
	CreatedAt time.Time
}

// Page is a slice of testimonials plus the total count for pagination.
type Page struct {
	Items []*Testimonial
	Total int64
}

type Repository interface {
	List(ctx context.Context, offset, limit int) (Page, error)
	Save(ctx context.Context, t *Testimonial) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID        ID
	Author    string
	Location  string
	Message   string
	Rating    int
	VideoURL  string
	CreatedAt time.Time
}

func New(params CreateParams) (*Testimonial, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	author := strings.TrimSpace(params.Author)
	if author == "" {
		return nil, ErrAuthorRequired
	}
	message := strings.TrimSpace(params.Message)
	if message == "" {
		return nil, ErrMessageRequired
	}
	rating := params.Rating
	if rating < 1 {
		rating = 5
	}
	if rating > 5 {
		rating = 5
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Testimonial{
		ID:        params.ID,
		Author:    author,
		Location:  strings.TrimSpace(params.Location),
		Message:   message,
		Rating:    rating,
		VideoURL:  strings.TrimSpace(params.VideoURL),
		CreatedAt: now.UTC(),
	}, nil
}
