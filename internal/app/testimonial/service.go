package testimonial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"bookmytourguide/internal/app/identity"
	domaintestimonial "bookmytourguide/internal/domain/testimonial"
)

var ErrForbidden = errors.New("testimonial: caller is not allowed to perform this action")

type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

type Service struct {
	Testimonials domaintestimonial.Repository
	Uploader     Uploader
}

type CreateParams struct {
	Author   string
	Location string
	Message  string
	Rating   int
}

type VideoUpload struct {
	Reader      io.Reader
	ContentType string
	Filename    string
}

// List returns one page of testimonials plus the total count. Page numbers
// start at 1; a non-positive limit falls back to 10.
func (s *Service) List(ctx context.Context, page, limit int) (domaintestimonial.Page, error) {
	if limit <= 0 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	return s.Testimonials.List(ctx, (page-1)*limit, limit)
}

func (s *Service) Create(ctx context.Context, params CreateParams, video *VideoUpload) (*domaintestimonial.Testimonial, error) {
	id := domaintestimonial.ID(uuid.NewString())
	videoURL := ""
	if video != nil {
		if s.Uploader == nil {
			return nil, errors.New("testimonial: uploader not configured")
		}
		key := fmt.Sprintf("testimonials/videos/%s-%s", id, video.Filename)
		url, err := s.Uploader.Upload(ctx, key, video.Reader, video.ContentType)
		if err != nil {
			return nil, err
		}
		videoURL = url
	}
	t, err := domaintestimonial.New(domaintestimonial.CreateParams{
		ID:        id,
		Author:    params.Author,
		Location:  params.Location,
		Message:   params.Message,
		Rating:    params.Rating,
		VideoURL:  videoURL,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Testimonials.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, id domaintestimonial.ID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.Testimonials.Delete(ctx, id)
}
