package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"bookmytourguide/internal/app/identity"
	domaintour "bookmytourguide/internal/domain/tour"
)

var ErrForbidden = errors.New("catalog: caller is not allowed to perform this action")

type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// Service manages the tour-package catalog. For the booking engine the
// catalog is read-only; mutation is an admin concern.
type Service struct {
	Tours    domaintour.Repository
	Uploader Uploader
}

type TourParams struct {
	Title       string
	Description string
	Locations   []string
	Price       float64
	Days        int
	Nights      int
}

type ImageUpload struct {
	Reader      io.Reader
	ContentType string
	Filename    string
}

func (s *Service) List(ctx context.Context) ([]*domaintour.Tour, error) {
	return s.Tours.List(ctx)
}

func (s *Service) ByID(ctx context.Context, id domaintour.ID) (*domaintour.Tour, error) {
	return s.Tours.ByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, params TourParams, images []ImageUpload) (*domaintour.Tour, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	id := domaintour.ID(uuid.NewString())
	urls, err := s.uploadImages(ctx, id, images)
	if err != nil {
		return nil, err
	}
	t, err := domaintour.NewTour(domaintour.CreateParams{
		ID:          id,
		Title:       params.Title,
		Description: params.Description,
		Locations:   params.Locations,
		Images:      urls,
		Price:       params.Price,
		Days:        params.Days,
		Nights:      params.Nights,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Tours.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, actor identity.Actor, id domaintour.ID, params TourParams, images []ImageUpload) (*domaintour.Tour, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	t, err := s.Tours.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Title != "" {
		t.Title = params.Title
	}
	if params.Description != "" {
		t.Description = params.Description
	}
	if len(params.Locations) > 0 {
		t.Locations = append([]string(nil), params.Locations...)
	}
	if params.Price > 0 {
		t.Price = params.Price
	}
	if params.Days > 0 {
		t.Days = params.Days
	}
	if params.Nights > 0 {
		t.Nights = params.Nights
	}
	urls, err := s.uploadImages(ctx, id, images)
	if err != nil {
		return nil, err
	}
	t.Images = append(t.Images, urls...)
	t.UpdatedAt = time.Now().UTC()
	if err := s.Tours.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, id domaintour.ID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.Tours.Delete(ctx, id)
}

func (s *Service) uploadImages(ctx context.Context, id domaintour.ID, images []ImageUpload) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if s.Uploader == nil {
		return nil, errors.New("catalog: uploader not configured")
	}
	urls := make([]string, 0, len(images))
	for i, img := range images {
		key := fmt.Sprintf("packages/images/%s-%d-%s", id, i, img.Filename)
		url, err := s.Uploader.Upload(ctx, key, img.Reader, img.ContentType)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
