package tourrequest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookmytourguide/internal/app/identity"
	domainrequest "bookmytourguide/internal/domain/tourrequest"
)

var ErrForbidden = errors.New("tourrequest: caller is not allowed to perform this action")

type Service struct {
	Requests domainrequest.Repository
}

type CreateParams struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	GroupSize   int
	Budget      float64
	Notes       string
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, params CreateParams) (*domainrequest.Request, error) {
	r, err := domainrequest.New(domainrequest.CreateParams{
		ID:          domainrequest.ID(uuid.NewString()),
		UserID:      actor.ID,
		Destination: params.Destination,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		GroupSize:   params.GroupSize,
		Budget:      params.Budget,
		Notes:       params.Notes,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Requests.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListMine(ctx context.Context, actor identity.Actor) ([]*domainrequest.Request, error) {
	return s.Requests.ListByUser(ctx, actor.ID)
}

func (s *Service) ListAll(ctx context.Context, actor identity.Actor) ([]*domainrequest.Request, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.Requests.ListAll(ctx)
}

func (s *Service) SetStatus(ctx context.Context, actor identity.Actor, id domainrequest.ID, status domainrequest.Status) (*domainrequest.Request, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	r, err := s.Requests.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.SetStatus(status, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Requests.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
