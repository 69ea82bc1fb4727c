package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookmytourguide/internal/app/identity"
	domainsub "bookmytourguide/internal/domain/subscription"
)

var ErrForbidden = errors.New("subscription: caller is not allowed to perform this action")

type Service struct {
	Plans domainsub.Repository
}

type PlanParams struct {
	Name         string
	Price        float64
	DurationDays int
	Features     []string
}

func (s *Service) List(ctx context.Context) ([]*domainsub.Plan, error) {
	return s.Plans.List(ctx)
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, params PlanParams) (*domainsub.Plan, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	p, err := domainsub.NewPlan(domainsub.CreateParams{
		ID:           domainsub.ID(uuid.NewString()),
		Name:         params.Name,
		Price:        params.Price,
		DurationDays: params.DurationDays,
		Features:     params.Features,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Plans.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor identity.Actor, id domainsub.ID, params PlanParams) (*domainsub.Plan, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	p, err := s.Plans.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != "" {
		p.Name = params.Name
	}
	if params.Price >= 0 {
		p.Price = params.Price
	}
	if params.DurationDays > 0 {
		p.DurationDays = params.DurationDays
	}
	if len(params.Features) > 0 {
		p.Features = append([]string(nil), params.Features...)
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.Plans.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, id domainsub.ID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.Plans.Delete(ctx, id)
}
