package memory

import (
	"context"
	"sort"
	"sync"

	"bookmytourguide/internal/domain/subscription"
	"bookmytourguide/internal/domain/testimonial"
	"bookmytourguide/internal/domain/tour"
	"bookmytourguide/internal/domain/tourrequest"
	"bookmytourguide/internal/domain/user"
)

// The catalog repositories store and return copies, never the caller's
// pointer, so a mutated aggregate is only visible after a successful Save.
type TourRepository struct {
	mu    sync.RWMutex
	items map[tour.ID]*tour.Tour
}

func NewTourRepository() *TourRepository {
	return &TourRepository{items: make(map[tour.ID]*tour.Tour)}
}

func (r *TourRepository) ByID(ctx context.Context, id tour.ID) (*tour.Tour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return nil, tour.ErrNotFound
	}
	return cloneTour(t), nil
}

func (r *TourRepository) List(ctx context.Context) ([]*tour.Tour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*tour.Tour, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, cloneTour(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TourRepository) Save(ctx context.Context, t *tour.Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.ID] = cloneTour(t)
	return nil
}

func cloneTour(t *tour.Tour) *tour.Tour {
	c := *t
	c.Locations = append([]string(nil), t.Locations...)
	c.Images = append([]string(nil), t.Images...)
	return &c
}

func (r *TourRepository) Delete(ctx context.Context, id tour.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return tour.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

var _ tour.Repository = (*TourRepository)(nil)

type TestimonialRepository struct {
	mu    sync.RWMutex
	items map[testimonial.ID]*testimonial.Testimonial
}

func NewTestimonialRepository() *TestimonialRepository {
	return &TestimonialRepository{items: make(map[testimonial.ID]*testimonial.Testimonial)}
}

func (r *TestimonialRepository) List(ctx context.Context, offset, limit int) (testimonial.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*testimonial.Testimonial, 0, len(r.items))
	for _, t := range r.items {
		c := *t
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	page := testimonial.Page{Total: int64(len(all))}
	if offset >= len(all) {
		return page, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	page.Items = all[offset:end]
	return page, nil
}

func (r *TestimonialRepository) Save(ctx context.Context, t *testimonial.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *t
	r.items[t.ID] = &c
	return nil
}

func (r *TestimonialRepository) Delete(ctx context.Context, id testimonial.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return testimonial.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

var _ testimonial.Repository = (*TestimonialRepository)(nil)

type TourRequestRepository struct {
	mu    sync.RWMutex
	items map[tourrequest.ID]*tourrequest.Request
}

func NewTourRequestRepository() *TourRequestRepository {
	return &TourRequestRepository{items: make(map[tourrequest.ID]*tourrequest.Request)}
}

func (r *TourRequestRepository) ByID(ctx context.Context, id tourrequest.ID) (*tourrequest.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.items[id]
	if !ok {
		return nil, tourrequest.ErrNotFound
	}
	c := *req
	return &c, nil
}

func (r *TourRequestRepository) ListAll(ctx context.Context) ([]*tourrequest.Request, error) {
	return r.filter(func(*tourrequest.Request) bool { return true })
}

func (r *TourRequestRepository) ListByUser(ctx context.Context, userID user.ID) ([]*tourrequest.Request, error) {
	return r.filter(func(req *tourrequest.Request) bool { return req.UserID == userID })
}

func (r *TourRequestRepository) Save(ctx context.Context, req *tourrequest.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *req
	r.items[req.ID] = &c
	return nil
}

func (r *TourRequestRepository) filter(keep func(*tourrequest.Request) bool) ([]*tourrequest.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*tourrequest.Request
	for _, req := range r.items {
		if keep(req) {
			c := *req
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var _ tourrequest.Repository = (*TourRequestRepository)(nil)

type PlanRepository struct {
	mu    sync.RWMutex
	items map[subscription.ID]*subscription.Plan
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{items: make(map[subscription.ID]*subscription.Plan)}
}

func (r *PlanRepository) ByID(ctx context.Context, id subscription.ID) (*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	return clonePlan(p), nil
}

func (r *PlanRepository) List(ctx context.Context) ([]*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*subscription.Plan, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, clonePlan(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r *PlanRepository) Save(ctx context.Context, p *subscription.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = clonePlan(p)
	return nil
}

func clonePlan(p *subscription.Plan) *subscription.Plan {
	c := *p
	c.Features = append([]string(nil), p.Features...)
	return &c
}

func (r *PlanRepository) Delete(ctx context.Context, id subscription.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return subscription.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

var _ subscription.Repository = (*PlanRepository)(nil)
