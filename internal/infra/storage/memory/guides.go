package memory

import (
	"context"
	"sync"
	"time"

	"bookmytourguide/internal/domain/guide"
	"bookmytourguide/internal/domain/shared/daterange"
	"bookmytourguide/internal/domain/user"
)

// GuideRepository is an in-memory implementation used by tests and local
// runs. It keeps the Mongo repository's contracts: ReserveDates is
// all-or-nothing, reads return copies rather than live pointers, and Save
// never touches the availability set — ReserveDates and ReleaseDates are
// its only writers.
type GuideRepository struct {
	mu    sync.RWMutex
	items map[guide.ID]*guide.Guide
}

func NewGuideRepository() *GuideRepository {
	return &GuideRepository{items: make(map[guide.ID]*guide.Guide)}
}

func (r *GuideRepository) ByID(ctx context.Context, id guide.ID) (*guide.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[id]
	if !ok {
		return nil, guide.ErrNotFound
	}
	return cloneGuide(g), nil
}

func (r *GuideRepository) ByUserID(ctx context.Context, userID user.ID) (*guide.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.items {
		if g.UserID == userID {
			return cloneGuide(g), nil
		}
	}
	return nil, guide.ErrNotFound
}

func (r *GuideRepository) ListApproved(ctx context.Context) ([]*guide.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*guide.Guide, 0, len(r.items))
	for _, g := range r.items {
		if g.Approval == guide.ApprovalApproved {
			out = append(out, cloneGuide(g))
		}
	}
	return out, nil
}

// Save upserts the profile fields. An already-stored guide keeps its
// current availability set, so a stale profile snapshot cannot clobber a
// reservation made after the snapshot was loaded.
func (r *GuideRepository) Save(ctx context.Context, g *guide.Guide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneGuide(g)
	if existing, ok := r.items[g.ID]; ok {
		c.UnavailableDates = append([]time.Time(nil), existing.UnavailableDates...)
	} else {
		c.UnavailableDates = nil
	}
	r.items[g.ID] = c
	return nil
}

func (r *GuideRepository) ReserveDates(ctx context.Context, id guide.ID, days []time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok {
		return guide.ErrNotFound
	}
	reserved := make(map[time.Time]struct{}, len(g.UnavailableDates))
	for _, d := range g.UnavailableDates {
		reserved[daterange.DayKey(d)] = struct{}{}
	}
	for _, d := range days {
		if _, taken := reserved[daterange.DayKey(d)]; taken {
			return guide.ErrDatesConflict
		}
	}
	for _, d := range days {
		g.UnavailableDates = append(g.UnavailableDates, daterange.DayKey(d))
	}
	return nil
}

func (r *GuideRepository) ReleaseDates(ctx context.Context, id guide.ID, days []time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok {
		return guide.ErrNotFound
	}
	drop := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		drop[daterange.DayKey(d)] = struct{}{}
	}
	kept := g.UnavailableDates[:0]
	for _, d := range g.UnavailableDates {
		if _, gone := drop[daterange.DayKey(d)]; !gone {
			kept = append(kept, d)
		}
	}
	g.UnavailableDates = kept
	return nil
}

func cloneGuide(g *guide.Guide) *guide.Guide {
	c := *g
	c.Languages = append([]string(nil), g.Languages...)
	c.Specializations = append([]string(nil), g.Specializations...)
	c.UnavailableDates = append([]time.Time(nil), g.UnavailableDates...)
	return &c
}

var _ guide.Repository = (*GuideRepository)(nil)
