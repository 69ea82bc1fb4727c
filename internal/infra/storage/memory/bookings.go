package memory

import (
	"context"
	"sort"
	"sync"

	"bookmytourguide/internal/domain/booking"
	"bookmytourguide/internal/domain/guide"
	"bookmytourguide/internal/domain/shared/events"
	"bookmytourguide/internal/domain/user"
)

// BookingRepository keeps bookings in memory with the same optimistic
// version check the Mongo repository applies on Save. It stores and returns
// copies, never the caller's pointer: a mutation on a loaded aggregate is
// only visible after a successful Save, exactly like real persistence.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[booking.ID]*booking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[booking.ID]*booking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id booking.ID) (*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*booking.Booking, 0, len(r.items))
	for _, b := range r.items {
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID user.ID) ([]*booking.Booking, error) {
	return r.filter(func(b *booking.Booking) bool { return b.UserID == userID })
}

func (r *BookingRepository) ListByGuide(ctx context.Context, guideID guide.ID) ([]*booking.Booking, error) {
	return r.filter(func(b *booking.Booking) bool { return b.GuideID == guideID })
}

func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[b.ID]; ok && existing.Version != b.Version {
		return booking.ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id booking.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return booking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) filter(keep func(*booking.Booking) bool) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.After(out[j].Range.Start) })
	return out, nil
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	c := *b
	c.EventRecorder = events.EventRecorder{}
	if b.CancelledBy != nil {
		cb := *b.CancelledBy
		c.CancelledBy = &cb
	}
	return &c
}

var _ booking.Repository = (*BookingRepository)(nil)
