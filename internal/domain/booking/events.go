package booking

import (
	"time"

	"bookmytourguide/internal/domain/guide"
	"bookmytourguide/internal/domain/shared/daterange"
	"bookmytourguide/internal/domain/tour"
	"bookmytourguide/internal/domain/user"
)

type Created struct {
	BookingID ID
	TourID    tour.ID
	GuideID   guide.ID
	UserID    user.ID
	Range     daterange.DateRange
	Total     float64
	At        time.Time
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return string(e.BookingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	BookingID ID
	From      Status
	To        Status
	At        time.Time
}

func (e StatusChanged) EventName() string     { return "booking.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID ID
	GuideID   guide.ID
	Range     daterange.DateRange
	Refund    float64
	By        CancellerInfo
	At        time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type SubstituteAssigned struct {
	BookingID ID
	From      guide.ID
	To        guide.ID
	Range     daterange.DateRange
	At        time.Time
}

func (e SubstituteAssigned) EventName() string     { return "booking.substitute_assigned" }
func (e SubstituteAssigned) AggregateID() string   { return string(e.BookingID) }
func (e SubstituteAssigned) OccurredAt() time.Time { return e.At }

type Deleted struct {
	BookingID ID
	GuideID   guide.ID
	Range     daterange.DateRange
	At        time.Time
}

func (e Deleted) EventName() string     { return "booking.deleted" }
func (e Deleted) AggregateID() string   { return string(e.BookingID) }
func (e Deleted) OccurredAt() time.Time { return e.At }
