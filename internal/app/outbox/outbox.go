// Package outbox bridges domain events into the transactional outbox: the
// application layer drains an aggregate's raised events into the store in
// the same flow that persists the aggregate, and a background worker ships
// them to the broker later.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookmytourguide/internal/domain/shared/events"
)

// EventRecord is the storage-ready form of one domain event.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event struct itself as the payload. The
// event name travels both in the record and as a header so consumers can
// route without parsing the body.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	id := uuid.NewString
	if e.IDGenerator != nil {
		id = e.IDGenerator
	}
	return EventRecord{
		ID:         id(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{"event-name": ev.EventName()},
	}, nil
}

// RecordDomainEvents encodes and stores evs in order. A nil box drops the
// events silently, which keeps event publishing optional in tests.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return fmt.Errorf("outbox: store %s: %w", rec.Name, err)
		}
	}
	return nil
}
