package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains claimed rows into Kafka as CloudEvents. Each tick it keeps
// claiming until the outbox is empty or drainLimit is hit, so a burst of
// events does not wait one tick per row. Failed rows are rescheduled along
// the Backoff ladder. Published rows are purged once a day of them has
// accumulated past the retention window.
type Worker struct {
	Store       *Store
	Producer    Producer
	Logger      *slog.Logger
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

const (
	drainLimit    = 64
	sentRetention = 24 * time.Hour
	purgeEvery    = time.Hour
)

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	purge := time.NewTicker(purgeEvery)
	defer purge.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-purge.C:
			if n, err := w.Store.PurgeSent(ctx, sentRetention); err == nil && n > 0 && w.Logger != nil {
				w.Logger.Debug("outbox purged", "rows", n)
			}
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	for i := 0; i < drainLimit; i++ {
		doc, err := w.Store.Claim(ctx, w.workerID())
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		w.dispatch(ctx, doc)
	}
	return nil
}

func (w *Worker) dispatch(ctx context.Context, doc *EventDocument) {
	payload, headers, err := w.formatPayload(doc)
	if err == nil {
		err = w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers)
	}
	if err != nil {
		if w.Logger != nil {
			w.Logger.Warn("outbox publish failed", "event", doc.Name, "id", doc.ID, "attempts", doc.Attempts, "error", err)
		}
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return
	}
	if err := w.Store.MarkSent(ctx, doc.ID); err != nil && w.Logger != nil {
		w.Logger.Warn("outbox mark-sent failed", "id", doc.ID, "error", err)
	}
}

// formatPayload wraps the stored event in a CloudEvents 1.0 JSON envelope.
func (w *Worker) formatPayload(doc *EventDocument) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, err
	}
	payload, err := json.Marshal(map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            doc.Name + ".v1",
		"source":          w.source(),
		"time":            doc.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	})
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps an event name onto its aggregate's topic:
// "booking.created" publishes to "booking.events.v1".
func (w *Worker) topicFor(name string) string {
	base, _, _ := strings.Cut(name, ".")
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) nextRetry(attempts int) time.Time {
	delay := 5 * time.Second
	switch {
	case attempts < len(w.Backoff):
		delay = w.Backoff[attempts]
	case len(w.Backoff) > 0:
		delay = w.Backoff[len(w.Backoff)-1]
	}
	return time.Now().Add(delay)
}

func (w *Worker) workerID() string {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return w.ID
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://bookmytourguide"
}
