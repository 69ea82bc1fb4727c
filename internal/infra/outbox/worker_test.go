package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "booking.events.v1", w.topicFor("booking.created"))
	assert.Equal(t, "booking.events.v1", w.topicFor("booking.substitute_assigned"))
	assert.Equal(t, "otp.events.v1", w.topicFor("otp"))

	w.TopicPrefix = "dev."
	assert.Equal(t, "dev.booking.events.v1", w.topicFor("booking.created"))
}

func TestFormatPayloadWrapsCloudEvent(t *testing.T) {
	w := &Worker{}
	doc := &EventDocument{
		ID:         "rec-1",
		Name:       "booking.created",
		Payload:    []byte(`{"BookingID":"b-1"}`),
		OccurredAt: time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  "b-1",
	}

	payload, headers, err := w.formatPayload(doc)
	require.NoError(t, err)
	assert.Equal(t, "application/cloudevents+json", headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "booking.created.v1", evt["type"])
	assert.Equal(t, "app://bookmytourguide", evt["source"])
	data, ok := evt["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "b-1", data["BookingID"])
}

func TestFormatPayloadRejectsMalformedJSON(t *testing.T) {
	w := &Worker{}
	_, _, err := w.formatPayload(&EventDocument{Payload: []byte("not json")})
	assert.Error(t, err)
}

func TestNextRetryFollowsBackoffLadder(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}}
	now := time.Now()

	assert.WithinDuration(t, now.Add(time.Second), w.nextRetry(0), time.Second)
	assert.WithinDuration(t, now.Add(5*time.Second), w.nextRetry(1), time.Second)
	// attempts past the ladder reuse its last rung
	assert.WithinDuration(t, now.Add(30*time.Second), w.nextRetry(7), time.Second)
}
