package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "bookmytourguide/internal/app/outbox"
)

// Row lifecycle: pending -> claimed -> published, with failed rows going back
// through claimed once their next_attempt_at passes. Claims are leases: a row
// stuck in claimed longer than claimLease is considered abandoned by a dead
// worker and becomes claimable again.
const (
	statePending   = "pending"
	stateClaimed   = "claimed"
	statePublished = "published"
	stateFailed    = "failed"

	claimLease = 2 * time.Minute
)

type EventDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers"`
	State       string            `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by,omitempty"`
	ClaimedAt   time.Time         `bson:"claimed_at,omitempty"`
	SentAt      time.Time         `bson:"sent_at,omitempty"`
	LastError   string            `bson:"last_error,omitempty"`
	CreatedAt   time.Time         `bson:"created_at"`
}

type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	col := db.Collection("outbox_events")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}},
	})
	return &Store{col: col}
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := time.Now().UTC()
	_, err := s.col.InsertOne(ctx, EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       statePending,
		NextAttempt: now,
		CreatedAt:   now,
	})
	return err
}

// Claim leases the oldest deliverable row to workerID. A nil row with a nil
// error means the outbox is currently drained.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := time.Now().UTC()
	deliverable := bson.A{
		bson.M{"state": bson.M{"$in": bson.A{statePending, stateFailed}}, "next_attempt_at": bson.M{"$lte": now}},
		bson.M{"state": stateClaimed, "claimed_at": bson.M{"$lte": now.Add(-claimLease)}},
	}
	var doc EventDocument
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"$or": deliverable},
		bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": workerID, "claimed_at": now}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"state": statePublished, "sent_at": time.Now().UTC()},
	})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"state": stateFailed, "next_attempt_at": next, "last_error": errMsg},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

// PurgeSent removes published rows older than the retention window so the
// collection does not grow without bound.
func (s *Store) PurgeSent(ctx context.Context, retention time.Duration) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"state":   statePublished,
		"sent_at": bson.M{"$lt": time.Now().UTC().Add(-retention)},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
