package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainsub "bookmytourguide/internal/domain/subscription"
)

type SubscriptionRepository struct {
	col *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{col: db.Collection("subscription_plans")}
}

func (r *SubscriptionRepository) ByID(ctx context.Context, id domainsub.ID) (*domainsub.Plan, error) {
	var doc planDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainsub.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *SubscriptionRepository) List(ctx context.Context) ([]*domainsub.Plan, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainsub.Plan
	for cur.Next(ctx) {
		var doc planDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cur.Err()
}

func (r *SubscriptionRepository) Save(ctx context.Context, p *domainsub.Plan) error {
	doc := planDocument{
		ID:           string(p.ID),
		Name:         p.Name,
		Price:        p.Price,
		DurationDays: p.DurationDays,
		Features:     p.Features,
		CreatedAt:    p.CreatedAt.UnixMilli(),
		UpdatedAt:    p.UpdatedAt.UnixMilli(),
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, upsert())
	return err
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id domainsub.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainsub.ErrNotFound
	}
	return nil
}

type planDocument struct {
	ID           string   `bson:"_id"`
	Name         string   `bson:"name"`
	Price        float64  `bson:"price"`
	DurationDays int      `bson:"duration_days"`
	Features     []string `bson:"features"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func (d planDocument) toEntity() *domainsub.Plan {
	return &domainsub.Plan{
		ID:           domainsub.ID(d.ID),
		Name:         d.Name,
		Price:        d.Price,
		DurationDays: d.DurationDays,
		Features:     d.Features,
		CreatedAt:    time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMilli(d.UpdatedAt).UTC(),
	}
}
