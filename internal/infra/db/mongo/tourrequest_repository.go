package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrequest "bookmytourguide/internal/domain/tourrequest"
	domainuser "bookmytourguide/internal/domain/user"
)

type TourRequestRepository struct {
	col *mongo.Collection
}

func NewTourRequestRepository(db *mongo.Database) *TourRequestRepository {
	return &TourRequestRepository{col: db.Collection("tour_requests")}
}

func (r *TourRequestRepository) ByID(ctx context.Context, id domainrequest.ID) (*domainrequest.Request, error) {
	var doc tourRequestDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrequest.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *TourRequestRepository) ListAll(ctx context.Context) ([]*domainrequest.Request, error) {
	return r.list(ctx, bson.M{})
}

func (r *TourRequestRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainrequest.Request, error) {
	return r.list(ctx, bson.M{"user_id": string(userID)})
}

func (r *TourRequestRepository) list(ctx context.Context, filter bson.M) ([]*domainrequest.Request, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainrequest.Request
	for cur.Next(ctx) {
		var doc tourRequestDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cur.Err()
}

func (r *TourRequestRepository) Save(ctx context.Context, req *domainrequest.Request) error {
	doc := tourRequestDocument{
		ID:          string(req.ID),
		UserID:      string(req.UserID),
		Destination: req.Destination,
		StartDate:   req.StartDate.UnixMilli(),
		EndDate:     req.EndDate.UnixMilli(),
		GroupSize:   req.GroupSize,
		Budget:      req.Budget,
		Notes:       req.Notes,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt.UnixMilli(),
		UpdatedAt:   req.UpdatedAt.UnixMilli(),
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, upsert())
	return err
}

type tourRequestDocument struct {
	ID          string  `bson:"_id"`
	UserID      string  `bson:"user_id"`
	Destination string  `bson:"destination"`
	StartDate   int64   `bson:"start_date"`
	EndDate     int64   `bson:"end_date"`
	GroupSize   int     `bson:"group_size"`
	Budget      float64 `bson:"budget"`
	Notes       string  `bson:"notes"`
	Status      string  `bson:"status"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
}

func (d tourRequestDocument) toEntity() *domainrequest.Request {
	return &domainrequest.Request{
		ID:          domainrequest.ID(d.ID),
		UserID:      domainuser.ID(d.UserID),
		Destination: d.Destination,
		StartDate:   time.UnixMilli(d.StartDate).UTC(),
		EndDate:     time.UnixMilli(d.EndDate).UTC(),
		GroupSize:   d.GroupSize,
		Budget:      d.Budget,
		Notes:       d.Notes,
		Status:      domainrequest.Status(d.Status),
		CreatedAt:   time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMilli(d.UpdatedAt).UTC(),
	}
}
