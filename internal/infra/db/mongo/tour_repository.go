package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaintour "bookmytourguide/internal/domain/tour"
)

type TourRepository struct {
	col *mongo.Collection
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{col: db.Collection("tours")}
}

func (r *TourRepository) ByID(ctx context.Context, id domaintour.ID) (*domaintour.Tour, error) {
	var doc tourDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintour.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *TourRepository) List(ctx context.Context) ([]*domaintour.Tour, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domaintour.Tour
	for cur.Next(ctx) {
		var doc tourDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cur.Err()
}

func (r *TourRepository) Save(ctx context.Context, t *domaintour.Tour) error {
	doc := newTourDocument(t)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, upsert())
	return err
}

func (r *TourRepository) Delete(ctx context.Context, id domaintour.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaintour.ErrNotFound
	}
	return nil
}

type tourDocument struct {
	ID          string   `bson:"_id"`
	Title       string   `bson:"title"`
	Description string   `bson:"description"`
	Locations   []string `bson:"locations"`
	Images      []string `bson:"images"`
	Price       float64  `bson:"price"`
	Days        int      `bson:"days"`
	Nights      int      `bson:"nights"`
	CreatedAt   int64    `bson:"created_at"`
	UpdatedAt   int64    `bson:"updated_at"`
}

func newTourDocument(t *domaintour.Tour) tourDocument {
	return tourDocument{
		ID:          string(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Locations:   t.Locations,
		Images:      t.Images,
		Price:       t.Price,
		Days:        t.Days,
		Nights:      t.Nights,
		CreatedAt:   t.CreatedAt.UnixMilli(),
		UpdatedAt:   t.UpdatedAt.UnixMilli(),
	}
}

func (d tourDocument) toEntity() *domaintour.Tour {
	return &domaintour.Tour{
		ID:          domaintour.ID(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Locations:   d.Locations,
		Images:      d.Images,
		Price:       d.Price,
		Days:        d.Days,
		Nights:      d.Nights,
		CreatedAt:   time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMilli(d.UpdatedAt).UTC(),
	}
}
