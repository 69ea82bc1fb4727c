package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaintestimonial "bookmytourguide/internal/domain/testimonial"
)

type TestimonialRepository struct {
	col *mongo.Collection
}

func NewTestimonialRepository(db *mongo.Database) *TestimonialRepository {
	return &TestimonialRepository{col: db.Collection("testimonials")}
}

func (r *TestimonialRepository) List(ctx context.Context, offset, limit int) (domaintestimonial.Page, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return domaintestimonial.Page{}, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return domaintestimonial.Page{}, err
	}
	defer cur.Close(ctx)
	page := domaintestimonial.Page{Total: total}
	for cur.Next(ctx) {
		var doc testimonialDocument
		if err := cur.Decode(&doc); err != nil {
			return domaintestimonial.Page{}, err
		}
		page.Items = append(page.Items, doc.toEntity())
	}
	return page, cur.Err()
}

func (r *TestimonialRepository) Save(ctx context.Context, t *domaintestimonial.Testimonial) error {
	doc := testimonialDocument{
		ID:        string(t.ID),
		Author:    t.Author,
		Location:  t.Location,
		Message:   t.Message,
		Rating:    t.Rating,
		VideoURL:  t.VideoURL,
		CreatedAt: t.CreatedAt.UnixMilli(),
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, upsert())
	return err
}

func (r *TestimonialRepository) Delete(ctx context.Context, id domaintestimonial.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaintestimonial.ErrNotFound
	}
	return nil
}

type testimonialDocument struct {
	ID        string `bson:"_id"`
	Author    string `bson:"author"`
	Location  string `bson:"location"`
	Message   string `bson:"message"`
	Rating    int    `bson:"rating"`
	VideoURL  string `bson:"video_url"`
	CreatedAt int64  `bson:"created_at"`
}

func (d testimonialDocument) toEntity() *domaintestimonial.Testimonial {
	return &domaintestimonial.Testimonial{
		ID:        domaintestimonial.ID(d.ID),
		Author:    d.Author,
		Location:  d.Location,
		Message:   d.Message,
		Rating:    d.Rating,
		VideoURL:  d.VideoURL,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
	}
}
