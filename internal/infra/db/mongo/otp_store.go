package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainotp "bookmytourguide/internal/domain/otp"
)

type OTPStore struct {
	col *mongo.Collection
}

func NewOTPStore(db *mongo.Database) *OTPStore {
	col := db.Collection("otps")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return &OTPStore{col: col}
}

func (s *OTPStore) Save(ctx context.Context, code *domainotp.Code) error {
	doc := otpDocument{
		Email:     code.Email,
		Value:     code.Value,
		ExpiresAt: code.ExpiresAt,
		CreatedAt: code.CreatedAt,
	}
	_, err := s.col.InsertOne(ctx, doc)
	return err
}

func (s *OTPStore) Latest(ctx context.Context, email string) (*domainotp.Code, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc otpDocument
	if err := s.col.FindOne(ctx, bson.M{"email": email}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainotp.ErrNotFound
		}
		return nil, err
	}
	return &domainotp.Code{
		Email:     doc.Email,
		Value:     doc.Value,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *OTPStore) DeleteForEmail(ctx context.Context, email string) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"email": email})
	return err
}

type otpDocument struct {
	Email     string    `bson:"email"`
	Value     string    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
