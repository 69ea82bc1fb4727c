package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "bookmytourguide/internal/domain/booking"
	domainguide "bookmytourguide/internal/domain/guide"
	"bookmytourguide/internal/domain/shared/daterange"
	domaintour "bookmytourguide/internal/domain/tour"
	domainuser "bookmytourguide/internal/domain/user"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{}, bson.D{{Key: "created_at", Value: -1}})
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"user_id": string(userID)}, bson.D{{Key: "start_date", Value: -1}})
}

func (r *BookingRepository) ListByGuide(ctx context.Context, guideID domainguide.ID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guide_id": string(guideID)}, bson.D{{Key: "start_date", Value: -1}})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M, sort bson.D) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Save writes the aggregate with an optimistic version guard: the update
// only matches the stored version the aggregate was loaded at.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

type cancellerDocument struct {
	ID   string `bson:"id"`
	Role string `bson:"role"`
	Name string `bson:"name"`
}

type bookingDocument struct {
	ID               string             `bson:"_id"`
	TourID           string             `bson:"tour_id"`
	GuideID          string             `bson:"guide_id"`
	OriginalGuideID  string             `bson:"original_guide_id,omitempty"`
	UserID           string             `bson:"user_id"`
	StartDate        int64              `bson:"start_date"`
	EndDate          int64              `bson:"end_date"`
	NumberOfTourists int                `bson:"number_of_tourists"`
	TotalPrice       float64            `bson:"total_price"`
	AdvanceAmount    float64            `bson:"advance_amount"`
	PaymentID        string             `bson:"payment_id"`
	Status           string             `bson:"status"`
	PaymentStatus    string             `bson:"payment_status"`
	CancelledBy      *cancellerDocument `bson:"cancelled_by,omitempty"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
	Version          int64              `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:               string(b.ID),
		TourID:           string(b.TourID),
		GuideID:          string(b.GuideID),
		OriginalGuideID:  string(b.OriginalGuideID),
		UserID:           string(b.UserID),
		StartDate:        b.Range.Start.UnixMilli(),
		EndDate:          b.Range.End.UnixMilli(),
		NumberOfTourists: b.NumberOfTourists,
		TotalPrice:       b.TotalPrice,
		AdvanceAmount:    b.AdvanceAmount,
		PaymentID:        b.PaymentID,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		CreatedAt:        b.CreatedAt.UnixMilli(),
		UpdatedAt:        b.UpdatedAt.UnixMilli(),
		Version:          b.Version,
	}
	if b.CancelledBy != nil {
		doc.CancelledBy = &cancellerDocument{
			ID:   string(b.CancelledBy.ID),
			Role: string(b.CancelledBy.Role),
			Name: b.CancelledBy.Name,
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:              domainbooking.ID(d.ID),
		TourID:          domaintour.ID(d.TourID),
		GuideID:         domainguide.ID(d.GuideID),
		OriginalGuideID: domainguide.ID(d.OriginalGuideID),
		UserID:          domainuser.ID(d.UserID),
		Range: daterange.DateRange{
			Start: daterange.DayKey(time.UnixMilli(d.StartDate)),
			End:   daterange.DayKey(time.UnixMilli(d.EndDate)),
		},
		NumberOfTourists: d.NumberOfTourists,
		TotalPrice:       d.TotalPrice,
		AdvanceAmount:    d.AdvanceAmount,
		PaymentID:        d.PaymentID,
		Status:           domainbooking.Status(d.Status),
		PaymentStatus:    domainbooking.PaymentStatus(d.PaymentStatus),
		CreatedAt:        time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:        time.UnixMilli(d.UpdatedAt).UTC(),
		Version:          d.Version,
	}
	if d.CancelledBy != nil {
		b.CancelledBy = &domainbooking.CancellerInfo{
			ID:   domainuser.ID(d.CancelledBy.ID),
			Role: domainuser.Role(d.CancelledBy.Role),
			Name: d.CancelledBy.Name,
		}
	}
	return b
}

func upsert() *options.UpdateOptions {
	return options.Update().SetUpsert(true)
}
