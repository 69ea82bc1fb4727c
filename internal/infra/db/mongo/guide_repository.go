package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainguide "bookmytourguide/internal/domain/guide"
	"bookmytourguide/internal/domain/shared/daterange"
	domainuser "bookmytourguide/internal/domain/user"
)

type GuideRepository struct {
	col *mongo.Collection
}

func NewGuideRepository(db *mongo.Database) *GuideRepository {
	return &GuideRepository{col: db.Collection("guides")}
}

func (r *GuideRepository) ByID(ctx context.Context, id domainguide.ID) (*domainguide.Guide, error) {
	var doc guideDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainguide.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *GuideRepository) ByUserID(ctx context.Context, userID domainuser.ID) (*domainguide.Guide, error) {
	var doc guideDocument
	if err := r.col.FindOne(ctx, bson.M{"user_id": string(userID)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainguide.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *GuideRepository) ListApproved(ctx context.Context) ([]*domainguide.Guide, error) {
	cur, err := r.col.Find(ctx, bson.M{"approval": string(domainguide.ApprovalApproved)})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainguide.Guide
	for cur.Next(ctx) {
		var doc guideDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cur.Err()
}

// Save writes the profile fields only. The availability set is deliberately
// absent from the update: ReserveDates and ReleaseDates are its sole
// writers, so a profile save racing a reservation cannot overwrite booked
// days with the stale snapshot it was loaded from.
func (r *GuideRepository) Save(ctx context.Context, g *domainguide.Guide) error {
	update := bson.M{
		"$set": bson.M{
			"user_id":          string(g.UserID),
			"name":             g.Name,
			"mobile":           g.Mobile,
			"dob":              g.DOB,
			"state":            g.State,
			"country":          g.Country,
			"languages":        g.Languages,
			"experience":       g.Experience,
			"specializations":  g.Specializations,
			"description":      g.Description,
			"photo_url":        g.PhotoURL,
			"license_url":      g.LicenseURL,
			"profile_complete": g.ProfileComplete,
			"approval":         string(g.Approval),
			"updated_at":       g.UpdatedAt.UnixMilli(),
		},
		"$setOnInsert": bson.M{
			"unavailable_dates": []int64{},
			"created_at":        g.CreatedAt.UnixMilli(),
		},
	}
	_, err := r.col.UpdateByID(ctx, string(g.ID), update, upsert())
	return err
}

// ReserveDates is the availability ledger's double-booking guard. The
// check and the write are one conditional update: the filter only matches
// when none of the requested day keys is present, so a concurrent
// reservation for an overlapping range makes exactly one of the two writes
// match. Zero matched documents with an existing guide means conflict.
func (r *GuideRepository) ReserveDates(ctx context.Context, id domainguide.ID, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}
	millis := dayMillis(days)
	filter := bson.M{
		"_id":               string(id),
		"unavailable_dates": bson.M{"$not": bson.M{"$elemMatch": bson.M{"$in": millis}}},
	}
	update := bson.M{
		"$addToSet": bson.M{"unavailable_dates": bson.M{"$each": millis}},
		"$set":      bson.M{"updated_at": time.Now().UTC().UnixMilli()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing guide from a date conflict.
		if count, err := r.col.CountDocuments(ctx, bson.M{"_id": string(id)}); err == nil && count == 0 {
			return domainguide.ErrNotFound
		}
		return domainguide.ErrDatesConflict
	}
	return nil
}

// ReleaseDates removes the day keys from the guide's set; days not present
// are ignored so the release exactly undoes the matching reservation.
func (r *GuideRepository) ReleaseDates(ctx context.Context, id domainguide.ID, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}
	update := bson.M{
		"$pull": bson.M{"unavailable_dates": bson.M{"$in": dayMillis(days)}},
		"$set":  bson.M{"updated_at": time.Now().UTC().UnixMilli()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainguide.ErrNotFound
	}
	return nil
}

type guideDocument struct {
	ID               string   `bson:"_id"`
	UserID           string   `bson:"user_id"`
	Name             string   `bson:"name"`
	Mobile           string   `bson:"mobile"`
	DOB              string   `bson:"dob"`
	State            string   `bson:"state"`
	Country          string   `bson:"country"`
	Languages        []string `bson:"languages"`
	Experience       string   `bson:"experience"`
	Specializations  []string `bson:"specializations"`
	Description      string   `bson:"description"`
	PhotoURL         string   `bson:"photo_url"`
	LicenseURL       string   `bson:"license_url"`
	ProfileComplete  bool     `bson:"profile_complete"`
	Approval         string   `bson:"approval"`
	UnavailableDates []int64  `bson:"unavailable_dates"`
	CreatedAt        int64    `bson:"created_at"`
	UpdatedAt        int64    `bson:"updated_at"`
}

func (d guideDocument) toEntity() *domainguide.Guide {
	dates := make([]time.Time, 0, len(d.UnavailableDates))
	for _, ms := range d.UnavailableDates {
		dates = append(dates, daterange.DayKey(time.UnixMilli(ms)))
	}
	return &domainguide.Guide{
		ID:               domainguide.ID(d.ID),
		UserID:           domainuser.ID(d.UserID),
		Name:             d.Name,
		Mobile:           d.Mobile,
		DOB:              d.DOB,
		State:            d.State,
		Country:          d.Country,
		Languages:        d.Languages,
		Experience:       d.Experience,
		Specializations:  d.Specializations,
		Description:      d.Description,
		PhotoURL:         d.PhotoURL,
		LicenseURL:       d.LicenseURL,
		ProfileComplete:  d.ProfileComplete,
		Approval:         domainguide.ApprovalStatus(d.Approval),
		UnavailableDates: dates,
		CreatedAt:        time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:        time.UnixMilli(d.UpdatedAt).UTC(),
	}
}

// dayMillis stores day keys as UTC-midnight epoch millis so set membership
// in Mongo is an exact integer comparison.
func dayMillis(days []time.Time) []int64 {
	out := make([]int64, 0, len(days))
	for _, d := range days {
		out = append(out, daterange.DayKey(d).UnixMilli())
	}
	return out
}
