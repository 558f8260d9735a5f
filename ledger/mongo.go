package ledger

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo implements Ledger on the doctors collection. Reservation is a single
// conditional update: the filter only matches when the doctor is available
// and the time is absent from the date's slot list, so two concurrent
// reservations for the same triple cannot both match.
type Mongo struct {
	doctors *mongo.Collection
}

// NewMongo builds a ledger over the doctors collection.
func NewMongo(doctors *mongo.Collection) *Mongo {
	return &Mongo{doctors: doctors}
}

func slotField(date string) string {
	return "slots_booked." + date
}

// Reserve appends the time to the date's slot list iff it is absent. $ne also
// matches when the date key does not exist yet, in which case $push creates
// the list.
func (m *Mongo) Reserve(ctx context.Context, docID primitive.ObjectID, date, slot string) error {
	field := slotField(date)
	filter := bson.M{
		"_id":       docID,
		"available": true,
		field:       bson.M{"$ne": slot},
	}
	res, err := m.doctors.UpdateOne(ctx, filter, bson.M{"$push": bson.M{field: slot}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// The guarded write matched nothing; a second read tells the caller why.
	var doc struct {
		Available bool `bson:"available"`
	}
	err = m.doctors.FindOne(ctx, bson.M{"_id": docID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrDoctorNotFound
	}
	if err != nil {
		return err
	}
	if !doc.Available {
		return ErrDoctorUnavailable
	}
	return ErrSlotUnavailable
}

// Release pulls the time from the date's slot list and drops the date key
// once the list is empty. Both writes match nothing when the slot was never
// booked, which keeps Release idempotent.
func (m *Mongo) Release(ctx context.Context, docID primitive.ObjectID, date, slot string) error {
	field := slotField(date)
	if _, err := m.doctors.UpdateOne(ctx, bson.M{"_id": docID}, bson.M{"$pull": bson.M{field: slot}}); err != nil {
		return err
	}
	_, err := m.doctors.UpdateOne(ctx,
		bson.M{"_id": docID, field: bson.M{"$size": 0}},
		bson.M{"$unset": bson.M{field: ""}},
	)
	return err
}

// IsBooked matches the doctor document against the slot value inside the
// date's list.
func (m *Mongo) IsBooked(ctx context.Context, docID primitive.ObjectID, date, slot string) (bool, error) {
	n, err := m.doctors.CountDocuments(ctx, bson.M{"_id": docID, slotField(date): slot})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
