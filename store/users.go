package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/models"
)

// InsertUser creates the patient record and returns its id.
func (s *Store) InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := s.db.Users.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindUserByID resolves a patient by id.
func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.db.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindUserByEmail resolves a patient by email, for login and duplicate
// registration checks.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UserProfileUpdate is the mutable slice of a patient profile. Image is only
// written when non-empty, so a profile update without a new avatar keeps the
// old one.
type UserProfileUpdate struct {
	Name    string
	Phone   string
	DOB     string
	Gender  string
	Address models.Address
	Image   string
}

// UpdateUserProfile applies the profile fields to the patient record.
func (s *Store) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, upd UserProfileUpdate) error {
	set := bson.M{
		"name":    upd.Name,
		"phone":   upd.Phone,
		"dob":     upd.DOB,
		"gender":  upd.Gender,
		"address": upd.Address,
	}
	if upd.Image != "" {
		set["image"] = upd.Image
	}
	res, err := s.db.Users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// CountUsers counts registered patients.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.db.Users.CountDocuments(ctx, bson.M{})
}
