package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/models"
)

// InsertDoctor creates the doctor record and returns its id.
func (s *Store) InsertDoctor(ctx context.Context, doctor *models.Doctor) (primitive.ObjectID, error) {
	res, err := s.db.Doctors.InsertOne(ctx, doctor)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindDoctorByID resolves a doctor by id.
func (s *Store) FindDoctorByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Doctors.FindOne(ctx, bson.M{"_id": id}).Decode(&doctor); err != nil {
		return nil, notFound(err)
	}
	return &doctor, nil
}

// FindDoctorByEmail resolves a doctor by email, for login and duplicate
// checks.
func (s *Store) FindDoctorByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Doctors.FindOne(ctx, bson.M{"email": email}).Decode(&doctor); err != nil {
		return nil, notFound(err)
	}
	return &doctor, nil
}

// ListDoctors returns every doctor, newest first.
func (s *Store) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.db.Doctors.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var doctors []models.Doctor
	if err := cur.All(ctx, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// ToggleDoctorAvailability flips the availability flag and returns the new
// value.
func (s *Store) ToggleDoctorAvailability(ctx context.Context, id primitive.ObjectID) (bool, error) {
	doctor, err := s.FindDoctorByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !doctor.Available
	res, err := s.db.Doctors.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"available": next}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, booking.ErrNotFound
	}
	return next, nil
}

// DoctorProfileUpdate is the mutable slice of a doctor profile. Image is
// only written when non-empty.
type DoctorProfileUpdate struct {
	Name       string
	Speciality string
	Degree     string
	Experience string
	About      string
	Fees       int64
	Address    models.Address
	Image      string
}

// UpdateDoctorProfile applies the profile fields to the doctor record. The
// slot ledger and availability flag are untouched.
func (s *Store) UpdateDoctorProfile(ctx context.Context, id primitive.ObjectID, upd DoctorProfileUpdate) error {
	set := bson.M{
		"name":       upd.Name,
		"speciality": upd.Speciality,
		"degree":     upd.Degree,
		"experience": upd.Experience,
		"about":      upd.About,
		"fees":       upd.Fees,
		"address":    upd.Address,
	}
	if upd.Image != "" {
		set["image"] = upd.Image
	}
	res, err := s.db.Doctors.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// CountDoctors counts registered doctors.
func (s *Store) CountDoctors(ctx context.Context) (int64, error) {
	return s.db.Doctors.CountDocuments(ctx, bson.M{})
}
