package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/dashboard"
	"github.com/docpoint/booking-api/models"
)

var newestFirst = options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

// InsertAppointment creates the booking record and returns its id.
func (s *Store) InsertAppointment(ctx context.Context, appt *models.Appointment) (primitive.ObjectID, error) {
	res, err := s.db.Appointments.InsertOne(ctx, appt)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindAppointmentByID resolves a booking by id.
func (s *Store) FindAppointmentByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.Appointments.FindOne(ctx, bson.M{"_id": id}).Decode(&appt); err != nil {
		return nil, notFound(err)
	}
	return &appt, nil
}

// MarkCancelled sets cancelled=true and, for admin cancellations, hides the
// record from the patient's list.
func (s *Store) MarkCancelled(ctx context.Context, id primitive.ObjectID, hideFromUser bool) error {
	set := bson.M{"cancelled": true}
	if hideFromUser {
		set["showToUser"] = false
	}
	return s.setAppointmentFields(ctx, id, set)
}

// MarkCompleted sets isCompleted=true.
func (s *Store) MarkCompleted(ctx context.Context, id primitive.ObjectID) error {
	return s.setAppointmentFields(ctx, id, bson.M{"isCompleted": true})
}

func (s *Store) setAppointmentFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := s.db.Appointments.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// DeleteAppointment removes the booking record permanently.
func (s *Store) DeleteAppointment(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Appointments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// ListByUser returns a patient's bookings, newest first. With visibleOnly it
// drops admin-hidden records.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, visibleOnly bool) ([]models.Appointment, error) {
	filter := bson.M{"userId": userID}
	if visibleOnly {
		filter["showToUser"] = true
	}
	return s.findAppointments(ctx, filter, newestFirst)
}

// ListByDoctor returns every booking against the doctor, newest first.
func (s *Store) ListByDoctor(ctx context.Context, docID primitive.ObjectID) ([]models.Appointment, error) {
	return s.findAppointments(ctx, bson.M{"docId": docID}, newestFirst)
}

// ListAll returns every booking in the system, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.findAppointments(ctx, bson.M{}, newestFirst)
}

// CountAppointments counts bookings matching the dashboard filter.
func (s *Store) CountAppointments(ctx context.Context, f dashboard.Filter) (int64, error) {
	filter := bson.M{}
	if f.Cancelled != nil {
		filter["cancelled"] = *f.Cancelled
	}
	if f.IsCompleted != nil {
		filter["isCompleted"] = *f.IsCompleted
	}
	return s.db.Appointments.CountDocuments(ctx, filter)
}

// RecentAppointments returns the latest bookings, newest first.
func (s *Store) RecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit))
	return s.findAppointments(ctx, bson.M{}, opts)
}

// AppointmentsByDoctor returns the doctor's bookings newest first, for the
// doctor dashboard.
func (s *Store) AppointmentsByDoctor(ctx context.Context, docID primitive.ObjectID) ([]models.Appointment, error) {
	return s.ListByDoctor(ctx, docID)
}

func (s *Store) findAppointments(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Appointment, error) {
	cur, err := s.db.Appointments.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var appts []models.Appointment
	if err := cur.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}
