// Package booking implements the appointment lifecycle: booking a slot,
// cancelling it, marking it completed, and deleting terminal records, while
// keeping the doctor's slot ledger in agreement with the appointment
// collection.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/ledger"
	"github.com/docpoint/booking-api/models"
)

// UserStore resolves patients. Implementations return ErrNotFound for a
// missing id.
type UserStore interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// DoctorStore resolves doctors. Implementations return ErrNotFound for a
// missing id.
type DoctorStore interface {
	FindDoctorByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
}

// AppointmentStore persists appointment records. Implementations return
// ErrNotFound for a missing id.
type AppointmentStore interface {
	InsertAppointment(ctx context.Context, appt *models.Appointment) (primitive.ObjectID, error)
	FindAppointmentByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	// MarkCancelled sets cancelled=true; with hideFromUser it also sets
	// showToUser=false.
	MarkCancelled(ctx context.Context, id primitive.ObjectID, hideFromUser bool) error
	MarkCompleted(ctx context.Context, id primitive.ObjectID) error
	DeleteAppointment(ctx context.Context, id primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, visibleOnly bool) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, docID primitive.ObjectID) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
}

// Actor is the identity the access gate resolved for the request.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// Service is the appointment lifecycle manager. It trusts the actor identity
// it is handed; authentication happens before it is called.
type Service struct {
	users        UserStore
	doctors      DoctorStore
	appointments AppointmentStore
	ledger       ledger.Ledger
	log          zerolog.Logger
	now          func() time.Time
}

// NewService wires the lifecycle manager over its stores and the slot ledger.
func NewService(users UserStore, doctors DoctorStore, appointments AppointmentStore, led ledger.Ledger, log zerolog.Logger) *Service {
	return &Service{
		users:        users,
		doctors:      doctors,
		appointments: appointments,
		ledger:       led,
		log:          log,
		now:          time.Now,
	}
}

// Book reserves the slot in the doctor's ledger and creates the appointment
// record with denormalized user and doctor snapshots. The reservation and the
// record form one unit of work: if the insert fails the reservation is rolled
// back, and a failed rollback is logged as a ledger inconsistency.
func (s *Service) Book(ctx context.Context, userID, docID primitive.ObjectID, slotDate, slotTime string) (*models.Appointment, error) {
	if slotDate == "" || slotTime == "" {
		return nil, fmt.Errorf("%w: please select a time slot", ErrValidation)
	}

	doctor, err := s.doctors.FindDoctorByID(ctx, docID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ledger.ErrDoctorNotFound
		}
		return nil, err
	}
	if !doctor.Available {
		return nil, ledger.ErrDoctorUnavailable
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The ledger write is the exclusivity gate: of two concurrent bookings
	// for the same triple, exactly one reservation lands.
	if err := s.ledger.Reserve(ctx, docID, slotDate, slotTime); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		UserID:     userID,
		DocID:      docID,
		SlotDate:   slotDate,
		SlotTime:   slotTime,
		UserData:   user.Snapshot(),
		DocData:    doctor.Snapshot(),
		Amount:     doctor.Fees,
		Date:       s.now(),
		ShowToUser: true,
	}
	id, err := s.appointments.InsertAppointment(ctx, appt)
	if err != nil {
		if relErr := s.ledger.Release(ctx, docID, slotDate, slotTime); relErr != nil {
			s.log.Error().
				Err(relErr).
				Str("docId", docID.Hex()).
				Str("slotDate", slotDate).
				Str("slotTime", slotTime).
				Msg("ledger inconsistency: reserved slot has no appointment and release failed")
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	appt.ID = id
	return appt, nil
}

// Cancel marks the appointment cancelled and releases its slot. Patients and
// doctors may only cancel their own bookings; an admin cancellation
// additionally hides the record from the patient's list. Cancelling an
// already-cancelled appointment is a no-op success.
func (s *Service) Cancel(ctx context.Context, apptID primitive.ObjectID, actor Actor) error {
	appt, err := s.appointments.FindAppointmentByID(ctx, apptID)
	if err != nil {
		return err
	}
	switch actor.Role {
	case auth.RolePatient:
		if appt.UserID != actor.ID {
			return ErrNotFound
		}
	case auth.RoleDoctor:
		if appt.DocID != actor.ID {
			return ErrNotFound
		}
	}
	if appt.Cancelled {
		return nil
	}

	hide := actor.Role == auth.RoleAdmin
	if err := s.appointments.MarkCancelled(ctx, apptID, hide); err != nil {
		return err
	}
	if err := s.ledger.Release(ctx, appt.DocID, appt.SlotDate, appt.SlotTime); err != nil {
		s.log.Error().
			Err(err).
			Str("appointmentId", apptID.Hex()).
			Str("docId", appt.DocID.Hex()).
			Msg("ledger inconsistency: appointment cancelled but slot release failed")
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

// Complete marks the appointment done. Only the owning doctor may complete
// it, and only while it is neither cancelled nor already completed.
func (s *Service) Complete(ctx context.Context, apptID, doctorID primitive.ObjectID) error {
	appt, err := s.appointments.FindAppointmentByID(ctx, apptID)
	if err != nil {
		return err
	}
	if appt.DocID != doctorID || appt.Cancelled || appt.IsCompleted {
		return ErrInvalidState
	}
	return s.appointments.MarkCompleted(ctx, apptID)
}

// Delete removes a terminal (cancelled or completed) appointment for good,
// releasing any slot the record still holds. Deleting an active booking is
// refused.
func (s *Service) Delete(ctx context.Context, apptID primitive.ObjectID, actor Actor) error {
	appt, err := s.appointments.FindAppointmentByID(ctx, apptID)
	if err != nil {
		return err
	}
	if actor.Role == auth.RoleDoctor && appt.DocID != actor.ID {
		return ErrNotFound
	}
	if !appt.Terminal() {
		return ErrInvalidState
	}
	if err := s.appointments.DeleteAppointment(ctx, apptID); err != nil {
		return err
	}
	// A completed booking still owns its ledger entry; cancelled ones
	// released it already. Release is idempotent either way.
	if err := s.ledger.Release(ctx, appt.DocID, appt.SlotDate, appt.SlotTime); err != nil {
		s.log.Error().
			Err(err).
			Str("appointmentId", apptID.Hex()).
			Str("docId", appt.DocID.Hex()).
			Msg("ledger inconsistency: appointment deleted but slot release failed")
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

// ListForUser returns the patient's bookings, newest first, excluding
// admin-hidden records, enriched with derived status and age.
func (s *Service) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error) {
	appts, err := s.appointments.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	s.enrich(appts)
	return appts, nil
}

// ListForDoctor returns every booking against the doctor, enriched.
func (s *Service) ListForDoctor(ctx context.Context, docID primitive.ObjectID) ([]models.Appointment, error) {
	appts, err := s.appointments.ListByDoctor(ctx, docID)
	if err != nil {
		return nil, err
	}
	s.enrich(appts)
	return appts, nil
}

// ListAll returns every booking in the system for the admin panel, enriched.
func (s *Service) ListAll(ctx context.Context) ([]models.Appointment, error) {
	appts, err := s.appointments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.enrich(appts)
	return appts, nil
}

func (s *Service) enrich(appts []models.Appointment) {
	now := s.now()
	for i := range appts {
		appts[i].Enrich(now)
	}
}
