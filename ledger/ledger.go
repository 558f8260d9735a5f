// Package ledger tracks which (date, time) slots are taken per doctor.
//
// The ledger lives embedded in the doctor record as a map from date key
// ("day_month_year") to the list of booked time strings. All mutation goes
// through the Ledger interface so callers never see the read-modify-write
// race: implementations must make Reserve exclusive per (doctor, date, time).
package ledger

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrSlotUnavailable means the requested time is already booked for
	// that date.
	ErrSlotUnavailable = errors.New("slot is not available")
	// ErrDoctorNotFound means the doctor id resolves to nothing.
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrDoctorUnavailable means the doctor exists but is not accepting
	// bookings.
	ErrDoctorUnavailable = errors.New("doctor not available for booking")
)

// Ledger reserves and releases booking slots for doctors.
type Ledger interface {
	// Reserve claims (date, slot) for the doctor. Exactly one of two
	// concurrent reservations for the same triple succeeds; the other gets
	// ErrSlotUnavailable.
	Reserve(ctx context.Context, docID primitive.ObjectID, date, slot string) error

	// Release frees (date, slot). Releasing a slot that was never booked is
	// a no-op, so replays and double cancellations stay harmless. An emptied
	// date key is removed entirely.
	Release(ctx context.Context, docID primitive.ObjectID, date, slot string) error

	// IsBooked reports whether (date, slot) is currently taken.
	IsBooked(ctx context.Context, docID primitive.ObjectID, date, slot string) (bool, error)
}
