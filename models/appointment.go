package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment statuses derived at read time. Nothing persists these.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// UserSnapshot is the patient data frozen into an appointment at booking
// time. It is a value copy, never re-synced with the live User record.
type UserSnapshot struct {
	ID     primitive.ObjectID `json:"_id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	Image  string             `json:"image" bson:"image"`
	Phone  string             `json:"phone" bson:"phone"`
	DOB    string             `json:"dob" bson:"dob"`
	Gender string             `json:"gender" bson:"gender"`
	Age    int                `json:"age,omitempty" bson:"-"`
}

// DoctorSnapshot is the doctor data frozen into an appointment at booking
// time, minus credentials and the slot ledger.
type DoctorSnapshot struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Image      string             `json:"image" bson:"image"`
	Speciality string             `json:"speciality" bson:"speciality"`
	Degree     string             `json:"degree" bson:"degree"`
	Experience string             `json:"experience" bson:"experience"`
	About      string             `json:"about" bson:"about"`
	Fees       int64              `json:"fees" bson:"fees"`
	Address    Address            `json:"address" bson:"address"`
}

// Snapshot copies the user's display fields for embedding in an appointment.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:     u.ID,
		Name:   u.Name,
		Image:  u.Image,
		Phone:  u.Phone,
		DOB:    u.DOB,
		Gender: u.Gender,
	}
}

// Appointment is one booking. UserData and DocData are denormalized
// snapshots taken when the booking was made. ShowToUser hides
// admin-cancelled bookings from the patient list while keeping the record
// for the admin panel.
type Appointment struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	DocID       primitive.ObjectID `json:"docId" bson:"docId"`
	SlotDate    string             `json:"slotDate" bson:"slotDate"`
	SlotTime    string             `json:"slotTime" bson:"slotTime"`
	UserData    UserSnapshot       `json:"userData" bson:"userData"`
	DocData     DoctorSnapshot     `json:"docData" bson:"docData"`
	Amount      int64              `json:"amount" bson:"amount"`
	Date        time.Time          `json:"date" bson:"date"`
	Cancelled   bool               `json:"cancelled" bson:"cancelled"`
	Payment     bool               `json:"payment" bson:"payment"`
	IsCompleted bool               `json:"isCompleted" bson:"isCompleted"`
	ShowToUser  bool               `json:"showToUser" bson:"showToUser"`
	Status      string             `json:"status,omitempty" bson:"-"`
}

// DeriveStatus projects the stored flags onto a display status. Cancellation
// wins over completion, completion over payment.
func (a *Appointment) DeriveStatus() string {
	switch {
	case a.Cancelled:
		return StatusCancelled
	case a.IsCompleted:
		return StatusCompleted
	case a.Payment:
		return StatusConfirmed
	default:
		return StatusPending
	}
}

// Terminal reports whether the appointment may be deleted: only cancelled or
// completed bookings are, so an active booking cannot be discarded silently.
func (a *Appointment) Terminal() bool {
	return a.Cancelled || a.IsCompleted
}

// Enrich fills the derived read-side fields (status, patient age) ahead of
// serialization.
func (a *Appointment) Enrich(now time.Time) {
	a.Status = a.DeriveStatus()
	a.UserData.Age = Age(a.UserData.DOB, now)
}
