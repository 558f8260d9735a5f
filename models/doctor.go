package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doctor is a bookable practitioner. SlotsBooked is the slot ledger: for each
// date key ("day_month_year") it holds the times already taken. A time may
// appear at most once per date key.
type Doctor struct {
	ID          primitive.ObjectID  `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Email       string              `json:"email,omitempty" bson:"email"`
	Password    string              `json:"-" bson:"password"`
	Image       string              `json:"image" bson:"image"`
	Speciality  string              `json:"speciality" bson:"speciality"`
	Degree      string              `json:"degree" bson:"degree"`
	Experience  string              `json:"experience" bson:"experience"`
	About       string              `json:"about" bson:"about"`
	Fees        int64               `json:"fees" bson:"fees"`
	Address     Address             `json:"address" bson:"address"`
	Available   bool                `json:"available" bson:"available"`
	Date        time.Time           `json:"date" bson:"date"`
	SlotsBooked map[string][]string `json:"slots_booked" bson:"slots_booked"`
}

// Snapshot copies the doctor's display fields for embedding in an
// appointment. The ledger and password never travel with the copy.
func (d *Doctor) Snapshot() DoctorSnapshot {
	return DoctorSnapshot{
		ID:         d.ID,
		Name:       d.Name,
		Image:      d.Image,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Experience: d.Experience,
		About:      d.About,
		Fees:       d.Fees,
		Address:    d.Address,
	}
}
