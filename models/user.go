package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Defaults applied to a freshly registered patient, before they fill in
// their profile.
const (
	DefaultAvatarURL = "https://res.cloudinary.com/demo/image/upload/avatar_placeholder.png"
	DefaultGender    = "Not Selected"
	DefaultPhone     = "000000000"
	DefaultDOB       = "Not Selected"
)

// Address is the two-line postal address shared by users and doctors.
type Address struct {
	Line1 string `json:"line1" bson:"line1"`
	Line2 string `json:"line2" bson:"line2"`
}

// User is a registered patient.
type User struct {
	ID       primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	Image    string             `json:"image" bson:"image"`
	Phone    string             `json:"phone" bson:"phone"`
	DOB      string             `json:"dob" bson:"dob"`
	Gender   string             `json:"gender" bson:"gender"`
	Address  Address            `json:"address" bson:"address"`
}

// NewUser builds a patient record with profile placeholders; password must
// already be hashed.
func NewUser(name, email, hashedPassword string) *User {
	return &User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Image:    DefaultAvatarURL,
		Phone:    DefaultPhone,
		DOB:      DefaultDOB,
		Gender:   DefaultGender,
	}
}

// Age computes a whole-year age from a date of birth in "2006-01-02" form,
// adjusting for a birthday that has not yet occurred this year. Returns 0
// when dob is unset or unparseable.
func Age(dob string, now time.Time) int {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
