// Package store is the MongoDB persistence layer. One Store implements the
// narrow interfaces the booking and dashboard services define, plus the
// profile CRUD the handlers use directly.
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/database"
)

// Store reads and writes the users, doctors, and appointments collections.
type Store struct {
	db *database.DB
}

// New builds a Store over the resolved collection handles.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// notFound translates the driver's miss into the domain error.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return booking.ErrNotFound
	}
	return err
}
