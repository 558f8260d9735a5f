// Package database owns the MongoDB connection and collection handles.
package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// DB bundles the three collections the service reads and writes.
type DB struct {
	Users        *mongo.Collection
	Doctors      *mongo.Collection
	Appointments *mongo.Collection
}

// New resolves the collection handles for the named database.
func New(client *mongo.Client, name string) *DB {
	db := client.Database(name)
	return &DB{
		Users:        db.Collection("users"),
		Doctors:      db.Collection("doctors"),
		Appointments: db.Collection("appointments"),
	}
}
