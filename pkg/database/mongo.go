// Package database owns the MongoDB connection and the index set the
// application relies on. Connect is called once at startup; the returned
// handle is injected into the repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the repositories.
const (
	UsersCollection      = "users"
	FoodsCollection      = "foods"
	OrdersCollection     = "orders"
	FailedJobsCollection = "failed_jobs"
)

// DB bundles the client and the selected database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect opens the MongoDB connection, verifies it with a ping and
// creates the indexes the app depends on. Returns an error instead of
// calling log.Fatal so the caller can shut down gracefully.
func Connect(ctx context.Context, uri, name string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	db := &DB{Client: client, Database: client.Database(name)}
	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return db, nil
}

// ensureIndexes creates the indexes CRUD paths assume. Unique email backs
// the registration duplicate check; the order indexes back the per-user
// listing and the stale payment-failed sweep.
func (d *DB) ensureIndexes(ctx context.Context) error {
	users := d.Database.Collection(UsersCollection)
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("database: users email index: %w", err)
	}

	orders := d.Database.Collection(OrdersCollection)
	if _, err := orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("database: orders indexes: %w", err)
	}

	return nil
}

// Healthy pings the server with a short deadline. Used by operators and
// the CLI; the /health endpoint deliberately does NOT call this (it always
// reports UP, preserving the documented behaviour of the original service).
func (d *DB) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.Client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (d *DB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.Client.Disconnect(ctx)
}

// Collection is a convenience accessor.
func (d *DB) Collection(name string) *mongo.Collection {
	return d.Database.Collection(name)
}
