package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/config"
	"github.com/shashiranjanraj/tomato/pkg/auth"
	"github.com/shashiranjanraj/tomato/pkg/database"
)

// SeedAdmin creates the initial admin account when none exists. Credentials
// come from ADMIN_EMAIL / ADMIN_PASSWORD.
func SeedAdmin(ctx context.Context, db *database.DB) error {
	email := config.Get("ADMIN_EMAIL", "admin@tomato.app")
	password := config.Get("ADMIN_PASSWORD", "")
	if password == "" {
		return nil // no credentials configured, skip
	}

	coll := db.Collection(database.UsersCollection)
	n, err := coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, models.User{
		Name:     "Admin",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
		CartData: map[string]int{},
	})
	return err
}
