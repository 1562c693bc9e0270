package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account holder. CartData maps a food item id to the quantity
// currently in the cart; entries are pruned when the quantity reaches zero.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // hashed, never serialised
	Role      string             `bson:"role" json:"role"`
	CartData  map[string]int     `bson:"cartData" json:"cartData"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Roles recognised by the RBAC middleware.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
