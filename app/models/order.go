package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. New orders start in StatusProcessing; admins move them
// forward. StatusPaymentFailed is a terminal branch entered when the payment
// gateway reports failure; a scheduled sweeper removes stale failed orders.
const (
	StatusProcessing     = "Food Processing"
	StatusOutForDelivery = "Out for delivery"
	StatusDelivered      = "Delivered"
	StatusPaymentFailed  = "Payment Failed"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusOutForDelivery, StatusDelivered, StatusPaymentFailed:
		return true
	}
	return false
}

// OrderItem is a line item with the name and price snapshotted at order time,
// so later catalog edits cannot change what the customer was charged.
type OrderItem struct {
	ItemID   string  `bson:"item_id" json:"item_id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// Address is the delivery address captured at checkout.
type Address struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Zipcode   string `bson:"zipcode" json:"zipcode"`
	Country   string `bson:"country" json:"country"`
	Phone     string `bson:"phone" json:"phone"`
}

// Order is a placed order. Amount includes the delivery fee.
type Order struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  string             `bson:"user_id" json:"user_id"`
	Items   []OrderItem        `bson:"items" json:"items"`
	Amount  float64            `bson:"amount" json:"amount"`
	Address Address            `bson:"address" json:"address"`
	Payment bool               `bson:"payment" json:"payment"`
	Status  string             `bson:"status" json:"status"`
	Date    time.Time          `bson:"date" json:"date"`
}
