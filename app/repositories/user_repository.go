// Package repositories holds the Mongo persistence layer. Each repository
// wraps one collection and keeps bson concerns out of the services.
package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/pkg/database"
	"github.com/shashiranjanraj/tomato/pkg/metrics"
)

// ErrNoDocument is returned when a lookup matches nothing.
var ErrNoDocument = mongo.ErrNoDocuments

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{coll: db.Collection(database.UsersCollection)}
}

// Create inserts the user and fills in its generated id.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveMongoOp("users.insert", time.Now())

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.CartData == nil {
		u.CartData = map[string]int{}
	}

	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer metrics.ObserveMongoOp("users.find_by_email", time.Now())

	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	defer metrics.ObserveMongoOp("users.find_by_id", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoDocument
	}
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// IncrementCartItem bumps the quantity of itemID by one. The update is a
// single-document $inc, so concurrent adds for the same user never lose a
// count.
func (r *UserRepository) IncrementCartItem(ctx context.Context, userID, itemID string) error {
	defer metrics.ObserveMongoOp("users.cart_inc", time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNoDocument
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"cartData." + itemID: 1}},
	)
	if err != nil {
		return fmt.Errorf("users: cart inc: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// DecrementCartItem lowers the quantity of itemID by one, removing the key
// entirely when it would reach zero. A missing key is a no-op, so the
// quantity can never go negative.
func (r *UserRepository) DecrementCartItem(ctx context.Context, userID, itemID string) error {
	defer metrics.ObserveMongoOp("users.cart_dec", time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNoDocument
	}
	key := "cartData." + itemID

	// Quantity above one: plain decrement.
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, key: bson.M{"$gt": 1}},
		bson.M{"$inc": bson.M{key: -1}},
	)
	if err != nil {
		return fmt.Errorf("users: cart dec: %w", err)
	}
	if res.ModifiedCount > 0 {
		return nil
	}

	// Quantity exactly one: prune the key. A missing key matches nothing,
	// which makes removal of an absent item a no-op.
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, key: bson.M{"$exists": true}},
		bson.M{"$unset": bson.M{key: ""}},
	); err != nil {
		return fmt.Errorf("users: cart unset: %w", err)
	}
	return nil
}

// GetCart returns the user's cart mapping.
func (r *UserRepository) GetCart(ctx context.Context, userID string) (map[string]int, error) {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.CartData == nil {
		return map[string]int{}, nil
	}
	return u.CartData, nil
}

// ClearCart empties the cart after an order is placed.
func (r *UserRepository) ClearCart(ctx context.Context, userID string) error {
	defer metrics.ObserveMongoOp("users.cart_clear", time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNoDocument
	}
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"cartData": bson.M{}, "updated_at": time.Now().UTC()}},
	); err != nil {
		return fmt.Errorf("users: cart clear: %w", err)
	}
	return nil
}
