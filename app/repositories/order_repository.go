package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/pkg/database"
	"github.com/shashiranjanraj/tomato/pkg/metrics"
)

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{coll: db.Collection(database.OrdersCollection)}
}

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveMongoOp("orders.insert", time.Now())

	if o.Date.IsZero() {
		o.Date = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("orders: insert: %w", err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	defer metrics.ObserveMongoOp("orders.find_by_id", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoDocument
	}
	var o models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SetPayment marks the order paid or failed. Marking paid is idempotent.
func (r *OrderRepository) SetPayment(ctx context.Context, id string, paid bool) error {
	defer metrics.ObserveMongoOp("orders.set_payment", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}

	update := bson.M{"$set": bson.M{"payment": paid}}
	if !paid {
		update = bson.M{"$set": bson.M{"payment": false, "status": models.StatusPaymentFailed}}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("orders: set payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	defer metrics.ObserveMongoOp("orders.update_status", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	defer metrics.ObserveMongoOp("orders.list_by_user", time.Now())
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveMongoOp("orders.list_all", time.Now())
	return r.list(ctx, bson.M{})
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	return orders, nil
}

// DeleteStaleFailed removes "Payment Failed" orders older than cutoff and
// returns how many were swept.
func (r *OrderRepository) DeleteStaleFailed(ctx context.Context, cutoff time.Time) (int64, error) {
	defer metrics.ObserveMongoOp("orders.sweep_failed", time.Now())

	res, err := r.coll.DeleteMany(ctx, bson.M{
		"status": models.StatusPaymentFailed,
		"date":   bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("orders: sweep failed: %w", err)
	}
	return res.DeletedCount, nil
}
