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

type FoodRepository struct {
	coll *mongo.Collection
}

func NewFoodRepository(db *database.DB) *FoodRepository {
	return &FoodRepository{coll: db.Collection(database.FoodsCollection)}
}

func (r *FoodRepository) Insert(ctx context.Context, f *models.Food) error {
	defer metrics.ObserveMongoOp("foods.insert", time.Now())

	f.CreatedAt = time.Now().UTC()
	res, err := r.coll.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("foods: insert: %w", err)
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *FoodRepository) List(ctx context.Context) ([]models.Food, error) {
	defer metrics.ObserveMongoOp("foods.list", time.Now())

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("foods: list: %w", err)
	}
	defer cur.Close(ctx)

	foods := []models.Food{}
	if err := cur.All(ctx, &foods); err != nil {
		return nil, fmt.Errorf("foods: decode: %w", err)
	}
	return foods, nil
}

func (r *FoodRepository) FindByID(ctx context.Context, id string) (*models.Food, error) {
	defer metrics.ObserveMongoOp("foods.find_by_id", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoDocument
	}
	var f models.Food
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes the food and returns the deleted document so the caller can
// clean up its stored image.
func (r *FoodRepository) Delete(ctx context.Context, id string) (*models.Food, error) {
	defer metrics.ObserveMongoOp("foods.delete", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoDocument
	}
	var f models.Food
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
