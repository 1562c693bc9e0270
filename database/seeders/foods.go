package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/pkg/database"
)

func init() {
	Register("foods", SeedFoods)
	Register("admin", SeedAdmin)
}

// SeedFoods fills an empty catalog with a starter menu.
func SeedFoods(ctx context.Context, db *database.DB) error {
	coll := db.Collection(database.FoodsCollection)

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil // already seeded
	}

	menu := []interface{}{
		models.Food{Name: "Greek salad", Description: "Fresh veggies with feta", Price: 12, Category: "Salad"},
		models.Food{Name: "Veg salad", Description: "Seasonal greens", Price: 18, Category: "Salad"},
		models.Food{Name: "Chicken Rolls", Description: "Spiced chicken wrap", Price: 20, Category: "Rolls"},
		models.Food{Name: "Lasagna Rolls", Description: "Pasta rolls in tomato sauce", Price: 14, Category: "Rolls"},
		models.Food{Name: "Ripple Ice Cream", Description: "Raspberry ripple", Price: 14, Category: "Deserts"},
		models.Food{Name: "Cheese Pasta", Description: "Four cheese sauce", Price: 12, Category: "Pasta"},
		models.Food{Name: "Butter Noodles", Description: "Buttered egg noodles", Price: 14, Category: "Noodles"},
		models.Food{Name: "Peri Peri Rolls", Description: "Hot peri peri filling", Price: 12, Category: "Rolls"},
	}
	_, err = coll.InsertMany(ctx, menu)
	return err
}
