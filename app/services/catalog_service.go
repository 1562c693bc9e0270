package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/pkg/cache"
	"github.com/shashiranjanraj/tomato/pkg/logger"
	"github.com/shashiranjanraj/tomato/pkg/storage"
)

const foodListCacheKey = "tomato:foods:list"

// FoodStore is the persistence surface the catalog service needs.
type FoodStore interface {
	Insert(ctx context.Context, f *models.Food) error
	List(ctx context.Context) ([]models.Food, error)
	FindByID(ctx context.Context, id string) (*models.Food, error)
	Delete(ctx context.Context, id string) (*models.Food, error)
}

type CatalogService struct {
	foods FoodStore
}

func NewCatalogService(foods FoodStore) *CatalogService {
	return &CatalogService{foods: foods}
}

// List returns every catalog item, served from Redis when warm.
func (s *CatalogService) List(ctx context.Context) ([]models.Food, error) {
	var cached []models.Food
	if cache.Get(foodListCacheKey, &cached) {
		return cached, nil
	}

	foods, err := s.foods.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(foodListCacheKey, foods, 5*time.Minute); err != nil {
		logger.Warn("catalog: cache set failed", "error", err)
	}
	return foods, nil
}

// Add stores the uploaded image and inserts the catalog item. filename is the
// client-supplied name, used only for its extension.
func (s *CatalogService) Add(ctx context.Context, f *models.Food, image io.Reader, filename string) (*models.Food, error) {
	if strings.TrimSpace(f.Name) == "" || f.Price <= 0 {
		return nil, ErrValidation
	}

	if image != nil {
		ext := strings.ToLower(filepath.Ext(filename))
		path := fmt.Sprintf("foods/%d%s", time.Now().UnixNano(), ext)
		if err := storage.PutStream(path, image); err != nil {
			return nil, fmt.Errorf("catalog: store image: %w", err)
		}
		f.Image = path
	}

	if err := s.foods.Insert(ctx, f); err != nil {
		return nil, err
	}
	s.invalidate()
	return f, nil
}

// Remove deletes the catalog item and its stored image.
func (s *CatalogService) Remove(ctx context.Context, id string) error {
	f, err := s.foods.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	if f.Image != "" {
		if err := storage.Delete(f.Image); err != nil {
			logger.Warn("catalog: delete image failed", "path", f.Image, "error", err)
		}
	}
	s.invalidate()
	return nil
}

func (s *CatalogService) invalidate() {
	if err := cache.Del(foodListCacheKey); err != nil {
		logger.Warn("catalog: cache invalidate failed", "error", err)
	}
}
