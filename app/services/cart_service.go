package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tomato/pkg/metrics"
)

type CartService struct {
	users UserStore
}

func NewCartService(users UserStore) *CartService {
	return &CartService{users: users}
}

// AddItem raises the quantity of itemID in the user's cart by one.
func (s *CartService) AddItem(ctx context.Context, userID, itemID string) error {
	if itemID == "" {
		return ErrValidation
	}
	if err := s.users.IncrementCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	metrics.CartOps.WithLabelValues("add").Inc()
	return nil
}

// RemoveItem lowers the quantity by one, floored at zero. Removing an item
// that is not in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if itemID == "" {
		return ErrValidation
	}
	if err := s.users.DecrementCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	metrics.CartOps.WithLabelValues("remove").Inc()
	return nil
}

// GetCart returns the item-id to quantity mapping.
func (s *CartService) GetCart(ctx context.Context, userID string) (map[string]int, error) {
	cart, err := s.users.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cart, nil
}
