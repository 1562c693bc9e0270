package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/pkg/collection"
	"github.com/shashiranjanraj/tomato/pkg/crypt"
	"github.com/shashiranjanraj/tomato/pkg/event"
	"github.com/shashiranjanraj/tomato/pkg/logger"
	"github.com/shashiranjanraj/tomato/pkg/metrics"
	"github.com/shashiranjanraj/tomato/pkg/payment"
)

// Event names fired on the bus.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderPaid          = "order.paid"
)

// OrderStore is the persistence surface the order service needs.
type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	SetPayment(ctx context.Context, id string, paid bool) error
	UpdateStatus(ctx context.Context, id, status string) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	DeleteStaleFailed(ctx context.Context, cutoff time.Time) (int64, error)
}

// CartItem is one requested line at checkout, prior to price resolution.
type CartItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// PlacedOrder is what the controller returns to the frontend after checkout.
type PlacedOrder struct {
	OrderID    string  `json:"order_id"`
	Amount     float64 `json:"amount"`
	SessionURL string  `json:"session_url"`
}

type OrderService struct {
	orders        OrderStore
	users         UserStore
	foods         FoodStore
	gateway       payment.Gateway
	deliveryFee   float64
	webhookSecret string
}

func NewOrderService(orders OrderStore, users UserStore, foods FoodStore, gateway payment.Gateway, deliveryFee float64, webhookSecret string) *OrderService {
	return &OrderService{
		orders:        orders,
		users:         users,
		foods:         foods,
		gateway:       gateway,
		deliveryFee:   deliveryFee,
		webhookSecret: webhookSecret,
	}
}

// PlaceOrder validates the requested items, snapshots current catalog prices
// into the order, records it as unpaid "Food Processing", clears the cart and
// opens a payment session. Cart clearing and the gateway call happen after
// the insert without a cross-document transaction; a gateway failure leaves
// an unpaid order behind for the sweeper.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, items []CartItem, address models.Address) (*PlacedOrder, error) {
	if len(items) == 0 {
		metrics.OrdersPlaced.WithLabelValues("validation").Inc()
		return nil, ErrEmptyCart
	}

	snapshot := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || it.ItemID == "" {
			metrics.OrdersPlaced.WithLabelValues("validation").Inc()
			return nil, ErrValidation
		}
		food, err := s.foods.FindByID(ctx, it.ItemID)
		if err != nil {
			metrics.OrdersPlaced.WithLabelValues("validation").Inc()
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		snapshot = append(snapshot, models.OrderItem{
			ItemID:   it.ItemID,
			Name:     food.Name,
			Price:    food.Price,
			Quantity: it.Quantity,
		})
	}
	amount := collection.Sum(snapshot, func(it models.OrderItem) float64 {
		return it.Price * float64(it.Quantity)
	}) + s.deliveryFee

	order := &models.Order{
		UserID:  userID,
		Items:   snapshot,
		Amount:  amount,
		Address: address,
		Payment: false,
		Status:  models.StatusProcessing,
		Date:    time.Now().UTC(),
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		metrics.OrdersPlaced.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.users.ClearCart(ctx, userID); err != nil {
		logger.Warn("orders: clear cart failed", "user_id", userID, "error", err)
	}

	session, err := s.gateway.CreateSession(ctx, order.ID.Hex(), amount)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues("upstream").Inc()
		logger.Error("orders: payment session failed", "order_id", order.ID.Hex(), "error", err)
		return nil, ErrUpstream
	}

	metrics.OrdersPlaced.WithLabelValues("ok").Inc()
	event.FireAsync(EventOrderPlaced, order)

	return &PlacedOrder{
		OrderID:    order.ID.Hex(),
		Amount:     amount,
		SessionURL: session.PayURL,
	}, nil
}

// VerifyInput is the gateway callback payload. Amount and Signature are
// optional cross-checks; when present they must match the order.
type VerifyInput struct {
	OrderID   string
	Success   bool
	Amount    *float64
	Signature string
}

// VerifyPayment settles the order named by the callback. Success marks the
// order paid (idempotently); failure moves it to "Payment Failed" and keeps
// the record for the audit window. The callback is only ever scoped to the
// single supplied order id.
func (s *OrderService) VerifyPayment(ctx context.Context, in VerifyInput) error {
	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		metrics.PaymentsVerified.WithLabelValues("rejected").Inc()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	if in.Amount != nil && *in.Amount != order.Amount {
		metrics.PaymentsVerified.WithLabelValues("rejected").Inc()
		return ErrValidation
	}
	if s.webhookSecret != "" {
		msg := fmt.Sprintf("%s:%t:%.2f", in.OrderID, in.Success, order.Amount)
		if !crypt.VerifyHMAC(s.webhookSecret, msg, in.Signature) {
			metrics.PaymentsVerified.WithLabelValues("rejected").Inc()
			return ErrValidation
		}
	}

	if in.Success {
		// Repeat success callbacks are harmless, payment stays true.
		if err := s.orders.SetPayment(ctx, in.OrderID, true); err != nil {
			return err
		}
		metrics.PaymentsVerified.WithLabelValues("paid").Inc()
		order.Payment = true
		event.FireAsync(EventOrderPaid, order)
		return nil
	}

	// A failure callback arriving after the order settled is a replay (the
	// endpoint is unauthenticated); it must never un-settle a paid order.
	if order.Payment {
		metrics.PaymentsVerified.WithLabelValues("rejected").Inc()
		return nil
	}

	if err := s.orders.SetPayment(ctx, in.OrderID, false); err != nil {
		return err
	}
	metrics.PaymentsVerified.WithLabelValues("failed").Inc()
	return nil
}

// UpdateStatus sets the order status. Only membership in the known status
// set is enforced; there is no linear-transition check, an admin may move an
// order backwards.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if !models.ValidStatus(status) {
		return ErrValidation
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	event.FireAsync(EventOrderStatusUpdated, map[string]string{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

// ListOrders returns the given user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAllOrders returns every order, newest first. Admin only.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}

// SweepFailedOrders deletes "Payment Failed" orders older than maxAge.
// Registered as an hourly scheduled task.
func (s *OrderService) SweepFailedOrders(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.orders.DeleteStaleFailed(ctx, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("orders: swept stale failed orders", "count", n)
	}
	return n, nil
}
