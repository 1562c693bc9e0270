package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/pkg/payment"
)

// In-memory stores mirroring the Mongo update semantics closely enough for
// the service-level behaviour under test.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by hex id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	u.ID = primitive.NewObjectID()
	if u.CartData == nil {
		u.CartData = map[string]int{}
	}
	f.users[u.ID.Hex()] = u
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

func (f *fakeUserStore) IncrementCartItem(_ context.Context, userID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.CartData[itemID]++
	return nil
}

func (f *fakeUserStore) DecrementCartItem(_ context.Context, userID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	switch q := u.CartData[itemID]; {
	case q > 1:
		u.CartData[itemID] = q - 1
	case q == 1:
		delete(u.CartData, itemID)
	}
	return nil
}

func (f *fakeUserStore) GetCart(_ context.Context, userID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := map[string]int{}
	for k, v := range u.CartData {
		out[k] = v
	}
	return out, nil
}

func (f *fakeUserStore) ClearCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.CartData = map[string]int{}
	return nil
}

type fakeFoodStore struct {
	mu    sync.Mutex
	foods map[string]*models.Food
}

func newFakeFoodStore() *fakeFoodStore {
	return &fakeFoodStore{foods: map[string]*models.Food{}}
}

func (f *fakeFoodStore) Insert(_ context.Context, food *models.Food) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	food.ID = primitive.NewObjectID()
	f.foods[food.ID.Hex()] = food
	return nil
}

func (f *fakeFoodStore) List(_ context.Context) ([]models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Food{}
	for _, v := range f.foods {
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeFoodStore) FindByID(_ context.Context, id string) (*models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	food, ok := f.foods[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return food, nil
}

func (f *fakeFoodStore) Delete(_ context.Context, id string) (*models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	food, ok := f.foods[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(f.foods, id)
	return food, nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*models.Order{}}
}

func (f *fakeOrderStore) Insert(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = primitive.NewObjectID()
	f.orders[o.ID.Hex()] = o
	return nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) SetPayment(_ context.Context, id string, paid bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if paid {
		o.Payment = true
	} else {
		o.Payment = false
		o.Status = models.StatusPaymentFailed
	}
	return nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.Status = status
	return nil
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListAll(_ context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderStore) DeleteStaleFailed(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, o := range f.orders {
		if o.Status == models.StatusPaymentFailed && o.Date.Before(cutoff) {
			delete(f.orders, id)
			n++
		}
	}
	return n, nil
}

// fakeGateway records sessions instead of calling out.
type fakeGateway struct {
	mu       sync.Mutex
	sessions []string // order ids
	fail     bool
}

func (g *fakeGateway) CreateSession(_ context.Context, orderID string, amount float64) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, fmt.Errorf("gateway down")
	}
	g.sessions = append(g.sessions, orderID)
	return &payment.Session{
		ID:     "sess-" + orderID,
		PayURL: "https://gateway/approve/" + orderID,
	}, nil
}
