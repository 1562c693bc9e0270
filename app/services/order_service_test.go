package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/config"
	"github.com/shashiranjanraj/tomato/pkg/crypt"
)

const testDeliveryFee = 2.0

type orderFixture struct {
	users   *fakeUserStore
	foods   *fakeFoodStore
	orders  *fakeOrderStore
	gateway *fakeGateway
	svc     *OrderService
	userID  string
}

func newOrderFixture(t *testing.T, webhookSecret string) *orderFixture {
	t.Helper()
	f := &orderFixture{
		users:   newFakeUserStore(),
		foods:   newFakeFoodStore(),
		orders:  newFakeOrderStore(),
		gateway: &fakeGateway{},
	}
	f.svc = NewOrderService(f.orders, f.users, f.foods, f.gateway, testDeliveryFee, webhookSecret)
	f.userID = seedUser(t, f.users)
	return f
}

func (f *orderFixture) seedFood(t *testing.T, name string, price float64) string {
	t.Helper()
	food := &models.Food{Name: name, Price: price, Category: "Rolls"}
	require.NoError(t, f.foods.Insert(context.Background(), food))
	return food.ID.Hex()
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	f := newOrderFixture(t, "")
	ctx := context.Background()
	pizza := f.seedFood(t, "Pizza", 12.5)
	salad := f.seedFood(t, "Salad", 4)

	placed, err := f.svc.PlaceOrder(ctx, f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 2}, {ItemID: salad, Quantity: 1}},
		models.Address{City: "Pune"})
	require.NoError(t, err)

	assert.Equal(t, 2*12.5+4+testDeliveryFee, placed.Amount)
	assert.Contains(t, placed.SessionURL, placed.OrderID)

	order, err := f.orders.FindByID(ctx, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.False(t, order.Payment)
	assert.Equal(t, "Pizza", order.Items[0].Name, "name snapshotted from catalog")
	assert.Equal(t, 12.5, order.Items[0].Price, "price snapshotted from catalog")

	cart, err := f.users.GetCart(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, cart, "cart cleared after checkout")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newOrderFixture(t, "")

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, nil, models.Address{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	all, _ := f.orders.ListAll(context.Background())
	assert.Empty(t, all, "no order record created on rejection")
}

func TestPlaceOrderBadQuantity(t *testing.T) {
	f := newOrderFixture(t, "")
	pizza := f.seedFood(t, "Pizza", 10)

	_, err := f.svc.PlaceOrder(context.Background(), f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 0}}, models.Address{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	f := newOrderFixture(t, "")

	_, err := f.svc.PlaceOrder(context.Background(), f.userID,
		[]CartItem{{ItemID: "000000000000000000000000", Quantity: 1}}, models.Address{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrderGatewayDown(t *testing.T) {
	f := newOrderFixture(t, "")
	f.gateway.fail = true
	pizza := f.seedFood(t, "Pizza", 10)

	_, err := f.svc.PlaceOrder(context.Background(), f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 1}}, models.Address{})
	assert.ErrorIs(t, err, ErrUpstream)

	// The unpaid order record is left behind for the sweeper.
	all, _ := f.orders.ListAll(context.Background())
	require.Len(t, all, 1)
	assert.False(t, all[0].Payment)
}

func TestVerifyPaymentIdempotent(t *testing.T) {
	f := newOrderFixture(t, "")
	ctx := context.Background()
	pizza := f.seedFood(t, "Pizza", 10)

	placed, err := f.svc.PlaceOrder(ctx, f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 1}}, models.Address{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.VerifyPayment(ctx, VerifyInput{OrderID: placed.OrderID, Success: true}))
	}

	order, err := f.orders.FindByID(ctx, placed.OrderID)
	require.NoError(t, err)
	assert.True(t, order.Payment)
	assert.Equal(t, models.StatusProcessing, order.Status)
}

func TestVerifyPaymentFailureCannotUnsettlePaidOrder(t *testing.T) {
	f := newOrderFixture(t, "")
	ctx := context.Background()
	pizza := f.seedFood(t, "Pizza", 10)

	placed, err := f.svc.PlaceOrder(ctx, f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 1}}, models.Address{})
	require.NoError(t, err)

	require.NoError(t, f.svc.VerifyPayment(ctx, VerifyInput{OrderID: placed.OrderID, Success: true}))

	// A replayed (or forged) failure callback after settlement is a no-op.
	require.NoError(t, f.svc.VerifyPayment(ctx, VerifyInput{OrderID: placed.OrderID, Success: false}))

	order, err := f.orders.FindByID(ctx, placed.OrderID)
	require.NoError(t, err)
	assert.True(t, order.Payment, "paid order must stay paid")
	assert.Equal(t, models.StatusProcessing, order.Status)

	// Backdate it; the sweeper must still never pick a paid order up.
	f.orders.mu.Lock()
	f.orders.orders[placed.OrderID].Date = time.Now().UTC().Add(-48 * time.Hour)
	f.orders.mu.Unlock()

	n, err := f.svc.SweepFailedOrders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = f.orders.FindByID(ctx, placed.OrderID)
	assert.NoError(t, err, "paid order survives the sweep")
}

func TestVerifyPaymentFailureKeepsRecord(t *testing.T) {
	f := newOrderFixture(t, "")
	ctx := context.Background()
	pizza := f.seedFood(t, "Pizza", 10)

	placed, err := f.svc.PlaceOrder(ctx, f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 1}}, models.Address{})
	require.NoError(t, err)

	require.NoError(t, f.svc.VerifyPayment(ctx, VerifyInput{OrderID: placed.OrderID, Success: false}))

	order, err := f.orders.FindByID(ctx, placed.OrderID)
	require.NoError(t, err)
	assert.False(t, order.Payment)
	assert.Equal(t, models.StatusPaymentFailed, order.Status)
}

func TestVerifyPaymentAmountMismatch(t *testing.T) {
	f := newOrderFixture(t, "")
	ctx := context.Background()
	pizza := f.seedFood(t, "Pizza", 10)

	placed, err := f.svc.PlaceOrder(ctx, f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 1}}, models.Address{})
	require.NoError(t, err)

	wrong := placed.Amount + 1
	err = f.svc.VerifyPayment(ctx, VerifyInput{OrderID: placed.OrderID, Success: true, Amount: &wrong})
	assert.ErrorIs(t, err, ErrValidation)

	order, _ := f.orders.FindByID(ctx, placed.OrderID)
	assert.False(t, order.Payment, "mismatched callback must not settle the order")
}

func TestVerifyPaymentSignature(t *testing.T) {
	const secret = "hook-secret"
	f := newOrderFixture(t, secret)
	ctx := context.Background()
	pizza := f.seedFood(t, "Pizza", 10)

	placed, err := f.svc.PlaceOrder(ctx, f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 1}}, models.Address{})
	require.NoError(t, err)

	err = f.svc.VerifyPayment(ctx, VerifyInput{OrderID: placed.OrderID, Success: true, Signature: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)

	msg := fmt.Sprintf("%s:%t:%.2f", placed.OrderID, true, placed.Amount)
	sig := crypt.SignHMAC(secret, msg)
	require.NoError(t, f.svc.VerifyPayment(ctx, VerifyInput{OrderID: placed.OrderID, Success: true, Signature: sig}))
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	f := newOrderFixture(t, "")
	err := f.svc.VerifyPayment(context.Background(), VerifyInput{OrderID: "000000000000000000000000", Success: true})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newOrderFixture(t, "")
	ctx := context.Background()
	pizza := f.seedFood(t, "Pizza", 10)

	placed, err := f.svc.PlaceOrder(ctx, f.userID,
		[]CartItem{{ItemID: pizza, Quantity: 1}}, models.Address{})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(ctx, placed.OrderID, models.StatusOutForDelivery))
	order, _ := f.orders.FindByID(ctx, placed.OrderID)
	assert.Equal(t, models.StatusOutForDelivery, order.Status)

	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, placed.OrderID, "Teleported"), ErrValidation)

	// Backwards moves are allowed, only membership is checked.
	require.NoError(t, f.svc.UpdateStatus(ctx, placed.OrderID, models.StatusProcessing))
}

func TestSweepFailedOrders(t *testing.T) {
	f := newOrderFixture(t, "")
	ctx := context.Background()

	stale := &models.Order{
		UserID: f.userID,
		Items:  []models.OrderItem{{ItemID: "x", Name: "Pizza", Price: 10, Quantity: 1}},
		Amount: 12, Status: models.StatusPaymentFailed,
		Date: time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := &models.Order{
		UserID: f.userID,
		Items:  []models.OrderItem{{ItemID: "x", Name: "Pizza", Price: 10, Quantity: 1}},
		Amount: 12, Status: models.StatusPaymentFailed,
		Date: time.Now().UTC().Add(-1 * time.Hour),
	}
	require.NoError(t, f.orders.Insert(ctx, stale))
	require.NoError(t, f.orders.Insert(ctx, fresh))

	n, err := f.svc.SweepFailedOrders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = f.orders.FindByID(ctx, fresh.ID.Hex())
	assert.NoError(t, err, "recent failed order stays inside the audit window")
}

// End to end at the service layer: register, fill a cart, check out.
func TestRegisterCartCheckoutScenario(t *testing.T) {
	users := newFakeUserStore()
	foods := newFakeFoodStore()
	orders := newFakeOrderStore()
	gw := &fakeGateway{}

	authSvc := NewAuthService(users)
	cartSvc := NewCartService(users)
	// Default configuration: no delivery fee, total is the plain item sum.
	orderSvc := NewOrderService(orders, users, foods, gw, config.DeliveryFee(), "")
	ctx := context.Background()

	_, err := authSvc.Register(ctx, "Ravi", "ravi@example.com", "supersecret")
	require.NoError(t, err)
	u, err := users.FindByEmail(ctx, "ravi@example.com")
	require.NoError(t, err)
	uid := u.ID.Hex()

	food := &models.Food{Name: "Samosa", Price: 3.5}
	require.NoError(t, foods.Insert(ctx, food))
	fid := food.ID.Hex()

	require.NoError(t, cartSvc.AddItem(ctx, uid, fid))
	require.NoError(t, cartSvc.AddItem(ctx, uid, fid))

	cart, err := cartSvc.GetCart(ctx, uid)
	require.NoError(t, err)

	items := make([]CartItem, 0, len(cart))
	for id, qty := range cart {
		items = append(items, CartItem{ItemID: id, Quantity: qty})
	}
	placed, err := orderSvc.PlaceOrder(ctx, uid, items, models.Address{City: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, 2*3.5, placed.Amount, "total equals the catalog item sum exactly")
}
