package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tomato/app/controllers"
	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/app/routes"
	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/auth"
	"github.com/shashiranjanraj/tomato/pkg/payment"
	"github.com/shashiranjanraj/tomato/pkg/router"
)

// ─── In-memory stores ─────────────────────────────────────────────────────────

type memStores struct {
	mu     sync.Mutex
	users  map[string]*models.User
	foods  map[string]*models.Food
	orders map[string]*models.Order
}

func newMemStores() *memStores {
	return &memStores{
		users:  map[string]*models.User{},
		foods:  map[string]*models.Food{},
		orders: map[string]*models.Order{},
	}
}

func (m *memStores) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	u.ID = primitive.NewObjectID()
	if u.CartData == nil {
		u.CartData = map[string]int{}
	}
	m.users[u.ID.Hex()] = u
	return nil
}

func (m *memStores) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memStores) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memStores) IncrementCartItem(_ context.Context, userID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.CartData[itemID]++
	return nil
}

func (m *memStores) DecrementCartItem(_ context.Context, userID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
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

func (m *memStores) GetCart(_ context.Context, userID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := map[string]int{}
	for k, v := range u.CartData {
		out[k] = v
	}
	return out, nil
}

func (m *memStores) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.CartData = map[string]int{}
	return nil
}

func (m *memStores) Insert(_ context.Context, f *models.Food) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = primitive.NewObjectID()
	m.foods[f.ID.Hex()] = f
	return nil
}

func (m *memStores) List(_ context.Context) ([]models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Food{}
	for _, f := range m.foods {
		out = append(out, *f)
	}
	return out, nil
}

type foodStore struct{ *memStores }

func (m foodStore) FindByID(_ context.Context, id string) (*models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.foods[id]; ok {
		return f, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m foodStore) Delete(_ context.Context, id string) (*models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(m.foods, id)
	return f, nil
}

type orderStore struct{ *memStores }

func (m orderStore) Insert(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	m.orders[o.ID.Hex()] = o
	return nil
}

func (m orderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m orderStore) SetPayment(_ context.Context, id string, paid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
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

func (m orderStore) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.Status = status
	return nil
}

func (m orderStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m orderStore) ListAll(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m orderStore) DeleteStaleFailed(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type stubGateway struct{}

func (stubGateway) CreateSession(_ context.Context, orderID string, amount float64) (*payment.Session, error) {
	return &payment.Session{ID: "sess-" + orderID, PayURL: "https://gateway/approve/" + orderID}, nil
}

// ─── Test app assembly ────────────────────────────────────────────────────────

type testApp struct {
	stores  *memStores
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	stores := newMemStores()

	authSvc := services.NewAuthService(stores)
	cartSvc := services.NewCartService(stores)
	catalogSvc := services.NewCatalogService(foodStore{stores})
	orderSvc := services.NewOrderService(orderStore{stores}, stores, foodStore{stores}, stubGateway{}, 2, "")

	gql, err := controllers.NewAdminGraphQLController(catalogSvc, orderSvc)
	require.NoError(t, err)

	r := router.New()
	routes.RegisterAPI(r, &routes.Controllers{
		Users:   controllers.NewUserController(authSvc),
		Foods:   controllers.NewFoodController(catalogSvc),
		Cart:    controllers.NewCartController(cartSvc),
		Orders:  controllers.NewOrderController(orderSvc),
		Health:  controllers.NewHealthController(),
		GraphQL: gql,
	})
	return &testApp{stores: stores, handler: r.Handler()}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func (a *testApp) registerUser(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Test", "email": email, "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData(t, rec)["token"].(string)
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	u := &models.User{Name: "Boss", Email: "boss@example.com", Role: models.RoleAdmin}
	require.NoError(t, a.stores.Create(context.Background(), u))
	token, err := auth.GenerateToken(u.ID.Hex(), u.Role)
	require.NoError(t, err)
	return token
}

func (a *testApp) seedFood(t *testing.T, name string, price float64) string {
	t.Helper()
	f := &models.Food{Name: name, Price: price}
	require.NoError(t, a.stores.Insert(context.Background(), f))
	return f.ID.Hex()
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestHealthAlwaysUp(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "UP", data["status"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "asha@example.com")
	require.NotEmpty(t, token)

	rec := app.do(t, http.MethodPost, "/api/user/login", "", map[string]string{
		"email": "asha@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeData(t, rec)["token"])

	rec = app.do(t, http.MethodPost, "/api/user/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	app := newTestApp(t)
	app.registerUser(t, "asha@example.com")
	rec := app.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Again", "email": "asha@example.com", "password": "supersecret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCartRequiresToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/cart/get", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")

	rec = app.do(t, http.MethodPost, "/api/cart/get", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestCartFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "asha@example.com")
	fid := app.seedFood(t, "Pizza", 12.5)

	for i := 0; i < 2; i++ {
		rec := app.do(t, http.MethodPost, "/api/cart/add", token, map[string]string{"itemId": fid})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := app.do(t, http.MethodPost, "/api/cart/get", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeData(t, rec)[fid])

	rec = app.do(t, http.MethodPost, "/api/cart/remove", token, map[string]string{"itemId": fid})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodPost, "/api/cart/get", token, nil)
	assert.Equal(t, float64(1), decodeData(t, rec)[fid])
}

func TestPlaceAndVerifyOrder(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "ravi@example.com")
	fid := app.seedFood(t, "Samosa", 3.5)

	rec := app.do(t, http.MethodPost, "/api/order/place", token, map[string]interface{}{
		"items":   []map[string]interface{}{{"item_id": fid, "quantity": 2}},
		"address": map[string]string{"city": "Pune", "email": "ravi@example.com"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	orderID := data["order_id"].(string)
	assert.Equal(t, 2*3.5+2, data["amount"])
	assert.Contains(t, data["session_url"], orderID)

	// Gateway callback comes in with no auth header.
	rec = app.do(t, http.MethodPost, "/api/order/verify", "", map[string]interface{}{
		"orderId": orderID, "success": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The user sees their paid order.
	rec = app.do(t, http.MethodPost, "/api/order/userorders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.True(t, env.Data[0].Payment)
	assert.Equal(t, models.StatusProcessing, env.Data[0].Status)
}

func TestVerifyUnknownOrder(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/api/order/verify", "", map[string]interface{}{
		"orderId": primitive.NewObjectID().Hex(), "success": true,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGuards(t *testing.T) {
	app := newTestApp(t)
	userToken := app.registerUser(t, "user@example.com")
	adminToken := app.adminToken(t)

	// Plain users cannot list all orders or change statuses.
	rec := app.do(t, http.MethodGet, "/api/order/list", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/order/list", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	fid := app.seedFood(t, "Pizza", 10)
	rec = app.do(t, http.MethodPost, "/api/food/remove", userToken, map[string]string{"id": fid})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/food/remove", adminToken, map[string]string{"id": fid})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUpdateStatus(t *testing.T) {
	app := newTestApp(t)
	userToken := app.registerUser(t, "ravi@example.com")
	adminToken := app.adminToken(t)
	fid := app.seedFood(t, "Samosa", 3.5)

	rec := app.do(t, http.MethodPost, "/api/order/place", userToken, map[string]interface{}{
		"items": []map[string]interface{}{{"item_id": fid, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeData(t, rec)["order_id"].(string)

	rec = app.do(t, http.MethodPost, "/api/order/status", adminToken, map[string]string{
		"orderId": orderID, "status": models.StatusOutForDelivery,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/order/status", adminToken, map[string]string{
		"orderId": orderID, "status": "Beamed up",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFoodListPublic(t *testing.T) {
	app := newTestApp(t)
	app.seedFood(t, "Pizza", 10)

	rec := app.do(t, http.MethodGet, "/api/food/list", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []models.Food `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Pizza", env.Data[0].Name)
}

func TestAdminGraphQL(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)
	app.seedFood(t, "Pizza", 10)

	rec := app.do(t, http.MethodPost, "/api/admin/graphql", adminToken, map[string]string{
		"query": `{ foods { name price } }`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Pizza")

	userToken := app.registerUser(t, "pleb@example.com")
	rec = app.do(t, http.MethodPost, "/api/admin/graphql", userToken, map[string]string{
		"query": `{ foods { name } }`,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
