package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/events"
	"github.com/01moynul/medistore/internal/handlers"
	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/routes"
	"github.com/01moynul/medistore/internal/service"
	"github.com/01moynul/medistore/internal/store/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
	users  *service.UserService
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	users := service.NewUserService(store, tokens)
	notes := service.NewNotificationService(store)

	h := &handlers.Handlers{
		Users:    users,
		Carts:    service.NewCartService(store),
		Orders:   service.NewOrderService(store, events.LocalPublisher{Handle: notes.HandleOrderEvent}),
		Products: service.NewProductService(store),
		Stats:    service.NewStatsService(store),
		Notes:    notes,
	}
	return &testApp{t: t, router: routes.SetupRouter(h, []string{"http://localhost:3000"}), users: users}
}

func (a *testApp) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// expect performs the request, checks the status and decodes data into out.
func (a *testApp) expect(status int, method, path, token string, body, out any) envelope {
	a.t.Helper()
	w, env := a.do(method, path, token, body)
	require.Equal(a.t, status, w.Code, w.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (a *testApp) signup(name, email string, role models.Role) (string, int64) {
	a.t.Helper()
	a.expect(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": name, "email": email, "password": "long-enough", "role": role,
	}, nil)

	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	a.expect(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "long-enough"}, &login)
	return login.Token, login.User.ID
}

func (a *testApp) adminToken() string {
	a.t.Helper()
	_, err := a.users.SeedAdmin(context.Background(), "Ada Admin", "ada@example.com", "admin-password")
	require.NoError(a.t, err)
	token, _, err := a.users.Login(context.Background(), "ada@example.com", "admin-password")
	require.NoError(a.t, err)
	return token
}

func TestCheckoutFlow(t *testing.T) {
	app := setupTestApp(t)
	customer, _ := app.signup("Cara", "cara@example.com", models.RoleCustomer)
	seller, sellerID := app.signup("Alpha Pharmacy", "alpha@example.com", models.RoleSeller)

	// --- Seller lists a product ---
	var product models.Product
	app.expect(http.StatusCreated, http.MethodPost, "/api/v1/seller/products", seller, gin.H{
		"name": "Paracetamol 500mg", "price": "12.50", "stock": 40,
	}, &product)
	assert.Equal(t, "paracetamol-500mg", product.Slug)

	app.expect(http.StatusOK, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), "", nil, nil)

	// --- Customer fills the cart ---
	env := app.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/cart/add", customer, gin.H{"productId": product.ID, "quantity": 0}, nil)
	assert.False(t, env.Success)

	var cart models.CartView
	app.expect(http.StatusOK, http.MethodPost, "/api/v1/cart/add", customer, gin.H{"productId": product.ID}, &cart)
	app.expect(http.StatusOK, http.MethodPost, "/api/v1/cart/add", customer, gin.H{"productId": product.ID, "quantity": 2}, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, "37.5", cart.Subtotal.String())

	// --- Checkout ---
	var order models.Order
	env = app.expect(http.StatusCreated, http.MethodPost, "/api/v1/orders/checkout", customer, gin.H{
		"address":     gin.H{"fullName": "Cara", "phone": "+8801700000000", "addressLine1": "12 Lake Road", "city": "Dhaka"},
		"shippingFee": "5",
	}, &order)
	assert.True(t, env.Success)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "MS-"))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "42.5", order.FinalAmount.String())
	require.Len(t, order.Items, 1)

	env = app.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/orders/checkout", customer, gin.H{
		"address": gin.H{"fullName": "Cara", "phone": "1", "addressLine1": "x", "city": "y"},
	}, nil)
	assert.Equal(t, "Cart is empty", env.Message)

	var mine []models.Order
	app.expect(http.StatusOK, http.MethodGet, "/api/v1/orders/me", customer, nil, &mine)
	require.Len(t, mine, 1)

	// --- Seller fulfils ---
	var page models.OrderPage
	app.expect(http.StatusOK, http.MethodGet, "/api/v1/orders/seller/my-orders?status=PENDING", seller, nil, &page)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, 10, page.Pagination.Limit)

	itemPath := fmt.Sprintf("/api/v1/orders/seller/order-items/%d/status", order.Items[0].ID)
	env = app.expect(http.StatusBadRequest, http.MethodPatch, itemPath, seller, gin.H{"status": "DELIVERED"}, nil)
	assert.Equal(t, "Cannot change status from PENDING to DELIVERED", env.Message)

	var item models.OrderItem
	app.expect(http.StatusOK, http.MethodPatch, itemPath, seller, gin.H{"status": "PROCESSING"}, &item)
	assert.Equal(t, models.OrderStatusProcessing, item.Status)
	assert.Equal(t, sellerID, item.SellerID)

	// The single item moved, so the order rolled up with it.
	app.expect(http.StatusOK, http.MethodGet, fmt.Sprintf("/api/v1/orders/me/%d", order.ID), customer, nil, &order)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)

	// --- Notifications arrived through the in-process publisher ---
	var notes []models.Notification
	app.expect(http.StatusOK, http.MethodGet, "/api/v1/notifications", customer, nil, &notes)
	assert.Len(t, notes, 3)

	app.expect(http.StatusOK, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", notes[0].ID), customer, nil, nil)
	app.expect(http.StatusNotFound, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", notes[0].ID), seller, nil, nil)
}

func TestAccessRules(t *testing.T) {
	app := setupTestApp(t)
	customer, customerID := app.signup("Cara", "cara@example.com", models.RoleCustomer)
	seller, _ := app.signup("Alpha Pharmacy", "alpha@example.com", models.RoleSeller)
	admin := app.adminToken()

	app.expect(http.StatusUnauthorized, http.MethodGet, "/api/v1/cart/me", "", nil, nil)
	app.expect(http.StatusUnauthorized, http.MethodGet, "/api/v1/cart/me", "not-a-token", nil, nil)
	app.expect(http.StatusForbidden, http.MethodGet, "/api/v1/orders/seller/my-orders", customer, nil, nil)
	app.expect(http.StatusForbidden, http.MethodGet, "/api/v1/admin/stats/overview", seller, nil, nil)
	app.expect(http.StatusNotFound, http.MethodGet, "/api/v1/orders/me/999", customer, nil, nil)
	app.expect(http.StatusBadRequest, http.MethodGet, "/api/v1/orders/me/abc", customer, nil, nil)

	var me models.User
	app.expect(http.StatusOK, http.MethodGet, "/api/v1/auth/me", customer, nil, &me)
	assert.Equal(t, customerID, me.ID)

	// Nobody can sign up as an admin.
	app.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Mallory", "email": "m@example.com", "password": "long-enough", "role": models.RoleAdmin,
	}, nil)

	var sales []models.MonthlySales
	app.expect(http.StatusOK, http.MethodGet, "/api/v1/admin/stats/monthly-sales?year=2025", admin, nil, &sales)
	assert.Len(t, sales, 12)
	app.expect(http.StatusBadRequest, http.MethodGet, "/api/v1/admin/stats/monthly-sales?year=soon", admin, nil, nil)

	// A ban applies on the very next request.
	path := fmt.Sprintf("/api/v1/admin/users/%d/status", customerID)
	app.expect(http.StatusOK, http.MethodPatch, path, admin, gin.H{"status": models.UserStatusBanned}, nil)
	env := app.expect(http.StatusForbidden, http.MethodGet, "/api/v1/cart/me", customer, nil, nil)
	assert.Equal(t, "Your account has been banned", env.Message)

	app.expect(http.StatusOK, http.MethodPatch, path, admin, gin.H{"status": models.UserStatusActive}, nil)
	app.expect(http.StatusOK, http.MethodGet, "/api/v1/cart/me", customer, nil, nil)
}

func TestHealthMetricsAndCORS(t *testing.T) {
	app := setupTestApp(t)

	app.expect(http.StatusOK, http.MethodGet, "/api/v1/health", "", nil, nil)

	w, _ := app.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "medistore_http_requests_total")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/me", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
