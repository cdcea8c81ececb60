package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
	"github.com/01moynul/medistore/internal/store/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (r *recordingPublisher) PublishOrderEvent(_ context.Context, ev models.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) all() []models.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.OrderEvent(nil), r.events...)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	ctx      context.Context
	store    *memstore.Store
	events   *recordingPublisher
	users    *service.UserService
	carts    *service.CartService
	orders   *service.OrderService
	products *service.ProductService
	stats    *service.StatsService
	notes    *service.NotificationService

	customer auth.Principal
	other    auth.Principal
	sellerA  auth.Principal
	sellerB  auth.Principal
	admin    auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, nil)
}

// newFixtureWithRepo lets a test wrap the memstore before the order
// service sees it.
func newFixtureWithRepo(t *testing.T, wrap func(service.Repository) service.Repository) *fixture {
	t.Helper()

	store := memstore.New()
	var repo service.Repository = store
	if wrap != nil {
		repo = wrap(store)
	}

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	f := &fixture{
		ctx:      context.Background(),
		store:    store,
		events:   &recordingPublisher{},
		users:    service.NewUserService(store, tokens),
		carts:    service.NewCartService(store),
		products: service.NewProductService(store),
		stats:    service.NewStatsService(store),
		notes:    service.NewNotificationService(store),
	}
	f.orders = service.NewOrderService(repo, f.events)

	f.customer = f.mustUser(t, "Cara Customer", "cara@example.com", models.RoleCustomer)
	f.other = f.mustUser(t, "Oscar Other", "oscar@example.com", models.RoleCustomer)
	f.sellerA = f.mustUser(t, "Alpha Pharmacy", "alpha@example.com", models.RoleSeller)
	f.sellerB = f.mustUser(t, "Beta Pharmacy", "beta@example.com", models.RoleSeller)
	f.admin = f.mustUser(t, "Ada Admin", "ada@example.com", models.RoleAdmin)
	return f
}

func (f *fixture) mustUser(t *testing.T, name, email string, role models.Role) auth.Principal {
	t.Helper()
	u := &models.User{Name: name, Email: email, PasswordHash: "x", Role: role, Status: models.UserStatusActive}
	require.NoError(t, f.store.CreateUser(f.ctx, u))
	return auth.Principal{UserID: u.ID, Role: role}
}

func (f *fixture) mustProduct(t *testing.T, seller auth.Principal, name, price string, discount ...string) *models.Product {
	t.Helper()
	in := service.ProductInput{Name: name, Price: decimal.RequireFromString(price), Stock: 10}
	if len(discount) > 0 {
		d := decimal.RequireFromString(discount[0])
		in.DiscountPrice = &d
	}
	p, err := f.products.CreateProduct(f.ctx, seller, in)
	require.NoError(t, err)
	return p
}

func (f *fixture) mustAdd(t *testing.T, p auth.Principal, productID int64, qty int) {
	t.Helper()
	_, err := f.carts.AddToCart(f.ctx, p, productID, qty)
	require.NoError(t, err)
}

func validAddress() service.AddressInput {
	return service.AddressInput{
		FullName:     "Cara Customer",
		Phone:        "+8801700000000",
		AddressLine1: "12 Lake Road",
		City:         "Dhaka",
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (f *fixture) mustCheckout(t *testing.T, p auth.Principal) *models.Order {
	t.Helper()
	order, err := f.orders.Checkout(f.ctx, p, service.CheckoutInput{Address: validAddress()})
	require.NoError(t, err)
	return order
}

// twoSellerOrder places one order holding an item from each seller.
func (f *fixture) twoSellerOrder(t *testing.T) *models.Order {
	t.Helper()
	a := f.mustProduct(t, f.sellerA, "Paracetamol 500mg", "10")
	b := f.mustProduct(t, f.sellerB, "Vitamin C 1000mg", "25")
	f.mustAdd(t, f.customer, a.ID, 1)
	f.mustAdd(t, f.customer, b.ID, 2)
	return f.mustCheckout(t, f.customer)
}

func itemOf(t *testing.T, o *models.Order, sellerID int64) models.OrderItem {
	t.Helper()
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			return it
		}
	}
	t.Fatalf("order %d has no item of seller %d", o.ID, sellerID)
	return models.OrderItem{}
}
