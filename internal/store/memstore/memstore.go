// Package memstore is an in-memory service.Repository. It backs the tests
// and STORE_DRIVER=memory for running the API without MySQL.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
	"github.com/shopspring/decimal"
)

type state struct {
	seq        int64
	users      map[int64]models.User
	products   map[int64]models.Product
	carts      map[int64]models.Cart
	cartItems  map[int64]models.CartItem
	addresses  map[int64]models.OrderAddress
	orders     map[int64]models.Order
	orderItems map[int64]models.OrderItem
	notes      map[int64]models.Notification
}

func newState() state {
	return state{
		users:      map[int64]models.User{},
		products:   map[int64]models.Product{},
		carts:      map[int64]models.Cart{},
		cartItems:  map[int64]models.CartItem{},
		addresses:  map[int64]models.OrderAddress{},
		orders:     map[int64]models.Order{},
		orderItems: map[int64]models.OrderItem{},
		notes:      map[int64]models.Notification{},
	}
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s state) clone() state {
	return state{
		seq:        s.seq,
		users:      cloneMap(s.users),
		products:   cloneMap(s.products),
		carts:      cloneMap(s.carts),
		cartItems:  cloneMap(s.cartItems),
		addresses:  cloneMap(s.addresses),
		orders:     cloneMap(s.orders),
		orderItems: cloneMap(s.orderItems),
		notes:      cloneMap(s.notes),
	}
}

// Store keeps every table in maps behind one mutex. A transaction holds the
// mutex for its whole run and restores a snapshot when it fails.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
	now  func() time.Time
}

var _ service.Repository = (*Store)(nil)

func New() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, st: &st, now: time.Now}
}

// SetClock replaces the time source used for created/updated stamps.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextID() int64 {
	s.st.seq++
	return s.st.seq
}

func (s *Store) WithTx(ctx context.Context, fn func(tx service.Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &Store{mu: s.mu, st: s.st, inTx: true, now: s.now}
	err := fn(tx)
	if err == nil {
		// A cancelled context aborts the commit, as it does for database/sql.
		err = ctx.Err()
	}
	if err != nil {
		*s.st = snapshot
		return err
	}
	return nil
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	defer s.lock()()
	for _, existing := range s.st.users {
		if existing.Email == u.Email {
			return service.ErrConflict
		}
	}
	now := s.now()
	u.ID = s.nextID()
	u.CreatedAt, u.UpdatedAt = now, now
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, service.ErrNotFound
}

func (s *Store) UpdateUserStatus(ctx context.Context, id int64, status string) error {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return service.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = s.now()
	s.st.users[id] = u
	return nil
}

// --- Products ---

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	defer s.lock()()
	for _, existing := range s.st.products {
		if existing.Slug == p.Slug {
			return service.ErrConflict
		}
	}
	now := s.now()
	p.ID = s.nextID()
	p.CreatedAt, p.UpdatedAt = now, now
	s.st.products[p.ID] = *p
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	defer s.lock()()
	p, ok := s.st.products[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &p, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	defer s.lock()()
	for _, p := range s.st.products {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	defer s.lock()()
	var out []models.Product
	for _, p := range s.st.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	defer s.lock()()
	if _, ok := s.st.products[p.ID]; !ok {
		return service.ErrNotFound
	}
	p.UpdatedAt = s.now()
	s.st.products[p.ID] = *p
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	defer s.lock()()
	if _, ok := s.st.products[id]; !ok {
		return service.ErrNotFound
	}
	for _, it := range s.st.orderItems {
		if it.ProductID == id {
			return service.ErrConflict
		}
	}
	for itemID, it := range s.st.cartItems {
		if it.ProductID == id {
			delete(s.st.cartItems, itemID)
		}
	}
	delete(s.st.products, id)
	return nil
}

// --- Carts ---

func (s *Store) GetCartByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	defer s.lock()()
	for _, c := range s.st.carts {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, service.ErrNotFound
}

// LockCartByUser is GetCartByUser: inside WithTx the store mutex is already held.
func (s *Store) LockCartByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	return s.GetCartByUser(ctx, userID)
}

func (s *Store) CreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	defer s.lock()()
	for _, c := range s.st.carts {
		if c.UserID == userID {
			return nil, service.ErrConflict
		}
	}
	now := s.now()
	c := models.Cart{ID: s.nextID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	s.st.carts[c.ID] = c
	return &c, nil
}

func (s *Store) ListCartLines(ctx context.Context, cartID int64) ([]models.CartLine, error) {
	defer s.lock()()
	var out []models.CartLine
	for _, it := range s.st.cartItems {
		if it.CartID != cartID {
			continue
		}
		p, ok := s.st.products[it.ProductID]
		if !ok {
			continue
		}
		out = append(out, models.CartLine{CartItem: it, Product: p})
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}

func (s *Store) UpsertCartItem(ctx context.Context, cartID, productID int64, qty int) error {
	defer s.lock()()
	now := s.now()
	for id, it := range s.st.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity += qty
			it.UpdatedAt = now
			s.st.cartItems[id] = it
			return nil
		}
	}
	it := models.CartItem{ID: s.nextID(), CartID: cartID, ProductID: productID, Quantity: qty, CreatedAt: now, UpdatedAt: now}
	s.st.cartItems[it.ID] = it
	return nil
}

func (s *Store) GetCartItem(ctx context.Context, itemID int64) (*models.CartItem, error) {
	defer s.lock()()
	it, ok := s.st.cartItems[itemID]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &it, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, itemID int64, qty int) error {
	defer s.lock()()
	it, ok := s.st.cartItems[itemID]
	if !ok {
		return service.ErrNotFound
	}
	it.Quantity = qty
	it.UpdatedAt = s.now()
	s.st.cartItems[itemID] = it
	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, itemID int64) error {
	defer s.lock()()
	if _, ok := s.st.cartItems[itemID]; !ok {
		return service.ErrNotFound
	}
	delete(s.st.cartItems, itemID)
	return nil
}

func (s *Store) ClearCartItems(ctx context.Context, cartID int64) (service.CartCleared, error) {
	defer s.lock()()
	var out service.CartCleared
	for id, it := range s.st.cartItems {
		if it.CartID == cartID {
			delete(s.st.cartItems, id)
			out.Lines++
			out.Units += int64(it.Quantity)
		}
	}
	return out, nil
}

// --- Orders ---

func (s *Store) CreateOrderAddress(ctx context.Context, a *models.OrderAddress) error {
	defer s.lock()()
	a.ID = s.nextID()
	a.CreatedAt = s.now()
	s.st.addresses[a.ID] = *a
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	defer s.lock()()
	now := s.now()
	o.ID = s.nextID()
	o.CreatedAt, o.UpdatedAt = now, now
	row := *o
	row.ShippingAddress, row.Items = nil, nil
	s.st.orders[o.ID] = row
	return nil
}

func (s *Store) CreateOrderItems(ctx context.Context, orderID int64, items []models.OrderItem) error {
	defer s.lock()()
	if _, ok := s.st.orders[orderID]; !ok {
		return service.ErrConflict
	}
	now := s.now()
	for i := range items {
		items[i].ID = s.nextID()
		items[i].OrderID = orderID
		items[i].CreatedAt, items[i].UpdatedAt = now, now
		s.st.orderItems[items[i].ID] = items[i]
	}
	return nil
}

// withJoins attaches the address and items. Callers hold the lock.
func (s *Store) withJoins(o models.Order) models.Order {
	if a, ok := s.st.addresses[o.ShippingAddressID]; ok {
		o.ShippingAddress = &a
	}
	o.Items = s.itemsOf(o.ID)
	return o
}

func (s *Store) itemsOf(orderID int64) []models.OrderItem {
	items := []models.OrderItem{}
	for _, it := range s.st.orderItems {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	defer s.lock()()
	o, ok := s.st.orders[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	o = s.withJoins(o)
	return &o, nil
}

func (s *Store) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	defer s.lock()()
	o, ok := s.st.orders[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &o, nil
}

func (s *Store) sortedOrders(keep func(models.Order) bool) []models.Order {
	var out []models.Order
	for _, o := range s.st.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	defer s.lock()()
	orders := s.sortedOrders(func(o models.Order) bool { return o.UserID == userID })
	for i := range orders {
		orders[i] = s.withJoins(orders[i])
	}
	return orders, nil
}

func (s *Store) ListOrdersForSeller(ctx context.Context, f service.SellerOrderFilter) ([]models.Order, int, error) {
	defer s.lock()()
	orders := s.sortedOrders(func(o models.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if f.SellerID == 0 {
			return true
		}
		for _, it := range s.st.orderItems {
			if it.OrderID == o.ID && it.SellerID == f.SellerID {
				return true
			}
		}
		return false
	})

	total := len(orders)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	page := orders[start:end]
	for i := range page {
		page[i] = s.withJoins(page[i])
	}
	return page, total, nil
}

func (s *Store) ListStalePendingOrders(ctx context.Context, createdBefore time.Time) ([]int64, error) {
	defer s.lock()()
	var ids []int64
	for _, o := range s.st.orders {
		if o.Status == models.OrderStatusPending && o.CreatedAt.Before(createdBefore) {
			ids = append(ids, o.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) GetOrderItem(ctx context.Context, id int64) (*models.OrderItem, error) {
	defer s.lock()()
	it, ok := s.st.orderItems[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &it, nil
}

func (s *Store) LockOrderItem(ctx context.Context, id int64) (*models.OrderItem, error) {
	return s.GetOrderItem(ctx, id)
}

func (s *Store) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	defer s.lock()()
	return s.itemsOf(orderID), nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error {
	defer s.lock()()
	o, ok := s.st.orders[id]
	if !ok {
		return service.ErrNotFound
	}
	o.Status, o.UpdatedAt = status, at
	s.st.orders[id] = o
	return nil
}

func (s *Store) UpdateOrderItemStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error {
	defer s.lock()()
	it, ok := s.st.orderItems[id]
	if !ok {
		return service.ErrNotFound
	}
	it.Status, it.UpdatedAt = status, at
	s.st.orderItems[id] = it
	return nil
}

// --- Stats ---

func (s *Store) OverviewStats(ctx context.Context) (*models.OverviewStats, error) {
	defer s.lock()()
	stats := &models.OverviewStats{
		TotalUsers:    len(s.st.users),
		TotalProducts: len(s.st.products),
		TotalOrders:   len(s.st.orders),
		TotalRevenue:  decimal.Zero,
	}
	for _, u := range s.st.users {
		if u.Role == models.RoleSeller {
			stats.TotalSellers++
		}
	}
	for _, o := range s.st.orders {
		if o.Status == models.OrderStatusDelivered {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.FinalAmount)
		}
	}
	return stats, nil
}

func (s *Store) MonthlySales(ctx context.Context, year int) ([]models.MonthlySales, error) {
	defer s.lock()()
	byMonth := map[int]*models.MonthlySales{}
	for _, o := range s.st.orders {
		if o.Status != models.OrderStatusDelivered || o.CreatedAt.Year() != year {
			continue
		}
		m := int(o.CreatedAt.Month())
		if byMonth[m] == nil {
			byMonth[m] = &models.MonthlySales{Month: m, Revenue: decimal.Zero}
		}
		byMonth[m].Orders++
		byMonth[m].Revenue = byMonth[m].Revenue.Add(o.FinalAmount)
	}

	out := make([]models.MonthlySales, 0, len(byMonth))
	for _, ms := range byMonth {
		out = append(out, *ms)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *Store) SellerStats(ctx context.Context, sellerID int64) (*models.SellerStats, error) {
	defer s.lock()()
	stats := &models.SellerStats{
		ItemsByStatus: map[models.OrderStatus]int{},
		Revenue:       decimal.Zero,
	}
	for _, p := range s.st.products {
		if p.SellerID != sellerID {
			continue
		}
		if p.Stock > 0 {
			stats.LiveProducts++
		} else {
			stats.OutOfStock++
		}
	}
	for _, it := range s.st.orderItems {
		if it.SellerID != sellerID {
			continue
		}
		stats.ItemsByStatus[it.Status]++
		if it.Status == models.OrderStatusDelivered {
			stats.Revenue = stats.Revenue.Add(it.Subtotal)
		}
	}
	return stats, nil
}

// --- Notifications ---

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	defer s.lock()()
	if _, ok := s.st.users[n.UserID]; !ok {
		return service.ErrConflict
	}
	n.ID = s.nextID()
	n.CreatedAt = s.now()
	s.st.notes[n.ID] = *n
	return nil
}

func (s *Store) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	defer s.lock()()
	n, ok := s.st.notes[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	defer s.lock()()
	out := []models.Notification{}
	for _, n := range s.st.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsRead != out[j].IsRead {
			return !out[i].IsRead
		}
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	defer s.lock()()
	n, ok := s.st.notes[id]
	if !ok {
		return service.ErrNotFound
	}
	n.IsRead = true
	s.st.notes[id] = n
	return nil
}

// newer orders rows newest first, breaking timestamp ties by id.
func newer(at time.Time, id int64, otherAt time.Time, otherID int64) bool {
	if !at.Equal(otherAt) {
		return at.After(otherAt)
	}
	return id > otherID
}
