// Package memory is an in-process repository.Store. Transactions are
// serialized by a single mutex and roll back by restoring a snapshot.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

type txKey struct{}

type state struct {
	users      map[int64]model.User
	products   map[int64]model.Product
	carts      map[int64][]model.CartItem
	orders     map[int64]model.Order
	promotions map[int64]model.Promotion
	payments   map[int64]model.Payment
	shipping   map[int64]model.ShippingInfo
	nextID     int64
}

func newState() state {
	return state{
		users:      make(map[int64]model.User),
		products:   make(map[int64]model.Product),
		carts:      make(map[int64][]model.CartItem),
		orders:     make(map[int64]model.Order),
		promotions: make(map[int64]model.Promotion),
		payments:   make(map[int64]model.Payment),
		shipping:   make(map[int64]model.ShippingInfo),
		nextID:     1000,
	}
}

func (s state) clone() state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]model.CartItem(nil), v...)
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range s.promotions {
		v.ProductIDs = append([]int64(nil), v.ProductIDs...)
		c.promotions[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.shipping {
		c.shipping[k] = v
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

func copyOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}

// Store keeps every table in memory.
type Store struct {
	mu sync.Mutex
	st state
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{st: newState()}
}

// WithinTransaction holds the store lock for the whole of fn.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if ctx.Value(txKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(&s.st)
}

func (s *Store) Users() repository.UserRepository           { return users{s} }
func (s *Store) Products() repository.ProductRepository     { return products{s} }
func (s *Store) Carts() repository.CartRepository           { return carts{s} }
func (s *Store) Orders() repository.OrderRepository         { return orders{s} }
func (s *Store) Promotions() repository.PromotionRepository { return promotions{s} }
func (s *Store) Payments() repository.PaymentRepository     { return payments{s} }
func (s *Store) Shipping() repository.ShippingRepository    { return shipping{s} }

// --- seeding and inspection ---

func (s *Store) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

func (s *Store) PutProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

func (s *Store) PutPromotion(p model.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.st.id()
	}
	s.st.promotions[p.ID] = p
}

func (s *Store) PutCartItem(item model.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.carts[item.UserID] = append(s.st.carts[item.UserID], item)
}

// PutOrder stores an order as is, assigning ids when missing.
func (s *Store) PutOrder(o model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.st.id()
	}
	for i := range o.Items {
		if o.Items[i].ID == 0 {
			o.Items[i].ID = s.st.id()
		}
		o.Items[i].OrderID = o.ID
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	o.UpdatedAt = o.CreatedAt
	s.st.orders[o.ID] = copyOrder(o)
	return copyOrder(o)
}

func (s *Store) PutPayment(p model.Payment) model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.st.id()
	}
	s.st.payments[p.ID] = p
	return p
}

func (s *Store) User(id int64) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.users[id]
}

func (s *Store) Product(id int64) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.products[id]
}

func (s *Store) Promotion(id int64) model.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.promotions[id]
}

func (s *Store) Order(id int64) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOrder(s.st.orders[id])
}

func (s *Store) CartItems(userID int64) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartItem(nil), s.st.carts[userID]...)
}

func (s *Store) PaymentForOrder(orderID int64) (model.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.st.payments {
		if p.OrderID == orderID {
			return p, true
		}
	}
	return model.Payment{}, false
}

// --- users ---

type users struct{ s *Store }

func (r users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var out *model.User
	err := r.s.do(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domainErrors.UserNotFound(id)
		}
		out = &u
		return nil
	})
	return out, err
}

func (r users) AddPoints(ctx context.Context, id int64, points int64) error {
	return r.s.do(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domainErrors.UserNotFound(id)
		}
		u.Points += points
		st.users[id] = u
		return nil
	})
}

// --- products and carts ---

type products struct{ s *Store }

func (r products) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	err := r.s.do(ctx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func (r products) DecrementStock(ctx context.Context, id int64, qty int) error {
	return r.s.do(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.Stock < qty {
			return domainErrors.OutOfStock(id)
		}
		p.Stock -= qty
		st.products[id] = p
		return nil
	})
}

func (r products) IncrementStock(ctx context.Context, id int64, qty int) error {
	return r.s.do(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domainErrors.ProductNotFound(id)
		}
		p.Stock += qty
		st.products[id] = p
		return nil
	})
}

type carts struct{ s *Store }

func (r carts) Clear(ctx context.Context, userID int64) error {
	return r.s.do(ctx, func(st *state) error {
		delete(st.carts, userID)
		return nil
	})
}

// --- orders ---

type orders struct{ s *Store }

func (r orders) Create(ctx context.Context, order *model.Order) error {
	return r.s.do(ctx, func(st *state) error {
		order.ID = st.id()
		order.CreatedAt = time.Now()
		order.UpdatedAt = order.CreatedAt
		for i := range order.Items {
			order.Items[i].ID = st.id()
			order.Items[i].OrderID = order.ID
			if order.Items[i].Status == "" {
				order.Items[i].Status = model.ItemStatusPending
			}
		}
		st.orders[order.ID] = copyOrder(*order)
		return nil
	})
}

func (r orders) get(ctx context.Context, id int64) (*model.Order, error) {
	var out *model.Order
	err := r.s.do(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domainErrors.OrderNotFound(id)
		}
		c := copyOrder(o)
		out = &c
		return nil
	})
	return out, err
}

func (r orders) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.get(ctx, id)
}

func (r orders) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.get(ctx, id)
}

func (r orders) filter(ctx context.Context, keep func(model.Order) bool, newestFirst bool) ([]model.Order, error) {
	var out []model.Order
	err := r.s.do(ctx, func(st *state) error {
		for _, o := range st.orders {
			if keep(o) {
				out = append(out, copyOrder(o))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt) != newestFirst
		}
		return (out[i].ID < out[j].ID) != newestFirst
	})
	return out, err
}

func (r orders) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.filter(ctx, func(o model.Order) bool { return o.UserID == userID }, true)
}

func (r orders) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	all, err := r.filter(ctx, func(model.Order) bool { return true }, true)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r orders) ListByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error) {
	return r.filter(ctx, func(o model.Order) bool {
		for _, s := range statuses {
			if o.Status == s {
				return true
			}
		}
		return false
	}, false)
}

func (r orders) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	return r.s.do(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domainErrors.OrderNotFound(id)
		}
		o.Status = status
		o.UpdatedAt = time.Now()
		st.orders[id] = o
		return nil
	})
}

func findItem(st *state, itemID int64) (model.Order, int, bool) {
	for _, o := range st.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				return o, i, true
			}
		}
	}
	return model.Order{}, 0, false
}

func (r orders) GetItem(ctx context.Context, itemID int64) (*model.OrderItem, error) {
	var out *model.OrderItem
	err := r.s.do(ctx, func(st *state) error {
		o, i, ok := findItem(st, itemID)
		if !ok {
			return domainErrors.OrderItemNotFound(itemID)
		}
		item := o.Items[i]
		out = &item
		return nil
	})
	return out, err
}

func (r orders) ClaimItem(ctx context.Context, itemID, chefID int64) (bool, error) {
	claimed := false
	err := r.s.do(ctx, func(st *state) error {
		o, i, ok := findItem(st, itemID)
		if !ok || o.Items[i].Status != model.ItemStatusPending || o.Items[i].ChefID != nil {
			return nil
		}
		o = copyOrder(o)
		chef := chefID
		o.Items[i].Status = model.ItemStatusCooking
		o.Items[i].ChefID = &chef
		st.orders[o.ID] = o
		claimed = true
		return nil
	})
	return claimed, err
}

func (r orders) UpdateItem(ctx context.Context, itemID int64, status model.ItemStatus, chefID *int64) error {
	return r.s.do(ctx, func(st *state) error {
		o, i, ok := findItem(st, itemID)
		if !ok {
			return domainErrors.OrderItemNotFound(itemID)
		}
		o = copyOrder(o)
		o.Items[i].Status = status
		o.Items[i].ChefID = nil
		if chefID != nil {
			chef := *chefID
			o.Items[i].ChefID = &chef
		}
		st.orders[o.ID] = o
		return nil
	})
}

func (r orders) updateItems(ctx context.Context, orderID int64, fn func(*model.OrderItem) bool) (int64, error) {
	var n int64
	err := r.s.do(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return nil
		}
		o = copyOrder(o)
		for i := range o.Items {
			if fn(&o.Items[i]) {
				n++
			}
		}
		st.orders[orderID] = o
		return nil
	})
	return n, err
}

func (r orders) ClaimPendingItems(ctx context.Context, orderID, chefID int64) (int64, error) {
	return r.updateItems(ctx, orderID, func(it *model.OrderItem) bool {
		if it.Status != model.ItemStatusPending || it.ChefID != nil {
			return false
		}
		chef := chefID
		it.Status = model.ItemStatusCooking
		it.ChefID = &chef
		return true
	})
}

func (r orders) FinishCookingItems(ctx context.Context, orderID int64) (int64, error) {
	return r.updateItems(ctx, orderID, func(it *model.OrderItem) bool {
		if it.Status != model.ItemStatusCooking {
			return false
		}
		it.Status = model.ItemStatusDone
		return true
	})
}

func (r orders) SelectStalePending(ctx context.Context, method model.PaymentMethod, before time.Time, limit int) ([]int64, error) {
	stale, err := r.filter(ctx, func(o model.Order) bool {
		return o.Status == model.OrderStatusPending && o.PaymentMethod == method && o.CreatedAt.Before(before)
	}, false)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, o := range stale {
		if len(ids) == limit {
			break
		}
		ids = append(ids, o.ID)
	}
	return ids, nil
}

// --- promotions ---

type promotions struct{ s *Store }

func codeTaken(st *state, code *string, self int64) bool {
	if code == nil {
		return false
	}
	for id, p := range st.promotions {
		if id != self && p.Code != nil && strings.EqualFold(*p.Code, *code) {
			return true
		}
	}
	return false
}

func (r promotions) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	var out *model.Promotion
	err := r.s.do(ctx, func(st *state) error {
		for _, p := range st.promotions {
			if p.Code != nil && strings.EqualFold(*p.Code, code) {
				out = &p
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return out, err
}

func (r promotions) GetByID(ctx context.Context, id int64) (*model.Promotion, error) {
	var out *model.Promotion
	err := r.s.do(ctx, func(st *state) error {
		p, ok := st.promotions[id]
		if !ok {
			return domainErrors.PromotionNotFound(id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r promotions) List(ctx context.Context) ([]model.Promotion, error) {
	var out []model.Promotion
	err := r.s.do(ctx, func(st *state) error {
		for _, p := range st.promotions {
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r promotions) Create(ctx context.Context, p *model.Promotion) error {
	return r.s.do(ctx, func(st *state) error {
		if codeTaken(st, p.Code, 0) {
			return domainErrors.ErrPromotionCodeTaken
		}
		p.ID = st.id()
		p.CreatedAt = time.Now()
		st.promotions[p.ID] = *p
		return nil
	})
}

func (r promotions) Update(ctx context.Context, p *model.Promotion) error {
	return r.s.do(ctx, func(st *state) error {
		existing, ok := st.promotions[p.ID]
		if !ok {
			return domainErrors.PromotionNotFound(p.ID)
		}
		if codeTaken(st, p.Code, p.ID) {
			return domainErrors.ErrPromotionCodeTaken
		}
		p.UsedCount = existing.UsedCount
		p.CreatedAt = existing.CreatedAt
		st.promotions[p.ID] = *p
		return nil
	})
}

func (r promotions) Delete(ctx context.Context, id int64) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.promotions[id]; !ok {
			return domainErrors.PromotionNotFound(id)
		}
		delete(st.promotions, id)
		return nil
	})
}

func (r promotions) IncrementUsage(ctx context.Context, id int64) error {
	return r.s.do(ctx, func(st *state) error {
		p, ok := st.promotions[id]
		if !ok {
			return domainErrors.PromotionNotFound(id)
		}
		p.UsedCount++
		st.promotions[id] = p
		return nil
	})
}

// --- payments ---

type payments struct{ s *Store }

func (r payments) find(ctx context.Context, match func(model.Payment) bool, missing error) (*model.Payment, error) {
	var out *model.Payment
	err := r.s.do(ctx, func(st *state) error {
		for _, p := range st.payments {
			if match(p) {
				out = &p
				return nil
			}
		}
		return missing
	})
	return out, err
}

func (r payments) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	return r.find(ctx, func(p model.Payment) bool { return p.OrderID == orderID }, domainErrors.PaymentNotFound(orderID))
}

func (r payments) GetByProviderRef(ctx context.Context, ref string) (*model.Payment, error) {
	return r.find(ctx, func(p model.Payment) bool { return p.ProviderRef == ref }, domainErrors.ErrNotFound)
}

func (r payments) Upsert(ctx context.Context, payment *model.Payment) error {
	return r.s.do(ctx, func(st *state) error {
		now := time.Now()
		for id, existing := range st.payments {
			if existing.OrderID != payment.OrderID {
				continue
			}
			if existing.Status != model.PaymentStatusPending {
				return domainErrors.ErrDuplicatePayment
			}
			existing.Amount = payment.Amount
			existing.ProviderRef = payment.ProviderRef
			existing.LinkRef = payment.LinkRef
			existing.CheckoutURL = payment.CheckoutURL
			existing.UpdatedAt = now
			st.payments[id] = existing
			*payment = existing
			return nil
		}
		payment.ID = st.id()
		payment.Status = model.PaymentStatusPending
		payment.CreatedAt = now
		payment.UpdatedAt = now
		st.payments[payment.ID] = *payment
		return nil
	})
}

func (r payments) Settle(ctx context.Context, id int64, status model.PaymentStatus, signature string) (bool, error) {
	settled := false
	err := r.s.do(ctx, func(st *state) error {
		p, ok := st.payments[id]
		if !ok || p.Status != model.PaymentStatusPending {
			return nil
		}
		p.Status = status
		p.Signature = signature
		p.UpdatedAt = time.Now()
		st.payments[id] = p
		settled = true
		return nil
	})
	return settled, err
}

// --- shipping ---

type shipping struct{ s *Store }

func (r shipping) Get(ctx context.Context, userID int64) (*model.ShippingInfo, error) {
	var out *model.ShippingInfo
	err := r.s.do(ctx, func(st *state) error {
		info, ok := st.shipping[userID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = &info
		return nil
	})
	return out, err
}

func (r shipping) Upsert(ctx context.Context, info *model.ShippingInfo) error {
	return r.s.do(ctx, func(st *state) error {
		info.UpdatedAt = time.Now()
		st.shipping[info.UserID] = *info
		return nil
	})
}
