package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/storage/memory"
)

const (
	customerID  int64 = 1
	strangerID  int64 = 2
	cookID      int64 = 50
	otherCookID int64 = 51
	adminID     int64 = 99

	burgerID  int64 = 10
	saladID   int64 = 11
	retiredID int64 = 12

	validSignature = "valid"
)

var (
	customer  = model.Principal{UserID: customerID, Roles: []model.Role{model.RoleUser}}
	stranger  = model.Principal{UserID: strangerID, Roles: []model.Role{model.RoleUser}}
	cook      = model.Principal{UserID: cookID, Roles: []model.Role{model.RoleKitchen}}
	otherCook = model.Principal{UserID: otherCookID, Roles: []model.Role{model.RoleKitchen}}
	admin     = model.Principal{UserID: adminID, Roles: []model.Role{model.RoleAdmin}}

	homeAddress = model.ShippingAddress{Phone: "+84900000001", AddressLine: "1 Main St", City: "Hanoi"}
)

func ptr[T any](v T) *T { return &v }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "expected %s, got %s", want, got)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) count(eventType model.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

type countingRecorder struct {
	mu        sync.Mutex
	placed    int
	changes   []statusChange
	callbacks map[string]int
	claims    map[bool]int
}

func (r *countingRecorder) OrderPlaced(model.PaymentMethod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed++
}

func (r *countingRecorder) StatusChanged(from, to model.OrderStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, statusChange{from: from, to: to})
}

func (r *countingRecorder) PaymentCallback(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.callbacks == nil {
		r.callbacks = make(map[string]int)
	}
	r.callbacks[outcome]++
}

func (r *countingRecorder) ItemClaim(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claims == nil {
		r.claims = make(map[bool]int)
	}
	r.claims[success]++
}

func (r *countingRecorder) transitions(to model.OrderStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.changes {
		if c.to == to {
			n++
		}
	}
	return n
}

// fakeGateway accepts JSON-encoded callbacks signed with validSignature.
type fakeGateway struct {
	mu        sync.Mutex
	requests  []model.CheckoutRequest
	createErr error
	expireErr error
	expired   []string
	next      int
}

func (g *fakeGateway) ExpireCheckout(_ context.Context, providerRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expireErr != nil {
		return g.expireErr
	}
	g.expired = append(g.expired, providerRef)
	return nil
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.next++
	g.requests = append(g.requests, req)
	return &model.CheckoutSession{
		ProviderRef: fmt.Sprintf("cs_%d", g.next),
		LinkRef:     fmt.Sprintf("pi_%d", g.next),
		URL:         fmt.Sprintf("https://pay.example/cs_%d", g.next),
	}, nil
}

func (g *fakeGateway) ParseCallback(payload []byte, signature string) (*model.PaymentCallback, error) {
	if signature != validSignature {
		return nil, domainErrors.Unverified(errors.New("signature mismatch"))
	}
	var cb model.PaymentCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, domainErrors.Unverified(err)
	}
	return &cb, nil
}

func callbackPayload(t *testing.T, cb model.PaymentCallback) []byte {
	t.Helper()
	raw, err := json.Marshal(cb)
	require.NoError(t, err)
	return raw
}

type stubMailer struct {
	sent chan model.Order
	err  error
}

func (m *stubMailer) SendOrderConfirmation(_ context.Context, _ model.User, order model.Order) error {
	m.sent <- order
	return m.err
}

type fixture struct {
	store      *memory.Store
	publisher  *recordingPublisher
	metrics    *countingRecorder
	gateway    *fakeGateway
	loyalty    *LoyaltyPolicy
	machine    *StatusMachine
	discounts  *DiscountEvaluator
	shipping   *ShippingUseCase
	orders     *OrderUseCase
	kitchen    *KitchenUseCase
	payments   *PaymentUseCase
	promotions *PromotionUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithMailer(t, nil)
}

func newFixtureWithMailer(t *testing.T, mailer OrderMailer) *fixture {
	t.Helper()
	logger := discardLogger()
	store := memory.New()
	f := &fixture{
		store:     store,
		publisher: &recordingPublisher{},
		metrics:   &countingRecorder{},
		gateway:   &fakeGateway{},
		loyalty:   NewLoyaltyPolicy(nil, DefaultPointsPerCurrencyUnit),
	}
	f.machine = NewStatusMachine(store, f.loyalty, logger)
	f.discounts = NewDiscountEvaluator(store)
	f.shipping = NewShippingUseCase(store)
	f.orders = NewOrderUseCase(OrderParams{
		Store:     store,
		Machine:   f.machine,
		Discounts: f.discounts,
		Loyalty:   f.loyalty,
		Shipping:  f.shipping,
		Logger:    logger,
		Publisher: f.publisher,
		Mailer:    mailer,
		Metrics:   f.metrics,
	})
	f.kitchen = NewKitchenUseCase(KitchenParams{
		Store:     store,
		Machine:   f.machine,
		Logger:    logger,
		Publisher: f.publisher,
		Metrics:   f.metrics,
	})
	f.payments = NewPaymentUseCase(PaymentParams{
		Store:     store,
		Machine:   f.machine,
		Gateway:   f.gateway,
		Logger:    logger,
		Publisher: f.publisher,
		Metrics:   f.metrics,
	})
	f.promotions = NewPromotionUseCase(store, f.discounts)

	store.PutUser(model.User{ID: customerID, Username: "alice"})
	store.PutUser(model.User{ID: strangerID, Username: "bob"})
	store.PutProduct(model.Product{ID: burgerID, Name: "Burger", Price: money("100"), Stock: 5, Active: true, CategoryID: ptr(int64(1))})
	store.PutProduct(model.Product{ID: saladID, Name: "Salad", Price: money("50"), Stock: 10, Active: true, CategoryID: ptr(int64(2))})
	store.PutProduct(model.Product{ID: retiredID, Name: "Retired", Price: money("10"), Stock: 10, Active: false})
	return f
}

func (f *fixture) place(t *testing.T, cmd PlaceOrderCommand) *model.Order {
	t.Helper()
	if cmd.UserID == 0 {
		cmd.UserID = customerID
	}
	if cmd.Shipping.IsZero() {
		cmd.Shipping = homeAddress
	}
	order, err := f.orders.Place(context.Background(), cmd)
	require.NoError(t, err)
	return order
}

// confirmedOrder stores an order the kitchen can work on.
func (f *fixture) confirmedOrder(t *testing.T) model.Order {
	t.Helper()
	return f.store.PutOrder(model.Order{
		UserID:        customerID,
		Status:        model.OrderStatusConfirmed,
		PaymentMethod: model.PaymentMethodCOD,
		Subtotal:      money("250"),
		Total:         money("250"),
		Items: []model.OrderItem{
			{ProductID: burgerID, ProductName: "Burger", Quantity: 2, UnitPrice: money("100"), Status: model.ItemStatusPending},
			{ProductID: saladID, ProductName: "Salad", Quantity: 1, UnitPrice: money("50"), Status: model.ItemStatusPending},
		},
	})
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	typed, ok := domainErrors.As(err)
	require.Truef(t, ok, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code)
}
