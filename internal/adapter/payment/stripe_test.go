package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

const testSecret = "whsec_test"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSessions struct {
	params  []*stripe.CheckoutSessionParams
	err     error
	expired []string
}

func (f *fakeSessions) Expire(id string, _ *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.expired = append(f.expired, id)
	return &stripe.CheckoutSession{ID: id}, nil
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{
		ID:            "cs_test_1",
		URL:           "https://checkout.stripe.com/c/pay/cs_test_1",
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
	}, nil
}

func newTestGateway(t *testing.T, sessions sessionAPI) *StripeGateway {
	t.Helper()
	g, err := NewStripeGateway(Options{
		WebhookSecret: testSecret,
		Currency:      "VND",
		SuccessURL:    "https://shop.example/success",
		CancelURL:     "https://shop.example/cancel",
		sessions:      sessions,
	}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func sign(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func sessionEvent(eventType, paymentStatus, reference string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_1",
  "object": "event",
  "type": %q,
  "data": {"object": {"id": "cs_test_1", "object": "checkout.session", "payment_status": %q, "client_reference_id": %q}}
}`, eventType, paymentStatus, reference))
}

func TestNewStripeGatewayValidatesURLs(t *testing.T) {
	if _, err := NewStripeGateway(Options{SuccessURL: "/relative", CancelURL: "https://x"}, testLogger()); err == nil {
		t.Fatalf("expected error for relative success url")
	}
	if _, err := NewStripeGateway(Options{SuccessURL: "https://x", CancelURL: "::bad"}, testLogger()); err == nil {
		t.Fatalf("expected error for invalid cancel url")
	}
}

func TestCreateCheckoutItemizesMatchingLines(t *testing.T) {
	sessions := &fakeSessions{}
	g := newTestGateway(t, sessions)

	result, err := g.CreateCheckout(context.Background(), model.CheckoutRequest{
		OrderID: 42,
		Amount:  decimal.NewFromInt(250),
		Lines: []model.CheckoutLine{
			{Name: "Burger", Quantity: 2, UnitAmount: decimal.NewFromInt(100)},
			{Name: "Salad", Quantity: 1, UnitAmount: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProviderRef != "cs_test_1" || result.LinkRef != "pi_1" || result.URL == "" {
		t.Fatalf("unexpected session %+v", result)
	}

	params := sessions.params[0]
	if *params.ClientReferenceID != "42" {
		t.Errorf("expected order reference 42, got %s", *params.ClientReferenceID)
	}
	if *params.Mode != string(stripe.CheckoutSessionModePayment) {
		t.Errorf("unexpected mode %s", *params.Mode)
	}
	if params.Context == nil {
		t.Errorf("expected request context to be forwarded")
	}
	if len(params.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(params.LineItems))
	}
	first := params.LineItems[0]
	if *first.Quantity != 2 || *first.PriceData.UnitAmount != 100 || *first.PriceData.Currency != "vnd" {
		t.Errorf("unexpected first line %+v", first.PriceData)
	}
	if *first.PriceData.ProductData.Name != "Burger" {
		t.Errorf("unexpected line name %s", *first.PriceData.ProductData.Name)
	}
}

func TestCreateCheckoutCollapsesDiscountedOrder(t *testing.T) {
	sessions := &fakeSessions{}
	g := newTestGateway(t, sessions)

	_, err := g.CreateCheckout(context.Background(), model.CheckoutRequest{
		OrderID:     7,
		Amount:      decimal.RequireFromString("12.5"),
		Currency:    "usd",
		Description: "Order #7",
		Lines:       []model.CheckoutLine{{Name: "Burger", Quantity: 1, UnitAmount: decimal.NewFromInt(15)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := sessions.params[0].LineItems
	if len(items) != 1 {
		t.Fatalf("expected single line, got %d", len(items))
	}
	if *items[0].PriceData.UnitAmount != 1250 || *items[0].PriceData.Currency != "usd" {
		t.Errorf("unexpected amount %d %s", *items[0].PriceData.UnitAmount, *items[0].PriceData.Currency)
	}
	if *items[0].PriceData.ProductData.Name != "Order #7" {
		t.Errorf("unexpected name %s", *items[0].PriceData.ProductData.Name)
	}
}

func TestCreateCheckoutFailures(t *testing.T) {
	g := newTestGateway(t, &fakeSessions{err: errors.New("card_declined")})
	_, err := g.CreateCheckout(context.Background(), model.CheckoutRequest{OrderID: 1, Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, domainErrors.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}

	unconfigured, err := NewStripeGateway(Options{SuccessURL: "https://x", CancelURL: "https://y"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = unconfigured.CreateCheckout(context.Background(), model.CheckoutRequest{OrderID: 1, Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrNotConfigured) || !errors.Is(err, domainErrors.ErrExternal) {
		t.Fatalf("expected not configured error, got %v", err)
	}
	if _, err := unconfigured.ParseCallback([]byte("{}"), "t=1,v1=00"); !errors.Is(err, domainErrors.ErrUnverified) {
		t.Fatalf("expected unverified error, got %v", err)
	}
}

func TestExpireCheckout(t *testing.T) {
	sessions := &fakeSessions{}
	g := newTestGateway(t, sessions)
	if err := g.ExpireCheckout(context.Background(), "cs_old"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions.expired) != 1 || sessions.expired[0] != "cs_old" {
		t.Fatalf("expected cs_old to be expired, got %v", sessions.expired)
	}

	failing := newTestGateway(t, &fakeSessions{err: errors.New("session already complete")})
	if err := failing.ExpireCheckout(context.Background(), "cs_old"); !errors.Is(err, domainErrors.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}

	unconfigured, err := NewStripeGateway(Options{SuccessURL: "https://x", CancelURL: "https://y"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := unconfigured.ExpireCheckout(context.Background(), "cs_old"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func TestParseCallbackMapsEvents(t *testing.T) {
	g := newTestGateway(t, &fakeSessions{})

	cases := []struct {
		eventType     string
		paymentStatus string
		want          model.PaymentStatus
	}{
		{"checkout.session.completed", "paid", model.PaymentStatusSuccess},
		{"checkout.session.completed", "unpaid", ""},
		{"checkout.session.async_payment_succeeded", "paid", model.PaymentStatusSuccess},
		{"checkout.session.async_payment_failed", "unpaid", model.PaymentStatusFailed},
		{"checkout.session.expired", "unpaid", model.PaymentStatusCancelled},
		{"payment_intent.created", "", ""},
	}
	for _, tc := range cases {
		payload := sessionEvent(tc.eventType, tc.paymentStatus, "42")
		header := sign(payload, testSecret)
		callback, err := g.ParseCallback(payload, header)
		if err != nil {
			t.Fatalf("%s/%s: unexpected error: %v", tc.eventType, tc.paymentStatus, err)
		}
		if callback.Outcome != tc.want {
			t.Errorf("%s/%s: expected outcome %q, got %q", tc.eventType, tc.paymentStatus, tc.want, callback.Outcome)
		}
		if callback.EventType != tc.eventType || callback.EventID != "evt_1" || callback.Signature != header {
			t.Errorf("%s: unexpected callback %+v", tc.eventType, callback)
		}
		if tc.want != "" && (callback.ProviderRef != "cs_test_1" || callback.OrderID != 42) {
			t.Errorf("%s: unexpected correlation %+v", tc.eventType, callback)
		}
	}
}

func TestParseCallbackRejectsBadSignatures(t *testing.T) {
	g := newTestGateway(t, &fakeSessions{})
	payload := sessionEvent("checkout.session.completed", "paid", "42")

	for name, header := range map[string]string{
		"foreign secret": sign(payload, "whsec_other"),
		"missing":        "",
		"garbage":        "t=abc,v1=zz",
	} {
		if _, err := g.ParseCallback(payload, header); !errors.Is(err, domainErrors.ErrUnverified) {
			t.Errorf("%s: expected unverified error, got %v", name, err)
		}
	}

	header := sign(payload, testSecret)
	tampered := sessionEvent("checkout.session.completed", "paid", "43")
	if _, err := g.ParseCallback(tampered, header); !errors.Is(err, domainErrors.ErrUnverified) {
		t.Errorf("expected unverified error for tampered payload, got %v", err)
	}
}

func TestParseCallbackIgnoresForeignReference(t *testing.T) {
	g := newTestGateway(t, &fakeSessions{})
	payload := sessionEvent("checkout.session.expired", "unpaid", "not-a-number")
	callback, err := g.ParseCallback(payload, sign(payload, testSecret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if callback.OrderID != 0 || callback.ProviderRef != "cs_test_1" {
		t.Fatalf("unexpected callback %+v", callback)
	}
}
