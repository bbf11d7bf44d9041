package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// ErrNotConfigured is returned when no processor credentials were supplied.
var ErrNotConfigured = errors.New("payment processor is not configured")

const (
	eventSessionCompleted      = "checkout.session.completed"
	eventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	eventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	eventSessionExpired        = "checkout.session.expired"
)

// Currencies Stripe charges in whole units.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Expire(id string, params *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error)
}

// Options configures StripeGateway.
type Options struct {
	APIKey        string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
	Backends      *stripe.Backends

	sessions sessionAPI
}

// StripeGateway creates Stripe Checkout sessions and verifies Stripe webhooks.
type StripeGateway struct {
	sessions      sessionAPI
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
	logger        *slog.Logger
}

// NewStripeGateway validates options and builds the gateway. Without an API
// key the gateway still starts but refuses every checkout.
func NewStripeGateway(opts Options, logger *slog.Logger) (*StripeGateway, error) {
	for name, raw := range map[string]string{"success": opts.SuccessURL, "cancel": opts.CancelURL} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s url: %w", name, err)
		}
		if !parsed.IsAbs() {
			return nil, fmt.Errorf("%s url must be absolute", name)
		}
	}

	sessions := opts.sessions
	if sessions == nil && strings.TrimSpace(opts.APIKey) != "" {
		sessions = client.New(strings.TrimSpace(opts.APIKey), opts.Backends).CheckoutSessions
	}

	currency := strings.ToLower(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = "vnd"
	}

	return &StripeGateway{
		sessions:      sessions,
		webhookSecret: opts.WebhookSecret,
		currency:      currency,
		successURL:    opts.SuccessURL,
		cancelURL:     opts.CancelURL,
		logger:        logger,
	}, nil
}

// CreateCheckout opens a hosted checkout session for the order.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	if g.sessions == nil {
		return nil, domainErrors.ExternalFailure("payment processor unavailable", ErrNotConfigured)
	}

	currency := g.currency
	if c := strings.ToLower(strings.TrimSpace(req.Currency)); c != "" {
		currency = c
	}

	orderRef := strconv.FormatInt(req.OrderID, 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(orderRef),
		LineItems:         lineItems(req, currency),
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderRef)

	session, err := g.sessions.New(params)
	if err != nil {
		g.logger.Warn("stripe checkout session failed", slog.Int64("order_id", req.OrderID), slog.String("error", err.Error()))
		return nil, domainErrors.ExternalFailure("payment processor rejected the checkout", err)
	}

	result := &model.CheckoutSession{ProviderRef: session.ID, URL: session.URL}
	if session.PaymentIntent != nil {
		result.LinkRef = session.PaymentIntent.ID
	}
	return result, nil
}

// ExpireCheckout closes an open session so its link stops accepting payments.
func (g *StripeGateway) ExpireCheckout(ctx context.Context, providerRef string) error {
	if g.sessions == nil {
		return domainErrors.ExternalFailure("payment processor unavailable", ErrNotConfigured)
	}
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := g.sessions.Expire(providerRef, params); err != nil {
		return domainErrors.ExternalFailure("payment processor refused to expire the checkout", err)
	}
	return nil
}

// lineItems itemizes the order only when the items add up to the charged
// total; a discounted order is sent as one line.
func lineItems(req model.CheckoutRequest, currency string) []*stripe.CheckoutSessionLineItemParams {
	total := minorUnits(req.Amount, currency)

	sum := decimal.Zero
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, line := range req.Lines {
		unit := minorUnits(line.UnitAmount, currency)
		sum = sum.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, lineItem(line.Name, unit.IntPart(), int64(line.Quantity), currency))
	}
	if len(items) > 0 && sum.Equal(total) {
		return items
	}

	name := req.Description
	if name == "" {
		name = "Order #" + strconv.FormatInt(req.OrderID, 10)
	}
	return []*stripe.CheckoutSessionLineItemParams{lineItem(name, total.IntPart(), 1, currency)}
}

func lineItem(name string, unitAmount, quantity int64, currency string) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(quantity),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(unitAmount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

func minorUnits(amount decimal.Decimal, currency string) decimal.Decimal {
	if zeroDecimalCurrencies[currency] {
		return amount.Round(0)
	}
	return amount.Shift(2).Round(0)
}

// ParseCallback verifies the Stripe-Signature header and maps checkout
// events onto payment outcomes. Events without a payment meaning come back
// with an empty Outcome.
func (g *StripeGateway) ParseCallback(payload []byte, signature string) (*model.PaymentCallback, error) {
	if g.webhookSecret == "" {
		return nil, domainErrors.Unverified(ErrNotConfigured)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, domainErrors.Unverified(err)
	}

	callback := &model.PaymentCallback{
		EventID:   event.ID,
		EventType: string(event.Type),
		Signature: signature,
	}

	var outcome model.PaymentStatus
	switch string(event.Type) {
	case eventSessionCompleted:
		outcome = model.PaymentStatusSuccess
	case eventAsyncPaymentSucceeded:
		outcome = model.PaymentStatusSuccess
	case eventAsyncPaymentFailed:
		outcome = model.PaymentStatusFailed
	case eventSessionExpired:
		outcome = model.PaymentStatusCancelled
	default:
		return callback, nil
	}

	if event.Data == nil {
		return nil, domainErrors.Unverified(errors.New("event without data"))
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, domainErrors.Unverified(fmt.Errorf("decode checkout session: %w", err))
	}

	// A completed session with a delayed payment method settles later
	// through async_payment_succeeded or async_payment_failed.
	if string(event.Type) == eventSessionCompleted && session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		g.logger.Info("checkout completed without payment", slog.String("session", session.ID), slog.String("payment_status", string(session.PaymentStatus)))
		return callback, nil
	}

	callback.Outcome = outcome
	callback.ProviderRef = session.ID
	if id, err := strconv.ParseInt(session.ClientReferenceID, 10, 64); err == nil {
		callback.OrderID = id
	}
	return callback, nil
}
