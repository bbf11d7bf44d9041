package payment

import (
	"testing"

	"github.com/polkiloo/gopherfood/internal/config"
)

func TestNewGatewayFromConfig(t *testing.T) {
	gateway, err := newGateway(gatewayParams{
		Config: &config.Config{
			StripeAPIKey:        "sk_test_123",
			StripeWebhookSecret: "whsec_123",
			Currency:            "usd",
			PaymentSuccessURL:   "https://shop.example/success",
			PaymentCancelURL:    "https://shop.example/cancel",
		},
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stripeGateway, ok := gateway.(*StripeGateway)
	if !ok {
		t.Fatalf("expected *StripeGateway, got %T", gateway)
	}
	if stripeGateway.sessions == nil || stripeGateway.currency != "usd" {
		t.Fatalf("unexpected gateway %+v", stripeGateway)
	}

	_, err = newGateway(gatewayParams{
		Config: &config.Config{PaymentSuccessURL: "nope", PaymentCancelURL: "https://x"},
		Logger: testLogger(),
	})
	if err == nil {
		t.Fatalf("expected error for relative url")
	}
}
