// README: Payment gateway backed by Stripe PaymentIntents.
package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeGateway creates one payment order per completed ride. The engine only
// records the returned order id; capture and webhooks are the gateway's side.
type StripeGateway struct {
	currency string
}

// NewStripeGateway configures the stripe client with the given API key.
func NewStripeGateway(apiKey, currency string) *StripeGateway {
	stripe.Key = apiKey
	if currency == "" {
		currency = "inr"
	}
	return &StripeGateway{currency: currency}
}

// CreateOrder opens a PaymentIntent for the fare, tagged with the ride receipt
// id, and returns the intent id. Amounts are converted to the smallest
// currency unit.
func (s *StripeGateway) CreateOrder(ctx context.Context, amount float64, receiptID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(s.currency),
	}
	params.AddMetadata("receipt_id", receiptID)
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}
