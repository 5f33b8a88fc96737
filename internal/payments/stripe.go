// Package payments wires the Stripe client used for checkout sessions.
package payments

import (
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// NewCheckoutSessions returns a checkout session client bound to secretKey.
func NewCheckoutSessions(secretKey string) *session.Client {
	stripe.Key = secretKey
	return &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
}
