// internal/controller/payment_controller.go
package controller

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

const stripeSignatureHeader = "Stripe-Signature"

type PaymentController struct {
	BillingService *service.BillingService
	Logger         *zap.Logger
}

func (c *PaymentController) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(c.Logger)

	var in service.CheckoutInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, log, err)
		return
	}

	res, err := c.BillingService.CreateCheckoutSession(r.Context(), in)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Webhook verifies the raw body against the signature header before
// anything is decoded.
func (c *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(c.Logger)

	payload, err := readBody(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if err := c.BillingService.Reconcile(r.Context(), payload, r.Header.Get(stripeSignatureHeader)); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
