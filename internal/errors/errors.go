// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError means the request was malformed or incomplete.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func NewCampaignNotFound(id string) error {
	return &NotFoundError{Entity: "Campaign", ID: id}
}

// IdentityNotFoundError means the identity provider has no such user.
type IdentityNotFoundError struct {
	UserID string
}

func (e *IdentityNotFoundError) Error() string {
	return "User not found"
}

// IdentityProviderError wraps any other identity provider failure.
type IdentityProviderError struct {
	Cause error
}

func (e *IdentityProviderError) Error() string {
	return fmt.Sprintf("identity provider: %v", e.Cause)
}

func (e *IdentityProviderError) Unwrap() error { return e.Cause }

// RateLimitError means the advocate already contacted this campaign today.
type RateLimitError struct {
	CampaignID string
	AdvocateID string
}

func (e *RateLimitError) Error() string {
	return "Limit of 1 outreach email per advocate per day per campaign"
}

type CampaignInactiveError struct {
	CampaignID string
}

func (e *CampaignInactiveError) Error() string {
	return "Campaign is not active"
}

// DeliveryFailedError means the mail provider rejected or failed the send.
type DeliveryFailedError struct {
	Cause error
}

func (e *DeliveryFailedError) Error() string {
	return "Failed to send email"
}

func (e *DeliveryFailedError) Unwrap() error { return e.Cause }

type SignatureVerificationError struct {
	Cause error
}

func (e *SignatureVerificationError) Error() string {
	return fmt.Sprintf("Webhook Error: %v", e.Cause)
}

func (e *SignatureVerificationError) Unwrap() error { return e.Cause }

type UnsupportedPaymentTypeError struct {
	PaymentType string
}

func (e *UnsupportedPaymentTypeError) Error() string {
	return "Invalid payment type"
}

// StatusCode maps an error to the HTTP status the API reports for it.
func StatusCode(err error) int {
	var (
		validation  *ValidationError
		notFound    *NotFoundError
		identity    *IdentityNotFoundError
		rateLimit   *RateLimitError
		inactive    *CampaignInactiveError
		signature   *SignatureVerificationError
		paymentType *UnsupportedPaymentTypeError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &signature), errors.As(err, &paymentType),
		errors.As(err, &rateLimit), errors.As(err, &inactive):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &identity):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Public splits an error into the message shown to clients and, for server
// side failures, the underlying detail.
func Public(err error) (message, detail string) {
	if StatusCode(err) < http.StatusInternalServerError {
		return err.Error(), ""
	}
	var delivery *DeliveryFailedError
	if errors.As(err, &delivery) {
		if delivery.Cause != nil {
			return delivery.Error(), delivery.Cause.Error()
		}
		return delivery.Error(), ""
	}
	var provider *IdentityProviderError
	if errors.As(err, &provider) && provider.Cause != nil {
		return "Internal server error", provider.Cause.Error()
	}
	return "Internal server error", err.Error()
}
