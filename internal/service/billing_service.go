package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/metrics"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository"
)

const (
	PaymentValidationFee        = "validation_fee"
	PaymentCampaignUnlimited    = "campaign_unlimited"
	PaymentEmailSend            = "email_send"
	PaymentCampaignReactivation = "campaign_reactivation"
	PaymentDonation             = "donation"

	// paymentCampaignSubscription tags checkout sessions that start an
	// unlimited-campaign subscription.
	paymentCampaignSubscription = "campaign_subscription"

	EventCheckoutCompleted       = "checkout.session.completed"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

// CheckoutSessions creates hosted checkout sessions.
type CheckoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type BillingService struct {
	Sessions      CheckoutSessions
	WebhookSecret string
	FrontendURL   string
	AdvocateRepo  repository.AdvocateRepositoryInterface
	CampaignRepo  repository.CampaignRepositoryInterface
	ActionRepo    repository.CampaignActionRepositoryInterface
	Logger        *zap.Logger
	Now           func() time.Time
}

type CheckoutInput struct {
	PaymentType string         `json:"payment_type" validate:"required"`
	Amount      float64        `json:"amount" validate:"required"`
	Currency    string         `json:"currency"`
	UserID      string         `json:"user_id"`
	CampaignID  string         `json:"campaign_id"`
	AdvocateID  string         `json:"advocate_id"`
	Metadata    map[string]any `json:"metadata"`
}

type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type product struct {
	name        string
	description string
	unitAmount  int64
	recurring   bool
}

var catalog = map[string]product{
	PaymentValidationFee:        {name: "TogetherUnite Validation Fee", description: "Annual validation fee for Advocate/Organizer", unitAmount: 299},
	PaymentCampaignUnlimited:    {name: "Campaign Unlimited Subscription", description: "Monthly subscription for unlimited campaign", unitAmount: 2999, recurring: true},
	PaymentEmailSend:            {name: "Campaign Email Send", description: "Pay-per-send email outreach", unitAmount: 299},
	PaymentCampaignReactivation: {name: "Campaign Reactivation", description: "Reactivation fee for archived campaign", unitAmount: 2999},
	PaymentDonation:             {name: "Campaign Donation", description: "Donation to campaign organizer"},
}

// DonationFee is the platform fee in cents: 4.5% plus 50 cents.
func DonationFee(cents int64) int64 {
	return int64(math.Round(float64(cents)*0.045 + 50))
}

func (s *BillingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// BuildCheckoutParams prices the payment and tags the session with the
// metadata the webhook needs to apply it.
func (s *BillingService) BuildCheckoutParams(in CheckoutInput) (*stripe.CheckoutSessionParams, error) {
	if err := validateStruct(in); err != nil {
		return nil, appErrors.NewValidation("Missing required fields")
	}
	p, ok := catalog[in.PaymentType]
	if !ok {
		return nil, &appErrors.UnsupportedPaymentTypeError{PaymentType: in.PaymentType}
	}
	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	unitAmount := p.unitAmount
	description := p.description
	metadata := map[string]string{}
	mode := stripe.CheckoutSessionModePayment

	switch in.PaymentType {
	case PaymentValidationFee:
		metadata["payment_type"] = PaymentValidationFee
		metadata["user_id"] = in.UserID
	case PaymentCampaignUnlimited:
		mode = stripe.CheckoutSessionModeSubscription
		metadata["payment_type"] = paymentCampaignSubscription
		metadata["subscription_type"] = PaymentCampaignUnlimited
		metadata["campaign_id"] = in.CampaignID
		metadata["user_id"] = in.UserID
	case PaymentEmailSend:
		metadata["payment_type"] = PaymentEmailSend
		metadata["campaign_id"] = in.CampaignID
		metadata["advocate_id"] = in.AdvocateID
	case PaymentCampaignReactivation:
		metadata["payment_type"] = PaymentCampaignReactivation
		metadata["campaign_id"] = in.CampaignID
		metadata["user_id"] = in.UserID
	case PaymentDonation:
		unitAmount = int64(math.Round(in.Amount * 100))
		if unitAmount <= 0 {
			return nil, appErrors.NewValidation("amount must be positive")
		}
		for k, v := range in.Metadata {
			metadata[k] = fmt.Sprint(v)
		}
		if d, ok := in.Metadata["description"].(string); ok && d != "" {
			description = d
		}
		metadata["payment_type"] = PaymentDonation
		metadata["campaign_id"] = in.CampaignID
		metadata["advocate_id"] = in.AdvocateID
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(p.name),
			Description: stripe.String(description),
		},
		UnitAmount: stripe.Int64(unitAmount),
	}
	if p.recurring {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
		}
	}

	base := strings.TrimRight(s.FrontendURL, "/")
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{PriceData: priceData, Quantity: stripe.Int64(1)},
		},
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(base + "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(base + "/payment/cancel"),
	}
	params.Metadata = metadata

	switch in.PaymentType {
	case PaymentCampaignUnlimited:
		// Invoices only carry subscription metadata, so tag the subscription too.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"subscription_type": PaymentCampaignUnlimited,
				"campaign_id":       in.CampaignID,
				"user_id":           in.UserID,
			},
		}
	case PaymentDonation:
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(DonationFee(unitAmount)),
		}
	}
	return params, nil
}

func (s *BillingService) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	params, err := s.BuildCheckoutParams(in)
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	sess, err := s.Sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	logger.OrNop(s.Logger).Info("checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("payment_type", in.PaymentType),
	)
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// webhookObject holds the parts of checkout sessions and invoices used here.
type webhookObject struct {
	ID                  string            `json:"id"`
	Metadata            map[string]string `json:"metadata"`
	SubscriptionDetails *struct {
		Metadata map[string]string `json:"metadata"`
	} `json:"subscription_details"`
}

// tags merges subscription metadata with the object's own metadata, the
// latter taking precedence.
func (o webhookObject) tags() map[string]string {
	out := map[string]string{}
	if o.SubscriptionDetails != nil {
		for k, v := range o.SubscriptionDetails.Metadata {
			out[k] = v
		}
	}
	for k, v := range o.Metadata {
		out[k] = v
	}
	return out
}

// Reconcile verifies a webhook delivery and applies it. Events that need no
// action are acknowledged without error.
func (s *BillingService) Reconcile(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return &appErrors.SignatureVerificationError{Cause: err}
	}

	eventType := string(event.Type)
	metrics.WebhookEvents.WithLabelValues(eventType).Inc()
	log := logger.OrNop(s.Logger).With(zap.String("event_id", event.ID), zap.String("event_type", eventType))

	var obj webhookObject
	if event.Data != nil && len(event.Data.Raw) > 0 {
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return fmt.Errorf("decode %s payload: %w", eventType, err)
		}
	}
	tags := obj.tags()

	switch eventType {
	case EventCheckoutCompleted:
		return s.applyCheckout(ctx, log, tags)
	case EventInvoicePaymentSucceeded:
		if tags["subscription_type"] == PaymentCampaignUnlimited {
			return s.setCampaignStatus(ctx, log, tags["campaign_id"], model.CampaignStatusActive)
		}
	case EventInvoicePaymentFailed:
		if tags["subscription_type"] == PaymentCampaignUnlimited {
			return s.setCampaignStatus(ctx, log, tags["campaign_id"], model.CampaignStatusInactive)
		}
	default:
		log.Debug("webhook event ignored")
	}
	return nil
}

func (s *BillingService) applyCheckout(ctx context.Context, log *zap.Logger, tags map[string]string) error {
	switch tags["payment_type"] {
	case PaymentValidationFee:
		userID := tags["user_id"]
		if userID == "" {
			log.Warn("validation fee paid without user_id")
			return nil
		}
		n, err := s.AdvocateRepo.MarkValidated(ctx, userID, s.now().AddDate(1, 0, 0))
		if err != nil {
			return err
		}
		if n == 0 {
			log.Warn("validation fee paid for unknown advocate", zap.String("user_id", userID))
		}
		return nil

	case paymentCampaignSubscription:
		return s.setCampaignStatus(ctx, log, tags["campaign_id"], model.CampaignStatusActive)

	case PaymentCampaignReactivation:
		id := tags["campaign_id"]
		if !isUUID(id) {
			log.Warn("reactivation paid without a valid campaign_id", zap.String("campaign_id", id))
			return nil
		}
		n, err := s.CampaignRepo.Reactivate(ctx, id)
		if err != nil {
			return err
		}
		log.Info("campaign reactivated", zap.String("campaign_id", id), zap.Int64("rows", n))
		return nil

	case PaymentEmailSend:
		campaignID, advocateID := tags["campaign_id"], tags["advocate_id"]
		if !isUUID(campaignID) || !isUUID(advocateID) {
			log.Warn("email send paid without valid campaign_id and advocate_id",
				zap.String("campaign_id", campaignID),
				zap.String("advocate_id", advocateID),
			)
			return nil
		}
		inserted, err := s.ActionRepo.RecordPaidSend(ctx, campaignID, advocateID, s.now())
		if err != nil {
			return err
		}
		log.Info("paid email send recorded",
			zap.String("campaign_id", campaignID),
			zap.String("advocate_id", advocateID),
			zap.Bool("inserted", inserted),
		)
		return nil

	case PaymentDonation:
		log.Info("donation received", zap.String("campaign_id", tags["campaign_id"]))
		return nil

	default:
		log.Debug("checkout completed with unrecognised payment type", zap.String("payment_type", tags["payment_type"]))
		return nil
	}
}

func (s *BillingService) setCampaignStatus(ctx context.Context, log *zap.Logger, campaignID, status string) error {
	if !isUUID(campaignID) {
		log.Warn("subscription event without a valid campaign_id", zap.String("campaign_id", campaignID))
		return nil
	}
	n, err := s.CampaignRepo.UpdateStatus(ctx, campaignID, status)
	if err != nil {
		return err
	}
	log.Info("campaign status updated",
		zap.String("campaign_id", campaignID),
		zap.String("status", status),
		zap.Int64("rows", n),
	)
	return nil
}

// isUUID reports whether id can be stored in a UUID column. Malformed ids in
// webhook metadata are acknowledged rather than retried forever.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
