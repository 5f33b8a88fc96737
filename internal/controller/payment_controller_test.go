package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/unclebandit/togetherunite-backend/internal/controller"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository/repotest"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

const webhookSecret = "whsec_controller_test"

type stubSessions struct{}

func (stubSessions) New(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func newPaymentController(store *repotest.Store) *controller.PaymentController {
	return &controller.PaymentController{
		BillingService: &service.BillingService{
			Sessions:      stubSessions{},
			WebhookSecret: webhookSecret,
			FrontendURL:   "https://togetherunite.com",
			AdvocateRepo:  store.Advocates(),
			CampaignRepo:  store.Campaigns(),
			ActionRepo:    store.Actions(),
		},
	}
}

func webhookRequest(t *testing.T, secret, eventType string, object map[string]any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_" + uuid.NewString(),
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	req := newRequest(http.MethodPost, "/payments/webhook", signed.Payload, nil)
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}

func TestPaymentController_CreateCheckout(t *testing.T) {
	ctrl := newPaymentController(repotest.NewStore())

	w := httptest.NewRecorder()
	ctrl.CreateCheckout(w, newRequest(http.MethodPost, "/payments", map[string]any{
		"payment_type": "validation_fee", "amount": 2.99, "user_id": "sub-42",
	}, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "cs_test_1", body["sessionId"])
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", body["url"])

	w = httptest.NewRecorder()
	ctrl.CreateCheckout(w, newRequest(http.MethodPost, "/payments", map[string]any{"payment_type": "gift_card", "amount": 5}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid payment type", decodeBody(t, w)["error"])

	w = httptest.NewRecorder()
	ctrl.CreateCheckout(w, newRequest(http.MethodPost, "/payments", map[string]any{"amount": 5}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", decodeBody(t, w)["error"])
}

func TestPaymentController_WebhookBadSignatureLeavesStateAlone(t *testing.T) {
	store := repotest.NewStore()
	ctrl := newPaymentController(store)
	c := seedCampaign(store, model.CampaignStatusInactive)

	req := webhookRequest(t, "whsec_someone_else", "checkout.session.completed", map[string]any{
		"id":       "cs_1",
		"object":   "checkout.session",
		"metadata": map[string]string{"payment_type": "campaign_subscription", "campaign_id": c.ID},
	})
	w := httptest.NewRecorder()
	ctrl.Webhook(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(decodeBody(t, w)["error"].(string), "Webhook Error: "))
	assert.Equal(t, model.CampaignStatusInactive, store.Campaign(c.ID).Status)

	req = webhookRequest(t, webhookSecret, "checkout.session.completed", map[string]any{
		"id":       "cs_1",
		"object":   "checkout.session",
		"metadata": map[string]string{"payment_type": "campaign_subscription", "campaign_id": c.ID},
	})
	req.Header.Del("Stripe-Signature")
	w = httptest.NewRecorder()
	ctrl.Webhook(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.CampaignStatusInactive, store.Campaign(c.ID).Status)
}

func TestPaymentController_WebhookActivatesSubscription(t *testing.T) {
	store := repotest.NewStore()
	ctrl := newPaymentController(store)
	c := seedCampaign(store, model.CampaignStatusInactive)

	w := httptest.NewRecorder()
	ctrl.Webhook(w, webhookRequest(t, webhookSecret, "checkout.session.completed", map[string]any{
		"id":       "cs_1",
		"object":   "checkout.session",
		"metadata": map[string]string{"payment_type": "campaign_subscription", "campaign_id": c.ID},
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody(t, w)["received"])
	assert.Equal(t, model.CampaignStatusActive, store.Campaign(c.ID).Status)
}
