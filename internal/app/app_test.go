package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/app"
	"github.com/unclebandit/togetherunite-backend/internal/config"
	"github.com/unclebandit/togetherunite-backend/internal/handler"
)

func TestWire(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	cfg := &config.Config{
		FrontendURL: "https://togetherunite.com",
		AWS: config.AWSConfig{
			Region:              "us-east-1",
			SESRegion:           "us-west-2",
			SESConfigurationSet: "togetherunite-bounces",
			FeedbackTopicARN:    "arn:aws:sns:us-east-1:123456789012:ses-feedback",
		},
		Stripe: config.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_x"},
	}
	a := app.Wire(cfg, zap.NewNop(), conn, awssdk.Config{Region: "us-east-1"})

	assert.Equal(t, "https://togetherunite.com", a.Campaigns.FrontendURL)
	assert.Equal(t, "whsec_x", a.Billing.WebhookSecret)
	assert.Nil(t, a.Feedback.Notifier, "alerts are logged when no organizer topic is configured")

	ctrls := a.Controllers()
	assert.Equal(t, cfg.AWS.FeedbackTopicARN, ctrls.Notifications.TopicARN)

	w := httptest.NewRecorder()
	handler.NewRouter(ctrls, zap.NewNop()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, a.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWire_OrganizerTopicEnablesAlerts(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	cfg := &config.Config{
		FrontendURL: "https://togetherunite.com",
		AWS: config.AWSConfig{
			Region:            "us-east-1",
			OrganizerTopicARN: "arn:aws:sns:us-east-1:123456789012:organizer-alerts",
		},
	}
	a := app.Wire(cfg, zap.NewNop(), conn, awssdk.Config{Region: "us-east-1"})
	require.NotNil(t, a.Feedback.Notifier)
	assert.Same(t, a.SNS, a.Feedback.Notifier)
}
