// internal/controller/notification_controller.go
package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

// SubscriptionConfirmer completes the topic subscription handshake.
type SubscriptionConfirmer interface {
	ConfirmSubscription(ctx context.Context, topicARN, token string) error
}

// NotificationController receives delivery feedback pushed by the
// notification topic.
type NotificationController struct {
	FeedbackService *service.FeedbackService
	Confirmer       SubscriptionConfirmer
	// TopicARN, when set, is the only topic accepted.
	TopicARN string
	Logger   *zap.Logger
}

func (c *NotificationController) HandleSES(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(c.Logger)

	body, err := readBody(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	env, err := model.ParseSNSEnvelope(body)
	if err != nil {
		// Bare notifications are accepted for local testing.
		n, perr := model.ParseSESNotification(body)
		if perr != nil || n.Kind() == model.FeedbackIgnored {
			writeError(w, log, appErrors.NewValidation("Invalid notification"))
			return
		}
		c.process(w, r, log, n)
		return
	}

	if c.TopicARN != "" && env.TopicArn != c.TopicARN {
		log.Warn("notification from unexpected topic", zap.String("topic_arn", env.TopicArn))
		writeError(w, log, appErrors.NewValidation("Unexpected topic"))
		return
	}

	switch env.Type {
	case model.SNSTypeSubscriptionConfirmation:
		if c.Confirmer == nil {
			log.Info("subscription confirmation received", zap.String("subscribe_url", env.SubscribeURL))
			writeJSON(w, http.StatusOK, map[string]string{"message": "Subscription confirmation received"})
			return
		}
		if err := c.Confirmer.ConfirmSubscription(r.Context(), env.TopicArn, env.Token); err != nil {
			writeError(w, log, err)
			return
		}
		log.Info("subscription confirmed", zap.String("topic_arn", env.TopicArn))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Subscription confirmed"})
	case model.SNSTypeNotification:
		n, err := model.ParseSESNotification([]byte(env.Message))
		if err != nil {
			writeError(w, log, appErrors.NewValidation("Invalid notification"))
			return
		}
		c.process(w, r, log, n)
	default:
		log.Info("sns message ignored", zap.String("type", env.Type))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Ignored"})
	}
}

func (c *NotificationController) process(w http.ResponseWriter, r *http.Request, log *zap.Logger, n *model.SESNotification) {
	if _, err := c.FeedbackService.Process(r.Context(), n); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bounce handled successfully"})
}
