// cmd/bounce-handler/main.go
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/app"
	"github.com/unclebandit/togetherunite-backend/internal/config"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

type feedbackProcessor interface {
	Process(ctx context.Context, n *model.SESNotification) (*service.FeedbackResult, error)
}

type bounceHandler struct {
	feedback feedbackProcessor
	log      *zap.Logger
}

// handle processes every record; the first failure fails the invocation so
// the topic redelivers it.
func (h *bounceHandler) handle(ctx context.Context, event events.SNSEvent) error {
	for _, record := range event.Records {
		n, err := model.ParseSESNotification([]byte(record.SNS.Message))
		if err != nil {
			return fmt.Errorf("record %s: %w", record.SNS.MessageID, err)
		}
		res, err := h.feedback.Process(ctx, n)
		if err != nil {
			return fmt.Errorf("record %s: %w", record.SNS.MessageID, err)
		}
		h.log.Info("bounce handled",
			zap.String("sns_message_id", record.SNS.MessageID),
			zap.String("kind", string(res.Kind)),
			zap.Int("removed", res.Removed))
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	a, err := app.New(context.Background(), cfg, zapLog)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}

	h := &bounceHandler{feedback: a.Feedback, log: zapLog.Named("bounce-handler")}
	lambda.Start(h.handle)
}
