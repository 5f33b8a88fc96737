// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/app"
	"github.com/unclebandit/togetherunite-backend/internal/config"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/queue"
)

// The worker drains delivery feedback bridged from the notification topic
// into RabbitMQ.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	consumer := &queue.Consumer{
		URL:    cfg.AMQP.URL,
		Queue:  cfg.AMQP.Queue,
		Logger: zapLog.Named("worker"),
	}
	err = consumer.Run(ctx, func(ctx context.Context, body []byte) error {
		res, err := a.Feedback.HandlePayload(ctx, body)
		if err != nil {
			return err
		}
		zapLog.Debug("feedback processed",
			zap.String("kind", string(res.Kind)),
			zap.Int("matched", res.Matched),
			zap.Int("removed", res.Removed))
		return nil
	})
	if err != nil {
		zapLog.Fatal("worker stopped", zap.Error(err))
	}
	zapLog.Info("worker stopped")
}
