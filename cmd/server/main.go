// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/app"
	"github.com/unclebandit/togetherunite-backend/internal/config"
	"github.com/unclebandit/togetherunite-backend/internal/handler"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
)

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

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.NewRouter(a.Controllers(), zapLog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("server stopped")
}
