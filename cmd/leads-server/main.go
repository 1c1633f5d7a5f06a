// cmd/leads-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"blueprint-leads/internal/common/config"
	"blueprint-leads/internal/common/database"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/common/observability"
	"blueprint-leads/internal/intake"
	"blueprint-leads/internal/lead"
	"blueprint-leads/internal/notifiers"
	"blueprint-leads/internal/notifiers/archive"
	"blueprint-leads/internal/notifiers/chat"
	"blueprint-leads/internal/notifiers/crm"
	"blueprint-leads/internal/notifiers/email"
	"blueprint-leads/internal/notifiers/sheet"
	"blueprint-leads/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting leads server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("leads-server")
	defer obs.Shutdown()

	ctx := context.Background()

	store := lead.NewStore(cfg.Intake.Capacity)

	collaborators := buildNotifiers(ctx, cfg, log, zapLog)
	dispatcher := notifiers.NewDispatcher(
		log,
		config.GetDuration(cfg.Notify.Timeout),
		config.GetDuration(cfg.Notify.RetryDelay),
		collaborators...,
	)

	service := intake.NewService(store, dispatcher, log, cfg.Intake)
	srv := server.New(service, cfg, obs, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP shutdown failed", zap.Error(err))
	}

	// Let in-flight collaborator calls drain before exiting.
	dispatcher.Wait()

	zapLog.Info("Shutdown complete")
}

// buildNotifiers wires every configured collaborator. Each one is optional:
// missing credentials leave it out and intake keeps working.
func buildNotifiers(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) []notifiers.Notifier {
	var ns []notifiers.Notifier

	if cfg.Integrations.AWS.SES.Enabled || cfg.Integrations.AWS.SNS.Enabled {
		emailNotifier, err := email.New(ctx, log, email.Config{
			Region:        cfg.Integrations.AWS.Region,
			EmailEnabled:  cfg.Integrations.AWS.SES.Enabled,
			FromEmail:     cfg.Integrations.AWS.SES.FromEmail,
			Recipients:    cfg.Integrations.AWS.SES.Recipients,
			SMSEnabled:    cfg.Integrations.AWS.SNS.Enabled,
			OperatorPhone: cfg.Integrations.AWS.SNS.OperatorPhone,
		})
		if err != nil {
			zapLog.Warn("email notifier disabled", zap.Error(err))
		} else {
			ns = append(ns, emailNotifier)
		}
	}

	if cfg.Integrations.Sheets.SpreadsheetID != "" && cfg.Integrations.Sheets.CredentialsJSON != "" {
		sheetNotifier, err := sheet.New(
			ctx,
			log,
			cfg.Integrations.Sheets.SpreadsheetID,
			cfg.Integrations.Sheets.CredentialsJSON,
			cfg.Integrations.Sheets.SheetName,
		)
		if err != nil {
			zapLog.Warn("sheet notifier disabled", zap.Error(err))
		} else {
			ns = append(ns, sheetNotifier)
		}
	}

	if cfg.Integrations.Zoho.OAuthToken != "" {
		ns = append(ns, crm.New(log, cfg.Integrations.Zoho.APIKey, cfg.Integrations.Zoho.OAuthToken))
	}

	if cfg.Integrations.WhatsApp.GatewayURL != "" && cfg.Integrations.WhatsApp.Token != "" {
		ns = append(ns, chat.New(
			log,
			cfg.Integrations.WhatsApp.GatewayURL,
			cfg.Integrations.WhatsApp.Token,
			cfg.Integrations.WhatsApp.OperatorPhone,
		))
	}

	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Warn("archive notifier disabled", zap.Error(err))
		} else {
			archiveNotifier := archive.New(log, pg.DB)
			if err := archiveNotifier.EnsureSchema(ctx); err != nil {
				zapLog.Warn("archive schema setup failed", zap.Error(err))
			} else {
				ns = append(ns, archiveNotifier)
			}
		}
	}

	zapLog.Info("Collaborators wired", zap.Int("count", len(ns)))
	return ns
}
