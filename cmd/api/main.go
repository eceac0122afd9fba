package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scanner_backend/internal/adapters/storage"
	"scanner_backend/internal/delivery"
	"scanner_backend/internal/email"
	apphttp "scanner_backend/internal/http"
	"scanner_backend/internal/http/router"
	"scanner_backend/internal/leads"
	leadrepo "scanner_backend/internal/leads/repository"
	"scanner_backend/internal/leads/service"
	"scanner_backend/internal/scheduler"
	"scanner_backend/internal/vision"
	"scanner_backend/migrations"
	"scanner_backend/platform/config"
	"scanner_backend/platform/db"
	"scanner_backend/platform/logger"
	"scanner_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		panic("failed to initialize object storage: " + err.Error())
	}

	bucket := cfg.GetMinioBucketLeadImages()
	if err := withRetry(ctx, log, "ensure lead images bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}

	// ========================================================================
	// Delivery Channels
	// ========================================================================

	repo := leadrepo.New(pool)
	orchestrator := delivery.NewOrchestrator(
		repo,
		delivery.NewWebhookSender(),
		delivery.NewConversionsClient(cfg),
		newEmailSender(cfg, log),
		cfg,
		log,
	)

	var analyzer service.Analyzer
	if cfg.IsVisionEnabled() {
		a, err := vision.NewAnalyzer(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize vision analyzer", "error", err)
			panic("failed to initialize vision analyzer: " + err.Error())
		}
		analyzer = a
		log.Info("vision analyzer enabled", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("vision analyzer disabled, analyze requests return degraded results")
	}

	dispatcher, closeDispatcher := newDispatcher(cfg, orchestrator, log)
	defer closeDispatcher()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	leadsModule := leads.NewModule(leads.Deps{
		Pool:         pool,
		Storage:      storageSvc,
		Dispatcher:   dispatcher,
		Orchestrator: orchestrator,
		Analyzer:     analyzer,
		Bucket:       bucket,
		Validator:    validator.New(),
		Logger:       log,
	})

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{leadsModule},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newEmailSender picks the SMTP sender when configured, a no-op otherwise.
func newEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.IsEmailEnabled() {
		log.Warn("email notifications disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
	)
}

// newDispatcher prefers the Redis-backed queue; without Redis, followups run
// on in-process goroutines.
func newDispatcher(cfg *config.Config, orchestrator *delivery.Orchestrator, log *logger.Logger) (scheduler.Dispatcher, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("redis not configured, running followups in-process")
		return scheduler.NewInlineDispatcher(orchestrator, log), func() {}
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize followup queue", "error", err)
		panic("failed to initialize followup queue: " + err.Error())
	}
	log.Info("followup queue enabled", "queue", cfg.GetAsynqQueueName())
	return client, func() { _ = client.Close() }
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
