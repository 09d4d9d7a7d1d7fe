package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emailauth/relayer/internal/application/services"
	"github.com/emailauth/relayer/internal/config"
	"github.com/emailauth/relayer/internal/infrastructure/chain"
	"github.com/emailauth/relayer/internal/infrastructure/dkim"
	"github.com/emailauth/relayer/internal/infrastructure/mailparse"
	"github.com/emailauth/relayer/internal/infrastructure/persistence"
	"github.com/emailauth/relayer/internal/infrastructure/persistence/postgres"
	"github.com/emailauth/relayer/internal/infrastructure/prover"
	"github.com/emailauth/relayer/internal/infrastructure/smtp"
	"github.com/emailauth/relayer/internal/interfaces/rest/handlers"
	"github.com/emailauth/relayer/internal/interfaces/rest/middleware"
	"github.com/emailauth/relayer/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger(cfg.Primary.Env)
	slog.SetDefault(logger)

	logger.Info("starting relayer service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := persistence.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	requestRepo := postgres.NewRequestRepository(db)
	replyLedger := postgres.NewReplyLedger(db)

	sender := smtp.NewHTTPSender(cfg.Smtp)
	retrySender := smtp.NewRetrySender(sender, cfg.Retry)

	proofClient := prover.NewHTTPClient(cfg.Prover)
	chainRegistry := chain.NewRegistry(cfg.Chains)
	dkimVerifier := dkim.NewVerifier(logger)

	renderer := services.NewTemplateRenderer(cfg.Templates.Dir)
	notifier := services.NewNotifier(retrySender, replyLedger, logger)
	orchestrator := services.NewOrchestrator(
		requestRepo,
		replyLedger,
		notifier,
		renderer,
		mailparse.NewParser(),
		chainRegistry,
		dkimVerifier,
		proofClient,
		logger,
	)

	h := handlers.NewHandlers(orchestrator, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Metrics()(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ackWorker := worker.NewAckWorker(
		requestRepo,
		orchestrator,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		cfg.Worker.MaxAttempts,
		logger,
	)

	expirationWorker := worker.NewExpirationWorker(
		requestRepo,
		cfg.Worker.Interval,
		cfg.Worker.ReplyTTL,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go ackWorker.Start(workerCtx)
	go expirationWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
