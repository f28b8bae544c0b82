package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/flowmindhq/flowmind/internal/ai"
	"github.com/flowmindhq/flowmind/internal/api"
	"github.com/flowmindhq/flowmind/internal/config"
	"github.com/flowmindhq/flowmind/internal/knowledge"
	"github.com/flowmindhq/flowmind/internal/learning"
	"github.com/flowmindhq/flowmind/internal/middleware"
	"github.com/flowmindhq/flowmind/internal/msglog"
	"github.com/flowmindhq/flowmind/internal/orders"
	"github.com/flowmindhq/flowmind/internal/transcript"
	"github.com/flowmindhq/flowmind/internal/whatsapp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend and the nightly learning schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	if cfg.OpenAIKey == "" {
		slog.Warn("OPENAI_KEY not set, AI replies will fail and customers will see silence")
	}
	if cfg.WhatsAppToken == "" || cfg.WhatsAppPhoneID == "" {
		slog.Warn("WA_TOKEN/WA_PHONE_ID not set, outbound messages will fail")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	// Initialize dependencies.
	logger := slog.Default()
	know := knowledge.NewStore(cfg.KnowledgePath())
	log := msglog.New(cfg.MessageLogCap)
	aiClient := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, logger)
	waClient := whatsapp.NewClient(cfg.WhatsAppAPIBase, cfg.WhatsAppPhoneID, cfg.WhatsAppToken, logger)
	orderStore := orders.NewStore(cfg.OrdersPath())
	transcripts := transcript.NewStore(cfg.ConversationsDir())

	handler := api.NewHandler(know, log, aiClient, waClient, orderStore, transcripts, cfg.BotName, cfg.VerifyToken)

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	corsOrigins := []string{"*"}
	if !cfg.IsDevelopment() {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout, the websocket feed is long-lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Nightly learning schedule.
	if cfg.LearnEnabled() {
		job := learning.NewJob(know, transcripts, aiClient, cfg.LearningLogPath(), logger)
		c := cron.New()
		if _, err := c.AddFunc(cfg.LearnSchedule, func() {
			if err := job.Run(context.Background()); err != nil {
				slog.Error("Scheduled learning pass failed", "error", err)
			}
		}); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		slog.Info("Learning schedule started", "schedule", cfg.LearnSchedule)
	} else {
		slog.Info("Learning schedule disabled")
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server stopped successfully")
	return nil
}
