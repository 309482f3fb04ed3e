package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-kco/internal/analytics"
	"github.com/noah-isme/backend-kco/internal/config"
	"github.com/noah-isme/backend-kco/internal/obs"
	"github.com/noah-isme/backend-kco/internal/plugin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	if envOrDefault("OBS_ENABLE_TRACING", "true") == "true" {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName: "kco-worker",
			Endpoint:    envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Environment: cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	conn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	srv := asynq.NewServer(conn, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			"analytics": 5,
			"default":   5,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Error().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	})

	outbound := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(nil),
	}
	purchases := &analytics.Handler{
		CollectorURL: cfg.CollectorURL,
		HTTP:         outbound,
		Logger:       logger,
	}
	newsletter := newsletterHandler{
		SignupURL: cfg.NewsletterURL,
		HTTP:      outbound,
		Logger:    logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(analytics.TaskTypePurchase, purchases.HandlePurchase)
	mux.HandleFunc(plugin.TaskTypeNewsletterSignup, newsletter.Handle)

	logger.Info().Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

// newsletterHandler forwards queued signups to the newsletter service.
// Without a configured endpoint signups are logged and dropped.
type newsletterHandler struct {
	SignupURL string
	HTTP      *http.Client
	Logger    zerolog.Logger
}

func (h newsletterHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var signup struct {
		Email   string `json:"email"`
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(task.Payload(), &signup); err != nil {
		return fmt.Errorf("newsletter: decode signup: %v: %w", err, asynq.SkipRetry)
	}
	if signup.Email == "" {
		return nil
	}
	if h.SignupURL == "" {
		h.Logger.Info().Str("order_id", signup.OrderID).Msg("newsletter signup (no endpoint configured)")
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.SignupURL, bytes.NewReader(task.Payload()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := h.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("newsletter: endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
