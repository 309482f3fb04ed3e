package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Handler delivers queued purchase events to the analytics collector.
type Handler struct {
	CollectorURL string
	HTTP         *http.Client
	Logger       zerolog.Logger
}

// HandlePurchase processes one queued purchase event. Without a
// configured collector the event is logged and dropped, which is the
// development-mode behaviour.
func (h *Handler) HandlePurchase(ctx context.Context, task *asynq.Task) error {
	var event Purchase
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		// Malformed payloads never become valid; skip the retries.
		return fmt.Errorf("analytics: decode purchase: %v: %w", err, asynq.SkipRetry)
	}
	if h.CollectorURL == "" {
		h.Logger.Info().
			Str("transaction_id", event.TransactionID).
			Float64("revenue", event.Revenue).
			Int("products", len(event.Products)).
			Msg("purchase tracked (no collector configured)")
		return nil
	}
	client := h.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.CollectorURL, bytes.NewReader(task.Payload()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics: collector returned %d", resp.StatusCode)
	}
	return nil
}
