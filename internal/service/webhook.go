package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/encetamasb/TheSpaghettiDetective/internal/logger"
	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

const (
	webhookQueueSize   = 256
	webhookHTTPTimeout = 10 * time.Second
	defaultRatePerMin  = 60
)

// WebhookSender is the delivery collaborator for outbound calls: it
// posts them to the configured service webhook URL, throttled by a rate
// limiter and guarded by a circuit breaker. Delivery is best-effort;
// failures are logged and fed to the breaker, never back into
// lifecycle state.
type WebhookSender struct {
	url     string
	queue   chan models.OutboundCall
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[struct{}]
	client  *http.Client
	log     *logger.Logger
}

func NewWebhookSender(url string, ratePerMin int) *WebhookSender {
	if ratePerMin <= 0 {
		ratePerMin = defaultRatePerMin
	}
	log := logger.Get(logger.InfoLevel)

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "service-webhook",
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Infow("webhook_breaker_state", "from", from.String(), "to", to.String())
		},
	})

	return &WebhookSender{
		url:     url,
		queue:   make(chan models.OutboundCall, webhookQueueSize),
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), ratePerMin),
		breaker: breaker,
		client:  &http.Client{Timeout: webhookHTTPTimeout},
		log:     log,
	}
}

// Enqueue hands calls to the delivery loop. A full queue drops the
// call: throttled notifications are expendable, lifecycle truth is not.
func (s *WebhookSender) Enqueue(calls []models.OutboundCall) {
	for _, call := range calls {
		select {
		case s.queue <- call:
		default:
			s.log.Warnw("webhook_queue_full", "record_id", call.RecordID, "event", call.Event)
		}
	}
}

// Run delivers queued calls until ctx is canceled.
func (s *WebhookSender) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case call := <-s.queue:
			if err := s.deliver(ctx, call); err != nil {
				s.log.Errorw("webhook_delivery_failed", "err", err, "record_id", call.RecordID, "event", call.Event)
			}
		}
	}
}

func (s *WebhookSender) deliver(ctx context.Context, call models.OutboundCall) error {
	if s.url == "" {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.post(ctx, call)
	})
	return err
}

type webhookPayload struct {
	Kind        string `json:"kind"`
	Token       string `json:"token"`
	PrintID     string `json:"print_id"`
	Event       string `json:"event"`
	Percent     int    `json:"percent,omitempty"`
	TimeLeft    int    `json:"timeleft,omitempty"`
	CurrentTime int    `json:"currenttime,omitempty"`
}

func (s *WebhookSender) post(ctx context.Context, call models.OutboundCall) error {
	body, err := json.Marshal(webhookPayload{
		Kind:        string(call.Kind),
		Token:       call.ServiceToken,
		PrintID:     call.RecordID,
		Event:       call.Event,
		Percent:     call.Percent,
		TimeLeft:    call.TimeLeft,
		CurrentTime: call.CurrentTime,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
