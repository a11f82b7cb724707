// Package notify posts signed webhooks when a planning run reaches a
// terminal state. Deliveries are retried with exponential backoff from an
// in-process queue; an empty endpoint list disables the notifier.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"transplan/internal/metrics"
)

type Endpoint struct {
	URL    string
	Secret string
}

type delivery struct {
	Endpoint  Endpoint
	EventType string
	Payload   []byte
	Attempts  int
	NextAt    time.Time
}

type Notifier struct {
	Endpoints   []Endpoint
	HTTP        *http.Client
	MaxAttempts int

	mu    sync.Mutex
	queue []*delivery
	stop  chan struct{}
	once  sync.Once
}

// FromEnv builds a notifier from NOTIFY_WEBHOOK_URLS (comma separated) and
// NOTIFY_WEBHOOK_SECRET. Returns nil when no endpoint is configured.
func FromEnv() *Notifier {
	urls := strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URLS"))
	if urls == "" {
		return nil
	}
	secret := os.Getenv("NOTIFY_WEBHOOK_SECRET")
	var eps []Endpoint
	for _, u := range strings.Split(urls, ",") {
		if u = strings.TrimSpace(u); u != "" {
			eps = append(eps, Endpoint{URL: u, Secret: secret})
		}
	}
	return New(eps)
}

func New(eps []Endpoint) *Notifier {
	max := 10
	if v := os.Getenv("WEBHOOK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}
	return &Notifier{
		Endpoints:   eps,
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		MaxAttempts: max,
		stop:        make(chan struct{}),
	}
}

// Emit enqueues one event for every configured endpoint.
func (n *Notifier) Emit(eventType string, data any) {
	if n == nil || len(n.Endpoints) == 0 {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"id":   fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type": eventType,
		"ts":   time.Now().UTC().Format(time.RFC3339),
		"data": data,
	})
	if err != nil {
		return
	}
	n.mu.Lock()
	for _, ep := range n.Endpoints {
		n.queue = append(n.queue, &delivery{Endpoint: ep, EventType: eventType, Payload: payload, NextAt: time.Now()})
	}
	n.mu.Unlock()
}

func (n *Notifier) Start() {
	if n == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-n.stop:
				return
			case <-ticker.C:
				n.processOnce()
			}
		}
	}()
}

func (n *Notifier) Stop() {
	if n == nil {
		return
	}
	n.once.Do(func() { close(n.stop) })
}

func (n *Notifier) processOnce() {
	now := time.Now()
	n.mu.Lock()
	var due []*delivery
	var rest []*delivery
	for _, d := range n.queue {
		if !d.NextAt.After(now) {
			due = append(due, d)
		} else {
			rest = append(rest, d)
		}
	}
	n.queue = rest
	n.mu.Unlock()

	for _, d := range due {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		success := n.deliver(ctx, d)
		cancel()
		if success {
			metrics.WebhookDeliveries.WithLabelValues(d.EventType, "delivered").Inc()
			continue
		}
		d.Attempts++
		if d.Attempts >= n.MaxAttempts {
			metrics.WebhookDeliveries.WithLabelValues(d.EventType, "failed").Inc()
			continue
		}
		d.NextAt = time.Now().Add(nextBackoff(d.Attempts))
		n.mu.Lock()
		n.queue = append(n.queue, d)
		n.mu.Unlock()
	}
}

func (n *Notifier) deliver(ctx context.Context, d *delivery) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint.URL, bytes.NewReader(d.Payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", d.EventType)
	if d.Endpoint.Secret != "" {
		req.Header.Set("X-Signature", SignHMAC(d.Endpoint.Secret, d.Payload))
	}
	start := time.Now()
	resp, err := n.HTTP.Do(req)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.WebhookLatency.WithLabelValues(d.EventType, "error").Observe(latency)
		return false
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	status := "error"
	if ok {
		status = "ok"
	}
	metrics.WebhookLatency.WithLabelValues(d.EventType, status).Observe(latency)
	return ok
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	// 2^12 seconds already exceeds the cap, so larger shifts cannot change
	// the result and would eventually overflow
	if attempts > 12 {
		return time.Hour
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
