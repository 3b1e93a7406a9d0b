package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout applies when a sink is configured without one.
const DefaultTimeout = 5 * time.Second

// Delivery posts JSON payloads to an HTTP endpoint, retrying failed attempts
// with linear backoff. Sinks embed it so the transport behaves the same for
// every notification target.
type Delivery struct {
	// Name labels the endpoint in error messages ("slack webhook", ...).
	Name string
	URL  string
	// Retries is the number of additional attempts after the first.
	Retries int
	Client  *http.Client
}

// NewDelivery normalizes the retry count and fills in a default HTTP client.
func NewDelivery(name, url string, retries int, client *http.Client, timeout time.Duration) Delivery {
	if retries < 0 {
		retries = 0
	}
	if client == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return Delivery{Name: name, URL: url, Retries: retries, Client: client}
}

// Send marshals payload and posts it until an attempt succeeds or the
// attempts are exhausted. A canceled context stops the loop immediately.
func (d Delivery) Send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", d.Name, err)
	}

	var lastErr error
	for attempt := 0; attempt <= d.Retries; attempt++ {
		if attempt > 0 {
			// Linear backoff between attempts.
			if err := sleepCtx(ctx, time.Duration(attempt)*200*time.Millisecond); err != nil {
				return err
			}
		}
		if lastErr = d.post(ctx, body); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (d Delivery) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", d.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", d.Name, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", d.Name, resp.Status, strings.TrimSpace(string(respBody)))
	}
	if readErr != nil {
		return fmt.Errorf("read %s response: %w", d.Name, errors.Join(readErr, closeErr))
	}
	return closeErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
