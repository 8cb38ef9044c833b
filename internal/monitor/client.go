package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/talal02/inference-autoscaler/internal/window"
)

// Client talks to a remote monitor. Every call is bounded by the
// configured timeout on top of whatever deadline the caller's context
// already carries.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// Report pushes one latency sample to the monitor.
func (c *Client) Report(ctx context.Context, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	seconds := d.Seconds()
	body, err := json.Marshal(recordRequest{LatencySeconds: &seconds})
	if err != nil {
		return fmt.Errorf("marshal record payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/record", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build record request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post record: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("monitor rejected record: status %d", res.StatusCode)
	}

	return nil
}

// Stats fetches the current window snapshot.
func (c *Client) Stats(ctx context.Context) (window.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", nil)
	if err != nil {
		return window.Stats{}, fmt.Errorf("build stats request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return window.Stats{}, fmt.Errorf("get stats: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return window.Stats{}, fmt.Errorf("monitor returned status %d", res.StatusCode)
	}

	var payload statsResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return window.Stats{}, fmt.Errorf("decode stats: %w", err)
	}

	return statsFromWire(payload), nil
}
