package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Receiver is one push target with its registered device tokens.
type Receiver struct {
	ID           string   `json:"id"`
	DeviceTokens []string `json:"deviceTokens"`
}

// PushSender delivers a text alert to a set of receivers. Transport mechanics
// (batching, retries, token invalidation) live behind this interface.
type PushSender interface {
	Dispatch(ctx context.Context, scopeHint, text string, receivers []Receiver) error
}

// HTTPPushSender posts the alert as JSON to a push gateway.
type HTTPPushSender struct {
	endpoint string
	client   *http.Client
}

func NewHTTPPushSender(endpoint string) *HTTPPushSender {
	return &HTTPPushSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type pushRequest struct {
	Scope     string     `json:"scope"`
	Text      string     `json:"text"`
	Receivers []Receiver `json:"receivers"`
}

func (s *HTTPPushSender) Dispatch(ctx context.Context, scopeHint, text string, receivers []Receiver) error {
	if s.endpoint == "" {
		return fmt.Errorf("push gateway endpoint is not configured")
	}

	body, err := json.Marshal(pushRequest{Scope: scopeHint, Text: text, Receivers: receivers})
	if err != nil {
		return fmt.Errorf("failed to encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway answered %s", resp.Status)
	}
	return nil
}
