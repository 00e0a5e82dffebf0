// Package whatsapp implements the outbound side of the Twilio WhatsApp
// API: a tuned HTTP client and a thin REST wrapper around the Messages
// endpoint.
package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.twilio.com"

// Config carries the Twilio account credentials and sender identity.
type Config struct {
	AccountSID string
	AuthToken  string
	// From is the WhatsApp-enabled sender, e.g. "whatsapp:+14155238886".
	From string
	// BaseURL overrides the Twilio API host, for tests.
	BaseURL string
}

// Message is the subset of the Twilio message resource the bot cares about.
type Message struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// APIError is a non-2xx response from the Twilio API.
type APIError struct {
	StatusCode int
	// Code is Twilio's own error code, 0 when the body carried none.
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twilio: %s (code %d, http %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("twilio: http %d", e.StatusCode)
}

// Client sends messages through the Twilio Messages REST endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a Client over a tuned HTTP transport.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{cfg: cfg, http: BuildHTTPClient()}
}

// SendText delivers one text message to the given WhatsApp recipient.
// The recipient must already carry the "whatsapp:" prefix, as received
// on the webhook's From field.
func (c *Client) SendText(ctx context.Context, to, body string) (Message, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Message{}, fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("whatsapp: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Message{}, fmt.Errorf("whatsapp: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// Twilio error bodies are JSON; a parse failure leaves just the
		// HTTP status, which is still enough to classify.
		_ = json.Unmarshal(raw, apiErr)
		return Message{}, apiErr
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("whatsapp: decode response: %w", err)
	}
	return msg, nil
}
