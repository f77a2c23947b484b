package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intake-go/internal/config"
	"intake-go/internal/intake"
)

const defaultTimeout = 10 * time.Second

// HTTPDoer is the subset of *http.Client the minting client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client requests document identifiers from the external minting service.
// The service is authoritative: any non-200 response or transport failure
// is a hard failure for the document being processed, with no retry and no
// locally generated substitute.
type Client struct {
	endpoint   string
	token      string
	httpClient HTTPDoer
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for minting calls (used in tests).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// NewClient builds a minting client from validated configuration.
func NewClient(cfg config.IdentityConfig, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// mintResponse is the service's success payload.
type mintResponse struct {
	ChittyID string `json:"chitty_id"`
}

// Mint posts the metadata envelope and returns the minted identifier.
func (c *Client) Mint(ctx context.Context, req intake.MintRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding mint request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building mint request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused, then fail hard.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var payload mintResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding mint response: %w", err)
	}
	if payload.ChittyID == "" {
		return "", fmt.Errorf("identity service response missing chitty_id")
	}

	return payload.ChittyID, nil
}

// Compile-time check that Client implements intake.IdentityMinter
var _ intake.IdentityMinter = (*Client)(nil)
