package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the analysis backend. One call is one request: no
// retries, no backoff, and no timeout beyond the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call posts payload to the endpoint and returns the raw JSON reply.
func (c *Client) Call(ctx context.Context, endpoint Endpoint, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", endpoint, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+string(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("analysis request failed", zap.String("endpoint", string(endpoint)), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("analysis response",
		zap.String("endpoint", string(endpoint)),
		zap.Int("status", resp.StatusCode),
		zap.Int("request_bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", endpoint, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s: %w", endpoint, ErrMalformedResponse)
	}

	// arrays (red flags) never carry an error field, so a failed decode is fine
	var envelope struct {
		Error *string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
		return nil, &RemoteError{Endpoint: endpoint, Message: *envelope.Error}
	}
	return raw, nil
}

func (c *Client) callInto(ctx context.Context, endpoint Endpoint, payload, out any) error {
	raw, err := c.Call(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %v", endpoint, ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) Simplify(ctx context.Context, text string) (string, error) {
	var resp SimplifyResponse
	if err := c.callInto(ctx, EndpointSimplify, TextRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.SimplifiedText, nil
}

func (c *Client) RedFlags(ctx context.Context, text string) ([]RedFlag, error) {
	var flags []RedFlag
	if err := c.callInto(ctx, EndpointRedFlags, TextRequest{Text: text}, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// Ask sends the question together with the full confirmed history.
func (c *Client) Ask(ctx context.Context, text, question string, history []ChatTurn) (string, error) {
	if history == nil {
		history = []ChatTurn{}
	}
	var resp QAResponse
	req := QARequest{Text: text, Question: question, History: history}
	if err := c.callInto(ctx, EndpointQA, req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

func (c *Client) Improve(ctx context.Context, text string) (string, error) {
	var resp ImproveResponse
	if err := c.callInto(ctx, EndpointImprove, TextRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.ImprovedText, nil
}

func (c *Client) Suggestions(ctx context.Context, text string) ([]Suggestion, error) {
	var resp SuggestionsResponse
	if err := c.callInto(ctx, EndpointSuggestions, TextRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Health queries GET /api/health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Endpoint: "health", StatusCode: resp.StatusCode}
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("health: %w: %v", ErrMalformedResponse, err)
	}
	return &health, nil
}
