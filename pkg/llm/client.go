// Package llm implements a client for chat-completion-style HTTP APIs.
// Its core is the streaming protocol engine: SSE decoding, segmentation
// of vendor reasoning text from answer text under arbitrary chunk splits,
// tool-call reassembly, and a bounded retry wrapper around the request
// lifecycle. Provider quirks are expressed as ModelCapability rules, not
// scattered conditionals.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"HaloChat/pkg/utils"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Client executes chat-completion requests. It holds no per-request
// state; one Client is safe for concurrent Calls.
type Client struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger
	limiter    *utils.RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger for protocol-tolerance warnings and retry
// notices. Without one the client stays silent.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimiter makes every attempt wait for a token first.
func WithRateLimiter(rl *utils.RateLimiter) Option {
	return func(c *Client) { c.limiter = rl }
}

// NewClient creates a client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		// No Timeout on the http.Client: streamed responses can
		// legitimately take many minutes. Cancellation is handled via
		// request context.
		httpClient: &http.Client{},
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---------------------------------------------------------------------------
// Call
// ---------------------------------------------------------------------------

// Call executes one chat-completion request end to end: request build,
// transport, stream or body decode, and the retry policy. The caller gets
// either a complete Response or one typed error, never both and never a
// partially populated Response.
func (c *Client) Call(ctx context.Context, cfg ChatConfig) (*Response, error) {
	caps := CapabilitiesFor(cfg.Model)

	endpoint, err := resolveEndpoint(cfg.BaseURL)
	if err != nil {
		return nil, newError(ErrMalformedRequest, err)
	}

	body, err := buildRequestBody(cfg, caps)
	if err != nil {
		return nil, newError(ErrEncoding, err)
	}

	retryCfg := utils.RetryConfig{MaxAttempts: cfg.maxRetries(), BaseDelay: cfg.baseDelay()}

	var resp *Response
	operation := func() error {
		attemptResp, attemptErr := c.doAttempt(ctx, endpoint, body, cfg, caps)
		if attemptErr != nil {
			if isTransientError(attemptErr) {
				return attemptErr
			}
			return backoff.Permanent(attemptErr)
		}
		resp = attemptResp
		return nil
	}

	notify := func(err error, next time.Duration) {
		c.logger.Warnw("transient transport failure, retrying",
			"wait", next, "error", utils.SanitizeLog(err.Error()))
	}

	if retryErr := utils.ExecuteWithRetryNotify(ctx, operation, retryCfg, notify); retryErr != nil {
		var typed *Error
		if errors.As(retryErr, &typed) {
			return nil, typed
		}
		return nil, newError(ErrTransport, retryErr)
	}

	return resp, nil
}

// doAttempt performs a single request attempt.
func (c *Client) doAttempt(ctx context.Context, endpoint string, body []byte, cfg ChatConfig, caps ModelCapability) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newError(ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newError(ErrMalformedRequest, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if cfg.Stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	// Local inference servers neither need nor want credentials.
	if cfg.APIKey != "" && !isPrivateHost(req.URL.Hostname()) {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if isTransientError(err) {
			return nil, newError(ErrTransport, err)
		}
		return nil, newError(ErrMalformedRequest, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(httpResp.Body)
		return nil, newProtocolError(httpResp.StatusCode, errBody)
	}

	if cfg.Stream {
		return c.consumeStream(ctx, httpResp.Body, caps.NewParser(), cfg.Callbacks)
	}
	return c.parseFullResponse(httpResp.Body)
}

// ---------------------------------------------------------------------------
// Non-streaming response path
// ---------------------------------------------------------------------------

// wireMessage is the message of one choice in a complete response body.
type wireMessage struct {
	Role             string         `json:"role"`
	Content          string         `json:"content"`
	ReasoningContent string         `json:"reasoning_content,omitempty"`
	ToolCalls        []wireToolCall `json:"tool_calls,omitempty"`
}

// wireResponse is a complete chat-completion response body.
type wireResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// parseFullResponse decodes one complete JSON body and separates thinking
// from content by pattern matching.
func (c *Client) parseFullResponse(body io.Reader) (*Response, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		if isTransientError(err) {
			return nil, newError(ErrTransport, err)
		}
		return nil, newError(ErrDecoding, err)
	}

	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, newError(ErrDecoding, fmt.Errorf("unmarshal response: %w", err))
	}
	if len(wire.Choices) == 0 {
		return nil, newError(ErrDecoding, fmt.Errorf("response has no choices"))
	}

	msg := wire.Choices[0].Message
	tagThinking, content := StripThinkingTags(msg.Content)
	thinking := mergeThinking(msg.ReasoningContent, tagThinking)

	return &Response{
		Thinking:  thinking,
		Content:   content,
		ToolCalls: convertToolCalls(msg.ToolCalls),
		Usage:     wire.Usage,
	}, nil
}

// ---------------------------------------------------------------------------
// Request assembly
// ---------------------------------------------------------------------------

// resolveEndpoint validates the base URL and appends the completion path.
func resolveEndpoint(baseURL string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return "", fmt.Errorf("base URL is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base URL %q has no host", baseURL)
	}
	if strings.HasSuffix(trimmed, "/chat/completions") {
		return trimmed, nil
	}
	return trimmed + "/chat/completions", nil
}

// isPrivateHost reports whether host is loopback or on a private network.
func isPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".local") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// buildRequestBody assembles the outbound JSON body. Merge order is base
// fields, then the model's capability params, then caller extras, so the
// caller always wins.
func buildRequestBody(cfg ChatConfig, caps ModelCapability) ([]byte, error) {
	body := map[string]any{
		"model":    cfg.Model,
		"messages": cfg.Messages,
	}

	if cfg.Stream {
		body["stream"] = true
		body["stream_options"] = map[string]any{"include_usage": true}
	}
	if cfg.Temperature != nil {
		body["temperature"] = *cfg.Temperature
	}
	if cfg.TopP != nil {
		body["top_p"] = *cfg.TopP
	}
	if cfg.MaxTokens != nil {
		// Reasoning models reserve max_tokens for the old semantics and
		// take their limit through max_completion_tokens.
		if caps.Reasoning {
			body["max_completion_tokens"] = *cfg.MaxTokens
		} else {
			body["max_tokens"] = *cfg.MaxTokens
		}
	}
	if len(cfg.Tools) > 0 {
		body["tools"] = cfg.Tools
		body["tool_choice"] = "auto"
	}

	for k, v := range caps.ExtraParams {
		body[k] = v
	}
	for k, v := range cfg.ExtraParams {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return data, nil
}

// mergeThinking combines the dedicated reasoning_content stream with
// tag-derived thinking text. Empties are dropped, exact duplicates
// collapse, the rest are newline-joined.
func mergeThinking(parts ...string) string {
	var merged []string
	seen := make(map[string]bool)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	return strings.Join(merged, "\n")
}
