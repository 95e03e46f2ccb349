package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// ErrorKind classifies a terminal call failure. Only Transport errors are
// retried; everything else aborts the attempt loop immediately.
type ErrorKind int

const (
	// ErrMalformedRequest means the endpoint or request could not be built.
	ErrMalformedRequest ErrorKind = iota
	// ErrTransport is a connectivity-class failure (timeout, refused,
	// DNS, unreachable host). Retried per policy.
	ErrTransport
	// ErrProtocol is an HTTP status >= 400. The error body is captured
	// verbatim. Not retried.
	ErrProtocol
	// ErrDecoding means the response lacked the expected shape.
	ErrDecoding
	// ErrEncoding means the request body could not be serialized.
	ErrEncoding
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedRequest:
		return "malformed request"
	case ErrTransport:
		return "transport failure"
	case ErrProtocol:
		return "protocol error"
	case ErrDecoding:
		return "decoding failure"
	case ErrEncoding:
		return "encoding failure"
	}
	return "unknown error"
}

// Error is the typed failure surfaced by Call. Protocol errors carry the
// HTTP status and the raw response body.
type Error struct {
	Kind   ErrorKind
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ErrProtocol:
		return fmt.Sprintf("%s: %s", e.Kind, apiErrorMessage(e.Status, []byte(e.Body)))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newProtocolError(status int, body []byte) *Error {
	return &Error{Kind: ErrProtocol, Status: status, Body: string(body)}
}

// KindOf returns the ErrorKind of err if it is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Classification helpers
// ---------------------------------------------------------------------------

// isTransientError reports whether err is a connectivity-class failure
// worth retrying. HTTP-level and decode-level failures are deliberate
// non-matches: a 400 will be a 400 next time too.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if kind, ok := KindOf(err); ok {
		return kind == ErrTransport
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// Caller cancellation is not a server hiccup.
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return isTransientError(urlErr.Err)
	}
	s := err.Error()
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "no route to host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "network is down")
}

// IsRateLimitError returns true if the error is a rate-limit (429) error.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.Status == 429 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate_limit") ||
		strings.Contains(s, "too many requests")
}

// IsContextLengthError returns true if the error is a context-length-exceeded error.
func IsContextLengthError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "context_length_exceeded") ||
		strings.Contains(s, "context window") ||
		strings.Contains(s, "prompt is too long") ||
		strings.Contains(s, "tokens_exceeded") ||
		strings.Contains(s, "maximum context length")
}

// ---------------------------------------------------------------------------
// API error body extraction
// ---------------------------------------------------------------------------

// apiErrorMessage extracts a clean message from an API error response body.
func apiErrorMessage(statusCode int, body []byte) string {
	var errBody struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(body, &errBody) == nil {
		if errBody.Error.Message != "" {
			msg := truncateMessage(errBody.Error.Message)
			if errBody.Error.Type != "" {
				return fmt.Sprintf("API error %d [%s]: %s", statusCode, errBody.Error.Type, msg)
			}
			return fmt.Sprintf("API error %d: %s", statusCode, msg)
		}
		if errBody.Message != "" {
			return fmt.Sprintf("API error %d: %s", statusCode, truncateMessage(errBody.Message))
		}
	}
	return fmt.Sprintf("API error %d: %s", statusCode, truncateMessage(strings.TrimSpace(string(body))))
}

func truncateMessage(msg string) string {
	if len(msg) > 300 {
		return msg[:300] + "..."
	}
	return msg
}
