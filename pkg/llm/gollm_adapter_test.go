package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleQuery(t *testing.T) {
	// Whether the query goes through the gollm instance or the direct
	// fallback, both paths hit this endpoint and strip the reasoning span.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant",`+
			`"content":"<think>quiet plan</think>The answer."}}]}`)
	}))
	defer srv.Close()

	cfg := ChatConfig{BaseURL: srv.URL, Model: "qwen3:8b"}
	out, err := NewClient().SimpleQuery(context.Background(), cfg, "hi")
	require.NoError(t, err)
	assert.Equal(t, "The answer.", out)
}

func TestSimpleQuery_PropagatesProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"message":"model not found"}}`)
	}))
	defer srv.Close()

	cfg := ChatConfig{BaseURL: srv.URL, Model: "missing-model"}
	_, err := NewClient().SimpleQuery(context.Background(), cfg, "hi")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrProtocol, kind)
}
