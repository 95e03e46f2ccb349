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

func TestListModels(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"object":"list","data":[`+
			`{"id":"qwen3:8b","object":"model","owned_by":"library"},`+
			`{"id":"deepseek-r1:7b","object":"model","owned_by":"library"}`+
			`]}`)
	}))
	defer srv.Close()

	models, err := NewClient().ListModels(context.Background(), srv.URL+"/v1/", "sk-secret")
	require.NoError(t, err)
	assert.Equal(t, "/v1/models", gotPath)
	assert.Empty(t, gotAuth, "loopback hosts must not receive credentials")
	assert.Equal(t, []string{"qwen3:8b", "deepseek-r1:7b"}, GetModelIDs(models))
}

func TestListModels_ProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"type":"authentication_error","message":"bad key"}}`)
	}))
	defer srv.Close()

	_, err := NewClient().ListModels(context.Background(), srv.URL, "")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrProtocol, kind)
	assert.Contains(t, err.Error(), "bad key")
}

func TestListModels_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json at all")
	}))
	defer srv.Close()

	_, err := NewClient().ListModels(context.Background(), srv.URL, "")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrDecoding, kind)
}

func TestListModels_EmptyBaseURL(t *testing.T) {
	_, err := NewClient().ListModels(context.Background(), "  ", "")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrMalformedRequest, kind)
}
