// Package llm provides model discovery functionality
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ModelInfo represents information about an available model
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelsResponse represents the API response for listing models
type ModelsResponse struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// ListModels fetches the models the endpoint serves. The same credential
// rules as Call apply: no Authorization header for private hosts.
func (c *Client) ListModels(ctx context.Context, baseURL, apiKey string) ([]ModelInfo, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, newError(ErrMalformedRequest, fmt.Errorf("base URL is empty"))
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, trimmed+"/models", nil)
	if err != nil {
		return nil, newError(ErrMalformedRequest, err)
	}
	if apiKey != "" && !isPrivateHost(req.URL.Hostname()) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTransientError(err) {
			return nil, newError(ErrTransport, err)
		}
		return nil, newError(ErrMalformedRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, newProtocolError(resp.StatusCode, body)
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, newError(ErrDecoding, fmt.Errorf("parse models response: %w", err))
	}

	return modelsResp.Data, nil
}

// GetModelIDs extracts just the model IDs from ModelInfo list
func GetModelIDs(models []ModelInfo) []string {
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids
}
