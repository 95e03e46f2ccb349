package llm

import (
	"context"
	"fmt"

	"github.com/teilomillet/gollm"
)

// ---------------------------------------------------------------------------
// gollm adapter
// ---------------------------------------------------------------------------

// newGollmInstance creates a configured gollm.LLM for plain text queries
// where segmentation callbacks and tool calls are not needed.
// NOTE: gollm's validator rejects API keys that don't match standard
// provider formats (e.g. sk-... for OpenAI). This is expected for
// third-party OpenAI-compatible endpoints; callers fall back to the
// direct HTTP path when construction fails.
func newGollmInstance(cfg ChatConfig) (gollm.LLM, error) {
	opts := []gollm.ConfigOption{
		gollm.SetProvider("openai"),
		gollm.SetModel(cfg.Model),
		gollm.SetAPIKey(cfg.APIKey),
		gollm.SetLogLevel(gollm.LogLevelOff),
		gollm.SetMaxRetries(0), // retry policy lives in Call, not here
	}

	instance, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, fmt.Errorf("gollm init [%s]: %w", cfg.Model, err)
	}

	if cfg.BaseURL != "" {
		endpoint, epErr := resolveEndpoint(cfg.BaseURL)
		if epErr != nil {
			return nil, epErr
		}
		instance.SetEndpoint(endpoint)
	}

	return instance, nil
}

// SimpleQuery sends a single user prompt and returns the answer text with
// any reasoning stripped. It prefers the gollm path and falls back to a
// direct non-streaming Call when gollm cannot serve the endpoint.
func (c *Client) SimpleQuery(ctx context.Context, cfg ChatConfig, prompt string) (string, error) {
	if g, err := newGollmInstance(cfg); err == nil {
		if out, genErr := g.Generate(ctx, gollm.NewPrompt(prompt)); genErr == nil {
			_, content := StripThinkingTags(out)
			return content, nil
		}
	}

	cfg.Messages = []Message{{Role: "user", Content: prompt}}
	cfg.Stream = false
	resp, err := c.Call(ctx, cfg)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
