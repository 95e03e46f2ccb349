package llm

import "time"

// Message represents a chat message.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	Thinking   string     `json:"thinking,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is an assembled function call from the model. Arguments are
// already decoded; the raw JSON string only exists on the wire.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolDefinition defines a tool for the LLM.
type ToolDefinition struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

// FunctionSchema defines a function's schema.
type FunctionSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

// Usage contains token usage information for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final aggregate returned to the caller. It is only
// produced on success; a failed call returns a typed error instead.
type Response struct {
	Thinking  string     `json:"thinking,omitempty"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Usage     Usage      `json:"usage"`
}

// StreamCallbacks receive fragments as they are classified. They run
// synchronously on the stream-consuming goroutine, in arrival order;
// long blocking work inside them stalls consumption.
type StreamCallbacks struct {
	OnThinkingStarted func()
	OnThinkingChunk   func(text string)
	OnThinkingEnded   func()
	OnContentChunk    func(text string)
	OnToolCallStarted func(name string)
}

// ChatConfig carries everything one Call needs. It is treated as an
// immutable value; nothing in it is mutated or retained across calls.
type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	Messages []Message
	Tools    []ToolDefinition

	Stream      bool
	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	// ExtraParams are merged into the request body after the model's
	// capability params, so callers can override both.
	ExtraParams map[string]any

	// Retry budget. Zero values fall back to defaults (3 attempts,
	// 1s base delay).
	MaxRetries int
	BaseDelay  time.Duration

	Callbacks StreamCallbacks
}

func (c ChatConfig) maxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return 3
}

func (c ChatConfig) baseDelay() time.Duration {
	if c.BaseDelay > 0 {
		return c.BaseDelay
	}
	return time.Second
}
