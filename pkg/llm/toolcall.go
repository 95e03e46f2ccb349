package llm

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Streaming tool-call assembly
// ---------------------------------------------------------------------------

// toolCallAccumulator reassembles one fragmented function call across delta
// events. The covered vendors emit at most one tool call per response, so a
// single accumulator per request is sufficient; streaming multiple parallel
// calls would require keying accumulators by the delta index.
type toolCallAccumulator struct {
	id   string
	name string
	args strings.Builder
}

// ingest folds one tool-call fragment into the accumulator. The id is set
// on first occurrence only; the function name is set once and triggers
// onStarted; argument text is always appended.
func (a *toolCallAccumulator) ingest(d toolCallDelta, onStarted func(name string)) {
	if a.id == "" && d.ID != "" {
		a.id = d.ID
	}
	if a.name == "" && d.Function.Name != "" {
		a.name = d.Function.Name
		if onStarted != nil {
			onStarted(a.name)
		}
	}
	a.args.WriteString(d.Function.Arguments)
}

// finalize parses the accumulated argument text now that the stream has
// ended. A missing name or arguments that do not decode to a JSON object
// yield no tool call; a partial answer without the call is still usable.
func (a *toolCallAccumulator) finalize() (ToolCall, bool) {
	if a.name == "" {
		return ToolCall{}, false
	}
	args, ok := parseArguments(a.args.String())
	if !ok {
		return ToolCall{}, false
	}
	id := a.id
	if id == "" {
		// Some OpenAI-compatible servers omit the id entirely.
		id = "call_" + uuid.NewString()
	}
	return ToolCall{ID: id, Name: a.name, Arguments: args}, true
}

// parseArguments decodes a tool-call arguments string into an object.
// An empty string counts as an empty argument set.
func parseArguments(raw string) (map[string]any, bool) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, true
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, false
	}
	return args, true
}

// ---------------------------------------------------------------------------
// Non-streaming tool calls
// ---------------------------------------------------------------------------

// wireToolCall is a tool call as it appears in a complete response body.
type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// convertToolCalls parses the structured tool-call list of a non-streaming
// response. Entries whose arguments fail to parse are dropped rather than
// failing the whole response.
func convertToolCalls(wire []wireToolCall) []ToolCall {
	var calls []ToolCall
	for _, tc := range wire {
		if tc.Function.Name == "" {
			continue
		}
		args, ok := parseArguments(tc.Function.Arguments)
		if !ok {
			continue
		}
		id := tc.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		calls = append(calls, ToolCall{ID: id, Name: tc.Function.Name, Arguments: args})
	}
	return calls
}
