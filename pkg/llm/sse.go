package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// SSE line decoding
// ---------------------------------------------------------------------------

const (
	sseDataPrefix = "data:"
	sseDoneToken  = "[DONE]"
)

// toolCallDelta is one tool-call fragment inside a delta event.
type toolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// streamDelta carries the incremental fields of one event.
type streamDelta struct {
	Content          string          `json:"content,omitempty"`
	ReasoningContent string          `json:"reasoning_content,omitempty"`
	ToolCalls        []toolCallDelta `json:"tool_calls,omitempty"`
}

type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// streamEvent is one decoded "data:" payload from the stream.
type streamEvent struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Usage   *Usage         `json:"usage,omitempty"`
}

// decodeSSELine decodes one transport line into a stream event. Blank
// lines, comment/heartbeat lines, non-data fields and the [DONE] sentinel
// yield (nil, nil): stream termination is detected by the transport
// closing, never by the sentinel value, so [DONE] is simply dropped. A
// data line whose payload is not valid JSON yields an error, which the
// stream loop logs and skips; some vendors interleave junk between valid
// events, so this is protocol tolerance, not a failure path.
func decodeSSELine(line string) (*streamEvent, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, sseDataPrefix) {
		return nil, nil
	}
	payload := strings.TrimPrefix(line, sseDataPrefix)
	// The SSE format allows one optional space after the field separator.
	payload = strings.TrimPrefix(payload, " ")
	if payload == sseDoneToken {
		return nil, nil
	}
	var evt streamEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return nil, fmt.Errorf("malformed stream payload: %w", err)
	}
	return &evt, nil
}
