package llm

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// ---------------------------------------------------------------------------
// SSE stream consumption
// ---------------------------------------------------------------------------

// consumeStream drives one SSE response to completion: lines are decoded
// into delta events, content text runs through the segmentation parser,
// reasoning_content bypasses it as a dedicated thinking stream, and
// tool-call fragments accumulate until the stream closes. Callbacks fire
// synchronously in arrival order; cancellation stops them promptly.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, parser ThinkingParser, cb StreamCallbacks) (*Response, error) {
	reader := bufio.NewReader(body)

	var thinkingParts, contentParts []string
	var reasoning strings.Builder
	var acc toolCallAccumulator
	var usage Usage

	thinkingStarted := false
	thinkingEnded := false

	startThinking := func() {
		if !thinkingStarted {
			thinkingStarted = true
			if cb.OnThinkingStarted != nil {
				cb.OnThinkingStarted()
			}
		}
	}
	endThinking := func() {
		if thinkingStarted && !thinkingEnded {
			thinkingEnded = true
			if cb.OnThinkingEnded != nil {
				cb.OnThinkingEnded()
			}
		}
	}
	emitThinking := func(text string) {
		if text == "" {
			return
		}
		startThinking()
		if cb.OnThinkingChunk != nil {
			cb.OnThinkingChunk(text)
		}
	}
	emitContent := func(text string) {
		if text == "" {
			return
		}
		if thinkingStarted {
			endThinking()
		}
		if cb.OnContentChunk != nil {
			cb.OnContentChunk(text)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, newError(ErrTransport, err)
		}

		line, readErr := reader.ReadString('\n')
		if line != "" {
			evt, decodeErr := decodeSSELine(line)
			switch {
			case decodeErr != nil:
				c.logger.Debugw("skipping stream line", "error", decodeErr)
			case evt != nil:
				c.handleEvent(evt, parser, &thinkingParts, &contentParts, &reasoning, &acc, &usage, cb, emitThinking, emitContent)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, newError(ErrTransport, readErr)
		}
	}

	thinking, content := parser.Finalize(thinkingParts, contentParts)

	// Deliver any text the parser held back against a split delimiter.
	// When the nemo parser reclassifies (close tag never arrived) the
	// fragments already went out as thinking chunks; re-emitting them as
	// content would duplicate live output, so only the aggregate changes.
	joinedThinking := strings.Join(thinkingParts, "")
	joinedContent := strings.Join(contentParts, "")
	reclassified := joinedThinking != "" && thinking == ""
	if !reclassified {
		if strings.HasPrefix(thinking, joinedThinking) {
			emitThinking(thinking[len(joinedThinking):])
		}
		if strings.HasPrefix(content, joinedContent) {
			emitContent(content[len(joinedContent):])
		}
	}
	endThinking()

	resp := &Response{
		Thinking: mergeThinking(reasoning.String(), thinking),
		Content:  content,
		Usage:    usage,
	}
	if call, ok := acc.finalize(); ok {
		resp.ToolCalls = []ToolCall{call}
	}
	return resp, nil
}

// handleEvent routes one decoded delta event.
func (c *Client) handleEvent(evt *streamEvent, parser ThinkingParser, thinkingParts, contentParts *[]string, reasoning *strings.Builder, acc *toolCallAccumulator, usage *Usage, cb StreamCallbacks, emitThinking, emitContent func(string)) {
	if evt.Usage != nil {
		*usage = *evt.Usage
	}
	if len(evt.Choices) == 0 {
		return
	}
	delta := evt.Choices[0].Delta

	// Dedicated reasoning field: a thinking stream in its own right,
	// independent of tag scanning on the content stream.
	if delta.ReasoningContent != "" {
		reasoning.WriteString(delta.ReasoningContent)
		emitThinking(delta.ReasoningContent)
	}

	if delta.Content != "" {
		thinking, content := parser.ProcessChunk(delta.Content)
		if thinking != "" {
			*thinkingParts = append(*thinkingParts, thinking)
			emitThinking(thinking)
		}
		if content != "" {
			*contentParts = append(*contentParts, content)
			emitContent(content)
		}
	}

	for _, tc := range delta.ToolCalls {
		acc.ingest(tc, cb.OnToolCallStarted)
	}
}
