package llm

import "strings"

// ---------------------------------------------------------------------------
// Thinking/content segmentation
// ---------------------------------------------------------------------------

// ParserState tracks where the segmentation currently is. Transitions are
// monotonic: no parser ever returns to StateInitial.
type ParserState int

const (
	// StateInitial means segmentation has not been determined yet.
	StateInitial ParserState = iota
	// StateThinking means we are inside a reasoning span.
	StateThinking
	// StateContent means we are inside the final-answer span.
	StateContent
)

// Delimiter vocabulary shared by the standard and nemo parsers.
var (
	openTags  = []string{"<thinking>", "<think>"}
	closeTags = []string{"</thinking>", "</think>"}
)

// tagHoldback is the number of trailing characters withheld from emission
// while a delimiter might still be completing across a chunk boundary.
// One less than the longest delimiter: any longer suffix either contains a
// full delimiter or cannot be the start of one.
var tagHoldback = longestTagLen() - 1

func longestTagLen() int {
	max := 0
	for _, t := range append(append([]string{}, openTags...), closeTags...) {
		if len(t) > max {
			max = len(t)
		}
	}
	return max
}

// ThinkingParser converts a stream of text chunks into thinking and content
// fragments. Implementations own their state and holdback buffer; the
// caller owns the fragment lists and passes them back at Finalize.
type ThinkingParser interface {
	// ProcessChunk consumes one chunk and returns any text that is now
	// safely classifiable. Either or both results may be empty.
	ProcessChunk(chunk string) (thinking, content string)

	// Finalize flushes held-back text and assembles the final pair from
	// the fragments emitted so far, in order.
	Finalize(thinkingParts, contentParts []string) (thinking, content string)
}

// findAnyTag returns the earliest occurrence of any tag in s and which tag
// matched, or (-1, "").
func findAnyTag(s string, tags []string) (int, string) {
	best := -1
	var match string
	for _, tag := range tags {
		if i := strings.Index(s, tag); i >= 0 && (best < 0 || i < best) {
			best = i
			match = tag
		}
	}
	return best, match
}

// ---------------------------------------------------------------------------
// Standard parser
// ---------------------------------------------------------------------------

// standardParser handles models that wrap reasoning in <think>...</think>
// or <thinking>...</thinking>. Text outside the tags is content.
type standardParser struct {
	state  ParserState
	buffer string
}

func newStandardParser() ThinkingParser {
	return &standardParser{state: StateInitial}
}

func (p *standardParser) ProcessChunk(chunk string) (string, string) {
	p.buffer += chunk

	var thinking, content strings.Builder

	// Resolve every complete transition present in the buffer before
	// applying the holdback. A single chunk can open and close a span.
	for {
		if p.state == StateThinking {
			idx, tag := findAnyTag(p.buffer, closeTags)
			if idx < 0 {
				break
			}
			thinking.WriteString(p.buffer[:idx])
			p.buffer = p.buffer[idx+len(tag):]
			p.state = StateContent
			continue
		}
		idx, tag := findAnyTag(p.buffer, openTags)
		if idx < 0 {
			break
		}
		content.WriteString(p.buffer[:idx])
		p.buffer = p.buffer[idx+len(tag):]
		p.state = StateThinking
	}

	// Emit all but the holdback margin; the remainder could still be the
	// start of a delimiter split across chunk boundaries.
	if len(p.buffer) > tagHoldback {
		safe := p.buffer[:len(p.buffer)-tagHoldback]
		p.buffer = p.buffer[len(p.buffer)-tagHoldback:]
		if p.state == StateThinking {
			thinking.WriteString(safe)
		} else {
			content.WriteString(safe)
		}
	}

	return thinking.String(), content.String()
}

func (p *standardParser) Finalize(thinkingParts, contentParts []string) (string, string) {
	if p.buffer != "" {
		if p.state == StateThinking {
			thinkingParts = append(thinkingParts, p.buffer)
		} else {
			contentParts = append(contentParts, p.buffer)
		}
		p.buffer = ""
	}
	return strings.Join(thinkingParts, ""), strings.Join(contentParts, "")
}

// ---------------------------------------------------------------------------
// Nemo parser
// ---------------------------------------------------------------------------

// nemoParser handles models that never send an opening tag: the stream
// starts inside the reasoning span and only a closing tag marks the switch
// to content. If the stream ends without a closing tag the model did not
// actually reason for this call, and everything is reclassified as content.
// The reclassification keys off the absence of a tag, which is the only
// signal these models provide.
type nemoParser struct {
	state  ParserState
	buffer string
}

func newNemoParser() ThinkingParser {
	return &nemoParser{state: StateThinking}
}

func (p *nemoParser) ProcessChunk(chunk string) (string, string) {
	p.buffer += chunk

	var thinking, content strings.Builder

	if p.state == StateThinking {
		if idx, tag := findAnyTag(p.buffer, closeTags); idx >= 0 {
			thinking.WriteString(p.buffer[:idx])
			p.buffer = p.buffer[idx+len(tag):]
			p.state = StateContent
		}
	}

	if p.state == StateThinking {
		if len(p.buffer) > tagHoldback {
			safe := p.buffer[:len(p.buffer)-tagHoldback]
			p.buffer = p.buffer[len(p.buffer)-tagHoldback:]
			thinking.WriteString(safe)
		}
	} else {
		// Past the closing tag nothing further needs holding back.
		content.WriteString(p.buffer)
		p.buffer = ""
	}

	return thinking.String(), content.String()
}

func (p *nemoParser) Finalize(thinkingParts, contentParts []string) (string, string) {
	if p.state == StateThinking {
		// No closing tag ever arrived: the model skipped reasoning and
		// everything we classified as thinking is really the answer.
		if p.buffer != "" {
			thinkingParts = append(thinkingParts, p.buffer)
			p.buffer = ""
		}
		content := strings.Join(thinkingParts, "") + strings.Join(contentParts, "")
		return "", content
	}
	if p.buffer != "" {
		contentParts = append(contentParts, p.buffer)
		p.buffer = ""
	}
	return strings.Join(thinkingParts, ""), strings.Join(contentParts, "")
}

// ---------------------------------------------------------------------------
// Pass-through parser
// ---------------------------------------------------------------------------

// passthroughParser performs no segmentation: every chunk is content.
type passthroughParser struct{}

func newPassthroughParser() ThinkingParser {
	return passthroughParser{}
}

func (passthroughParser) ProcessChunk(chunk string) (string, string) {
	return "", chunk
}

func (passthroughParser) Finalize(thinkingParts, contentParts []string) (string, string) {
	return strings.Join(thinkingParts, ""), strings.Join(contentParts, "")
}
