package llm

import "strings"

// ---------------------------------------------------------------------------
// Non-streaming thinking extraction
// ---------------------------------------------------------------------------

// StripThinkingTags separates reasoning from answer text in one complete
// response. It handles three shapes seen in the wild: properly paired
// <think>...</think> / <thinking>...</thinking> spans, an orphan closing
// tag whose preceding text is reasoning (close-only model families), and
// stray unmatched tag tokens left over from truncated output. If nothing
// at all can be extracted the original text is returned untouched as
// content so no information is lost.
func StripThinkingTags(text string) (thinking, content string) {
	var thinkingParts []string

	// Pass 1: remove paired spans, collecting their interiors.
	remainder := text
	var kept strings.Builder
	for {
		openIdx, openTag := findAnyTag(remainder, openTags)
		if openIdx < 0 {
			kept.WriteString(remainder)
			break
		}
		afterOpen := remainder[openIdx+len(openTag):]
		closeIdx, closeTag := findAnyTag(afterOpen, closeTags)
		if closeIdx < 0 {
			// Unpaired open tag; leave it for the stray-token pass.
			kept.WriteString(remainder)
			break
		}
		kept.WriteString(remainder[:openIdx])
		if inner := afterOpen[:closeIdx]; strings.TrimSpace(inner) != "" {
			thinkingParts = append(thinkingParts, strings.TrimSpace(inner))
		}
		remainder = afterOpen[closeIdx+len(closeTag):]
	}
	rest := kept.String()

	// Pass 2: a leading span ending in a closing tag that never had an
	// opening one is reasoning too.
	if closeIdx, closeTag := findAnyTag(rest, closeTags); closeIdx >= 0 {
		openIdx, _ := findAnyTag(rest, openTags)
		if openIdx < 0 || openIdx > closeIdx {
			if lead := strings.TrimSpace(rest[:closeIdx]); lead != "" {
				thinkingParts = append(thinkingParts, lead)
			}
			rest = rest[closeIdx+len(closeTag):]
		}
	}

	// Pass 3: strip any stray tag tokens that remain.
	for _, tag := range append(append([]string{}, openTags...), closeTags...) {
		rest = strings.ReplaceAll(rest, tag, "")
	}

	content = strings.TrimSpace(rest)
	thinking = strings.Join(thinkingParts, "\n")

	if thinking == "" && content == "" {
		return "", text
	}
	return thinking, content
}
