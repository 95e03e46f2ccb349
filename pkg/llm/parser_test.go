package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runParser feeds input to a fresh parser in the given chunk sizes and
// returns the finalized pair.
func runParser(t *testing.T, newParser func() ThinkingParser, input string, chunkSize int) (string, string) {
	t.Helper()
	p := newParser()
	var thinkingParts, contentParts []string
	for i := 0; i < len(input); i += chunkSize {
		end := i + chunkSize
		if end > len(input) {
			end = len(input)
		}
		thinking, content := p.ProcessChunk(input[i:end])
		if thinking != "" {
			thinkingParts = append(thinkingParts, thinking)
		}
		if content != "" {
			contentParts = append(contentParts, content)
		}
	}
	return p.Finalize(thinkingParts, contentParts)
}

func TestStandardParser_SingleChunk(t *testing.T) {
	thinking, content := runParser(t, newStandardParser, "hello <think>reasoning</think>world", 1<<20)
	assert.Equal(t, "reasoning", thinking)
	assert.Equal(t, "hello world", content)
}

func TestStandardParser_ChunkSizeInvariance(t *testing.T) {
	inputs := []string{
		"hello <think>reasoning</think>world",
		"<thinking>long reasoning span here</thinking>short answer",
		"no tags at all, just a plain answer",
		"<think>only reasoning, never closed",
		"answer first <think>then thoughts</think> then more answer",
		"a<think></think>b",
		"prefix <thinking>x</thinking> mid <think>y</think> suffix",
	}
	for _, input := range inputs {
		wantThinking, wantContent := runParser(t, newStandardParser, input, 1<<20)
		for _, size := range []int{1, 2, 3, 5, 7, 16} {
			gotThinking, gotContent := runParser(t, newStandardParser, input, size)
			assert.Equal(t, wantThinking, gotThinking, "thinking mismatch for %q at chunk size %d", input, size)
			assert.Equal(t, wantContent, gotContent, "content mismatch for %q at chunk size %d", input, size)
		}
	}
}

func TestStandardParser_DelimiterSplitAcrossChunks(t *testing.T) {
	p := newStandardParser()
	var thinkingParts, contentParts []string
	collect := func(thinking, content string) {
		if thinking != "" {
			thinkingParts = append(thinkingParts, thinking)
		}
		if content != "" {
			contentParts = append(contentParts, content)
		}
	}

	collect(p.ProcessChunk("hello <thi"))
	collect(p.ProcessChunk("nk>reason"))
	collect(p.ProcessChunk("ing</th"))
	collect(p.ProcessChunk("ink>world"))

	thinking, content := p.Finalize(thinkingParts, contentParts)
	assert.Equal(t, "reasoning", thinking)
	assert.Equal(t, "hello world", content)

	// A partial delimiter must never leak into a fragment.
	for _, part := range contentParts {
		assert.NotContains(t, part, "<thi")
	}
}

func TestStandardParser_HoldbackNeverWithholdsForever(t *testing.T) {
	// Text shorter than the holdback margin only appears at finalize.
	p := newStandardParser()
	thinking, content := p.ProcessChunk("hey")
	assert.Empty(t, thinking)
	assert.Empty(t, content)
	finalThinking, finalContent := p.Finalize(nil, nil)
	assert.Empty(t, finalThinking)
	assert.Equal(t, "hey", finalContent)
}

func TestNemoParser_CloseTagSplitsStream(t *testing.T) {
	thinking, content := runParser(t, newNemoParser, "some reasoning</think>final answer", 1<<20)
	assert.Equal(t, "some reasoning", thinking)
	assert.Equal(t, "final answer", content)
}

func TestNemoParser_ByteByByte(t *testing.T) {
	thinking, content := runParser(t, newNemoParser, "some reasoning</think>final answer", 1)
	assert.Equal(t, "some reasoning", thinking)
	assert.Equal(t, "final answer", content)
}

func TestNemoParser_NoCloseTagReclassifies(t *testing.T) {
	// Without a closing tag the vendor never enabled reasoning: all
	// accumulated thinking is really the answer.
	for _, size := range []int{1, 4, 1 << 20} {
		thinking, content := runParser(t, newNemoParser, "just an answer", size)
		assert.Empty(t, thinking, "chunk size %d", size)
		assert.Equal(t, "just an answer", content, "chunk size %d", size)
	}
}

func TestNemoParser_ThinkingVariantTag(t *testing.T) {
	thinking, content := runParser(t, newNemoParser, "pondering</thinking>done", 3)
	assert.Equal(t, "pondering", thinking)
	assert.Equal(t, "done", content)
}

func TestPassthroughParser(t *testing.T) {
	thinking, content := runParser(t, newPassthroughParser, "<think>not special here</think>", 4)
	assert.Empty(t, thinking)
	assert.Equal(t, "<think>not special here</think>", content)
}

func TestTagHoldbackMargin(t *testing.T) {
	// The margin tracks the delimiter vocabulary: one less than the
	// longest tag, so a split delimiter can always complete.
	longest := 0
	for _, tag := range append(append([]string{}, openTags...), closeTags...) {
		if len(tag) > longest {
			longest = len(tag)
		}
	}
	require.Equal(t, longest-1, tagHoldback)
}

func TestStandardParser_FragmentsMatchFinalize(t *testing.T) {
	// Joining emitted fragments plus the finalize flush must equal the
	// finalize aggregates exactly.
	input := "intro <think>deep thought</think>outro trailing text"
	p := newStandardParser()
	var thinkingParts, contentParts []string
	for i := 0; i < len(input); i += 5 {
		end := i + 5
		if end > len(input) {
			end = len(input)
		}
		thinking, content := p.ProcessChunk(input[i:end])
		if thinking != "" {
			thinkingParts = append(thinkingParts, thinking)
		}
		if content != "" {
			contentParts = append(contentParts, content)
		}
	}
	thinking, content := p.Finalize(thinkingParts, contentParts)
	assert.Equal(t, "deep thought", thinking)
	assert.Equal(t, "intro outro trailing text", content)
}
