package llm

import "strings"

// ---------------------------------------------------------------------------
// Model capability dispatch
// ---------------------------------------------------------------------------

// ModelCapability describes how a model family streams reasoning: which
// parser understands its output, which extra request parameters it needs,
// and whether it counts as a reasoning model for token-limit purposes.
type ModelCapability struct {
	Family      string
	NewParser   func() ThinkingParser
	ExtraParams map[string]any
	Reasoning   bool
}

// capabilityRule maps a model-identifier predicate to a capability.
type capabilityRule struct {
	name  string
	match func(model string) bool
	caps  ModelCapability
}

func containsAny(model string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(model, s) {
			return true
		}
	}
	return false
}

// capabilityRules is ordered; the first matching rule wins. New model
// families are added here, not at call sites. Predicates receive the
// lowercased model identifier.
var capabilityRules = []capabilityRule{
	{
		name: "nemotron",
		match: func(model string) bool {
			return containsAny(model, "nemotron", "nemo")
		},
		caps: ModelCapability{
			Family:    "nemotron",
			NewParser: newNemoParser,
			ExtraParams: map[string]any{
				"chat_template_kwargs": map[string]any{"enable_thinking": true},
			},
			Reasoning: true,
		},
	},
	{
		name: "qwen-thinking",
		match: func(model string) bool {
			return strings.Contains(model, "qwen") && containsAny(model, "think", "qwq")
		},
		caps: ModelCapability{
			Family:    "qwen-thinking",
			NewParser: newStandardParser,
			Reasoning: true,
		},
	},
	{
		name: "deepseek-r1",
		match: func(model string) bool {
			return strings.Contains(model, "deepseek") && strings.Contains(model, "r1")
		},
		caps: ModelCapability{
			Family:    "deepseek-r1",
			NewParser: newStandardParser,
			ExtraParams: map[string]any{
				"reasoning": map[string]any{"enabled": true},
			},
			Reasoning: true,
		},
	},
	{
		name: "deepseek",
		match: func(model string) bool {
			return strings.Contains(model, "deepseek")
		},
		caps: ModelCapability{
			Family:    "deepseek",
			NewParser: newStandardParser,
		},
	},
}

// defaultCapability covers every model no rule claims. Standard tag
// scanning is harmless for models that never emit tags.
var defaultCapability = ModelCapability{
	Family:    "standard",
	NewParser: newStandardParser,
}

// CapabilitiesFor resolves a model identifier to its capability. Matching
// is case-insensitive substring, evaluated in rule order.
func CapabilitiesFor(model string) ModelCapability {
	lower := strings.ToLower(model)
	for _, rule := range capabilityRules {
		if rule.match(lower) {
			return rule.caps
		}
	}
	return defaultCapability
}
