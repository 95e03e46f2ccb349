package utils

import (
	"regexp"
	"strings"
)

// SensitivePatterns matches credential material that must never reach logs.
var SensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password|auth)\s*[:=]\s*['"]?([a-zA-Z0-9_\-+/=]{8,})['"]?`),
	regexp.MustCompile(`(?i)(bearer\s+)([a-zA-Z0-9_\-+/=]{20,})`),
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9]{20,})`),
	regexp.MustCompile(`(?i)(authorization:\s*bearer\s+)([a-zA-Z0-9_\-+/=]{20,})`),
}

// SanitizeLog removes sensitive information from log messages.
func SanitizeLog(message string) string {
	result := message
	for _, pattern := range SensitivePatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			parts := strings.SplitN(match, ":", 2)
			if len(parts) == 2 {
				return parts[0] + ": ***REDACTED***"
			}
			if strings.Contains(strings.ToLower(match), "sk-") {
				return "sk-***REDACTED***"
			}
			return "***REDACTED***"
		})
	}
	return result
}
