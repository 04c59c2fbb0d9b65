package util

import (
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText tries to find the largest JSON object/array in the text.
// Multimodal models routinely wrap their JSON answers in markdown code fences
// or chatty prose; callers parse the returned slice and treat a failure there
// as a malformed response.
func ExtractJsonFromText(text string) string {
	// 1. Try to find markdown code block first
	matches := codeFenceRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 2. Fallback: Find first '{' or '[' and last '}' or ']'
	start := firstIndex(strings.Index(text, "{"), strings.Index(text, "["))
	if start == -1 {
		return text // No JSON found, return raw text
	}

	end := lastIndex(strings.LastIndex(text, "}"), strings.LastIndex(text, "]"))
	if end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func firstIndex(a, b int) int {
	switch {
	case a == -1:
		return b
	case b == -1:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

func lastIndex(a, b int) int {
	if a > b {
		return a
	}
	return b
}
