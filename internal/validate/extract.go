// Package validate implements C6: turning a model's raw text response
// into a typed, rule-checked artifact. Three stages run in sequence —
// structural JSON extraction, per-task schema presence checks, and
// domain rule checks — each capable of failing the whole response back
// to the coordinator for fallback.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrInvalidJSON is returned by ExtractJSON when no well-formed JSON
// object can be found in the text.
var ErrInvalidJSON = fmt.Errorf("validate: no well-formed JSON object found in response")

// ExtractJSON finds the first well-formed JSON object in text, accepting
// either a ```json fenced block or a bare `{...}` object — providers
// disagree on whether to wrap structured output in markdown fencing, so
// both forms must be tolerated.
func ExtractJSON(text string) (json.RawMessage, error) {
	if candidate := extractFenced(text); candidate != "" {
		if raw, ok := tryParse(candidate); ok {
			return raw, nil
		}
	}
	if candidate := extractBraced(text); candidate != "" {
		if raw, ok := tryParse(candidate); ok {
			return raw, nil
		}
	}
	return nil, ErrInvalidJSON
}

func tryParse(candidate string) (json.RawMessage, bool) {
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// extractFenced returns the contents of the first ```json ... ``` (or
// bare ``` ... ```) fenced block, or "" if none is present.
func extractFenced(text string) string {
	const jsonFence = "```json"
	start := strings.Index(text, jsonFence)
	fenceLen := len(jsonFence)
	if start == -1 {
		start = strings.Index(text, "```")
		fenceLen = 3
	}
	if start == -1 {
		return ""
	}
	rest := text[start+fenceLen:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// extractBraced returns the text between the first "{" and its matching
// "}", tracking nesting and ignoring braces inside string literals.
func extractBraced(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string literal, braces don't affect nesting
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
