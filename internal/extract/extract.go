// Package extract recovers a JSON payload from free-form model output.
//
// Model responses routinely wrap the requested JSON in code fences, lead-in
// prose, or trailing commentary. Extraction strips the decoration, slices to
// the outermost JSON value, and validates it strictly; anything else is a
// ParseError, never a panic.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?i)```(?:json)?")

const snippetLimit = 200

// ParseError reports model output that could not be reduced to valid JSON.
// Snippet carries the offending text, truncated, for diagnostics.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract: invalid JSON near %q: %v", e.Snippet, e.Err)
	}
	return fmt.Sprintf("extract: no JSON value found in %q", e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

// JSON extracts the single JSON value (object or array) embedded in text.
// Whichever of '{' or '[' appears first determines the pairing: an object
// spans to the last '}', an array to the last ']'.
func JSON(text string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))

	objStart := strings.Index(cleaned, "{")
	arrStart := strings.Index(cleaned, "[")

	start, end := -1, -1
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start, end = objStart, strings.LastIndex(cleaned, "}")
	case arrStart >= 0:
		start, end = arrStart, strings.LastIndex(cleaned, "]")
	}
	if start < 0 || end < start {
		return nil, &ParseError{Snippet: snippet(cleaned)}
	}

	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, &ParseError{Snippet: snippet(candidate)}
	}
	return json.RawMessage(candidate), nil
}

// Into extracts the embedded JSON value and decodes it into T. A payload of
// the wrong shape (an array where T is a struct, mistyped fields) is a
// ParseError rather than a partial value.
func Into[T any](text string) (T, error) {
	var v T
	raw, err := JSON(text)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &ParseError{Snippet: snippet(string(raw)), Err: err}
	}
	return v, nil
}

func snippet(s string) string {
	if len(s) > snippetLimit {
		return s[:snippetLimit] + "..."
	}
	return s
}
