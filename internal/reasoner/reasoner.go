package reasoner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Reasoner is the natural-language reasoning service that proposes plans
// and structured content. Its internals are opaque; only this contract
// matters to the core.
type Reasoner interface {
	// Complete asks for structured output matching the given schema
	// description. Failures are ErrTimeout or ErrMalformed; callers are
	// expected to recover with a deterministic fallback.
	Complete(ctx context.Context, prompt string, schema string) (json.RawMessage, error)
}

// ErrTimeout indicates the reasoning service did not answer in time.
var ErrTimeout = errors.New("reasoner: timeout")

// ErrMalformed indicates the reasoning service answered with content that
// could not be validated against the requested schema.
var ErrMalformed = errors.New("reasoner: malformed response")

// ExtractJSON pulls the first balanced JSON object out of a free-text
// response, tolerating markdown fences and surrounding prose.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)
	if after, ok := strings.CutPrefix(response, "```json"); ok {
		response = after
	} else if after, ok := strings.CutPrefix(response, "```"); ok {
		response = after
	}
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")

	start := -1
	depth := 0
	for i, ch := range response {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return response[start : i+1], nil
			}
		}
	}
	return "", ErrMalformed
}
