package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports that model output could not be parsed as the
// expected JSON document. Raw carries the full original text so the
// caller can log or persist it for inspection.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractJSON locates the JSON document inside free-form model output.
// It prefers a ```json fenced block, then any fenced block, then the
// span from the first '{' to the last '}'. The returned string is the
// best candidate; it may still fail to parse.
func ExtractJSON(content string) string {
	if candidate, ok := fencedBlock(content, "```json"); ok {
		return candidate
	}
	if candidate, ok := fencedBlock(content, "```"); ok {
		return candidate
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(content[start : end+1])
	}
	return strings.TrimSpace(content)
}

// fencedBlock returns the text between the first occurrence of marker
// and the next closing fence.
func fencedBlock(content, marker string) (string, bool) {
	start := strings.Index(content, marker)
	if start < 0 {
		return "", false
	}
	start += len(marker)
	end := strings.Index(content[start:], "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(content[start : start+end]), true
}

// UnmarshalResponse extracts the JSON document from content and decodes
// it into out, returning a *ParseError carrying the original text on
// failure.
func UnmarshalResponse(content string, out any) error {
	candidate := ExtractJSON(content)
	if err := json.Unmarshal([]byte(candidate), out); err != nil {
		return &ParseError{Raw: content, Err: err}
	}
	return nil
}
