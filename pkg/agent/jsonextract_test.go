package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPrefersJSONFence(t *testing.T) {
	content := "Here is the plan:\n```json\n{\"a\": 1}\n```\nand some trailing prose {not json}"
	assert.Equal(t, `{"a": 1}`, ExtractJSON(content))
}

func TestExtractJSONAnyFence(t *testing.T) {
	content := "```\n{\"b\": 2}\n```"
	assert.Equal(t, `{"b": 2}`, ExtractJSON(content))
}

func TestExtractJSONBraceSpan(t *testing.T) {
	content := `The result is {"c": {"nested": true}} as requested.`
	assert.Equal(t, `{"c": {"nested": true}}`, ExtractJSON(content))
}

func TestFencedAndBareParseIdentically(t *testing.T) {
	bare := `{"tasks": [{"task_id": "T1"}]}`
	fenced := "```json\n" + bare + "\n```"

	var fromBare, fromFenced map[string]any
	require.NoError(t, UnmarshalResponse(bare, &fromBare))
	require.NoError(t, UnmarshalResponse(fenced, &fromFenced))
	assert.Equal(t, fromBare, fromFenced)
}

func TestUnmarshalResponseParseError(t *testing.T) {
	content := "I could not produce a plan, sorry."
	var out map[string]any
	err := UnmarshalResponse(content, &out)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	// The raw text survives for offline inspection.
	assert.Equal(t, content, parseErr.Raw)
}
