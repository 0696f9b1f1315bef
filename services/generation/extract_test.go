package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAdviceChatChoices(t *testing.T) {
	text, shape, err := ExtractAdvice([]byte(`{"choices":[{"message":{"role":"assistant","content":"- Water early"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "- Water early", text)
	assert.Equal(t, ShapeChatChoices, shape)
}

func TestExtractAdviceOutputField(t *testing.T) {
	text, shape, err := ExtractAdvice([]byte(`{"choices":[],"output":"• Mulch beds"}`))
	require.NoError(t, err)
	assert.Equal(t, "• Mulch beds", text)
	assert.Equal(t, ShapeOutput, shape)

	text, shape, err = ExtractAdvice([]byte(`{"choices":[{"message":{"content":null}}],"output":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, text)
	assert.Equal(t, ShapeOutput, shape)
}

func TestExtractAdviceRawFallback(t *testing.T) {
	text, shape, err := ExtractAdvice([]byte(`{"unexpected":true}`))
	require.NoError(t, err)
	assert.Equal(t, `{"unexpected":true}`, text)
	assert.Equal(t, ShapeRaw, shape)

	long := `{"blob":"` + strings.Repeat("é", 3000) + `"}`
	text, shape, err = ExtractAdvice([]byte(long))
	require.NoError(t, err)
	assert.Equal(t, ShapeRaw, shape)
	assert.Equal(t, maxRawAdviceRunes, len([]rune(text)))

	text, shape, err = ExtractAdvice([]byte("plain text answer"))
	require.NoError(t, err)
	assert.Equal(t, "plain text answer", text)
	assert.Equal(t, ShapeRaw, shape)
}

func TestExtractAdviceEmpty(t *testing.T) {
	_, _, err := ExtractAdvice([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestResponseShapeString(t *testing.T) {
	assert.Equal(t, "chat_choices", ShapeChatChoices.String())
	assert.Equal(t, "output", ShapeOutput.String())
	assert.Equal(t, "raw", ShapeRaw.String())
}
