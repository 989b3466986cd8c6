package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"action":"answer"}`, `{"action":"answer"}`},
		{"fenced", "```json\n{\"action\":\"clarify\"}\n```", `{"action":"clarify"}`},
		{"fence without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `Sure, here you go: {"quality":"good"} hope that helps`, `{"quality":"good"}`},
		{"nested object", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"braces inside strings", `{"q":"find {cheese}"}`, `{"q":"find {cheese}"}`},
		{"escaped quote in string", `{"q":"say \"hi\" {"}`, `{"q":"say \"hi\" {"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Errors(t *testing.T) {
	_, err := extractJSON("no structured output here")
	assert.Error(t, err)

	_, err = extractJSON(`{"unterminated": true`)
	assert.Error(t, err)
}
