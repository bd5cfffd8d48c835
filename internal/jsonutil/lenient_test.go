package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: "{\"a\": 1}",
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\": 1}\n```",
			want: "{\"a\": 1}",
		},
		{
			name: "no fence",
			in:   "{\"a\": 1}",
			want: "{\"a\": 1}",
		},
		{
			name: "surrounding whitespace",
			in:   "  ```json\n{\"a\": 1}\n```  ",
			want: "{\"a\": 1}",
		},
		{
			name: "plain text",
			in:   "こんにちは",
			want: "こんにちは",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFence(tt.in))
		})
	}
}

func TestDecodeLenient(t *testing.T) {
	var out struct {
		Text string `json:"text"`
	}

	err := DecodeLenient("```json\n{\"text\": \"やあ\"}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, "やあ", out.Text)

	assert.Error(t, DecodeLenient("not json at all", &out))
	assert.Error(t, DecodeLenient("", &out))
	assert.Error(t, DecodeLenient("```\n```", &out))
}
