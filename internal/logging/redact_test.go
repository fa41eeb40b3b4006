package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bearer token",
			input: "request failed: Authorization: Bearer sk-abc123DEF",
			want:  "request failed: Authorization: Bearer [REDACTED]",
		},
		{
			name:  "api key assignment",
			input: `config api_key="sk-proj-ZZZ" rejected`,
			want:  `config api_key="[REDACTED]" rejected`,
		},
		{
			name:  "token field",
			input: "token: tok_4567 expired",
			want:  "token: [REDACTED] expired",
		},
		{
			name:  "cookie header",
			input: "cookie: session=abc123; path=/",
			want:  "cookie: [REDACTED]; path=/",
		},
		{
			name:  "no secrets untouched",
			input: "connection refused: dial tcp 10.0.0.1:443",
			want:  "connection refused: dial tcp 10.0.0.1:443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.input))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("debug").String())
	assert.Equal(t, "INFO", ParseLevel("info").String())
	assert.Equal(t, "WARN", ParseLevel("warn").String())
	assert.Equal(t, "ERROR", ParseLevel("error").String())
	assert.Equal(t, "INFO", ParseLevel("bogus").String())
}
