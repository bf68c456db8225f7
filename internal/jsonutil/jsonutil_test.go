package jsonutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/jsonutil"
)

type diagnosisPayload struct {
	RootCause   string `json:"root_cause"`
	FailureType string `json:"failure_type"`
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantErr  bool
		wantJSON string
	}{
		{
			name:     "plain JSON object",
			text:     `{"key":"value"}`,
			wantJSON: `{"key":"value"}`,
		},
		{
			name:     "JSON embedded in prose",
			text:     `Here is the diagnosis: {"root_cause":"timeout"} Done.`,
			wantJSON: `{"root_cause":"timeout"}`,
		},
		{
			name:     "JSON in markdown code fence",
			text:     "Some explanation first.\n```json\n{\"passed\": true}\n```\n",
			wantJSON: `{"passed": true}`,
		},
		{
			name:     "untagged code fence",
			text:     "```\n[{\"name\":\"empty input\"}]\n```",
			wantJSON: `[{"name":"empty input"}]`,
		},
		{
			name:     "top-level array",
			text:     `suggestions follow [1,2,3] end`,
			wantJSON: `[1,2,3]`,
		},
		{
			name:     "nested object returns outer",
			text:     `{"outer":{"inner":1}}`,
			wantJSON: `{"outer":{"inner":1}}`,
		},
		{
			name:     "brace inside string is not counted",
			text:     `{"msg":"{not a brace}","ok":true}`,
			wantJSON: `{"msg":"{not a brace}","ok":true}`,
		},
		{
			name:     "escaped quote inside string",
			text:     `{"msg":"say \"hello\""}`,
			wantJSON: `{"msg":"say \"hello\""}`,
		},
		{
			name:     "ANSI codes are stripped",
			text:     "\x1b[32m{\"ok\":true}\x1b[0m",
			wantJSON: `{"ok":true}`,
		},
		{
			name:    "no JSON at all",
			text:    "the model refused to answer",
			wantErr: true,
		},
		{
			name:    "unbalanced brace",
			text:    `{"key":"value"`,
			wantErr: true,
		},
		{
			name:    "empty string",
			text:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := jsonutil.Extract(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJSON, string(raw))
		})
	}
}

func TestExtractInto(t *testing.T) {
	text := "The test failed because of a timeout.\n" +
		"```json\n{\"root_cause\":\"connection refused\",\"failure_type\":\"network\"}\n```"

	var d diagnosisPayload
	require.NoError(t, jsonutil.ExtractInto(text, &d))
	assert.Equal(t, "connection refused", d.RootCause)
	assert.Equal(t, "network", d.FailureType)
}

func TestExtractInto_TypeMismatch(t *testing.T) {
	var d diagnosisPayload
	err := jsonutil.ExtractInto(`{"root_cause": 42}`, &d)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestExtract_OversizedInput(t *testing.T) {
	big := make([]byte, 10*1024*1024+1)
	for i := range big {
		big[i] = 'a'
	}
	_, err := jsonutil.Extract(string(big))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}
