package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "We need a chatbot for our support team",
			want:  "We need a chatbot for our support team",
		},
		{
			name:  "script block removed",
			input: "hello <script>alert('xss')</script> world",
			want:  "hello  world",
		},
		{
			name:  "script block case insensitive",
			input: "<SCRIPT src='evil.js'>payload</SCRIPT>rest",
			want:  "rest",
		},
		{
			name:  "iframe removed",
			input: "before<iframe src=\"https://evil.test\"></iframe>after",
			want:  "beforeafter",
		},
		{
			name:  "unbalanced script tag removed",
			input: "text <script src='x.js'> trailing",
			want:  "text  trailing",
		},
		{
			name:  "javascript uri stripped",
			input: "click javascript:alert(1) here",
			want:  "click alert(1) here",
		},
		{
			name:  "inline event handler stripped",
			input: "<img src=x onerror=\"alert(1)\">",
			want:  "<img src=x>",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  padded  ",
			want:  "padded",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.input))
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	in := []string{
		"reduce ticket volume",
		"<script>alert(1)</script>",
		"  integrate with CRM  ",
	}

	out := SanitizeSlice(in)

	assert.Equal(t, []string{"reduce ticket volume", "integrate with CRM"}, out)
}

func TestSanitizeSliceEmptyInput(t *testing.T) {
	assert.Nil(t, SanitizeSlice(nil))
	assert.Nil(t, SanitizeSlice([]string{"", "<script></script>"}))
}
