package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no script tag",
			input: "Hello, World!",
			want:  "Hello, World!",
		},
		{
			name:  "script tag",
			input: "<script>alert('Hello, World!');</script>",
			want:  "",
		},
		{
			name: "multiple script tags",
			input: `Here is some text.
<script>alert('Hello, world!');</script>
More text.
<SCRIPT SRC="evil.js"></SCRIPT>`,
			want: "Here is some text.\n\nMore text.",
		},
		{
			name:  "script spanning lines",
			input: "before<script>\nalert(1)\n</script>after",
			want:  "beforeafter",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := sanitizeText(tc.input)
			assert.Equal(t, tc.want, output)
		})
	}
}

func TestSanitizeImageURL(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "https://images.example.com/kyoto.jpg", want: "https://images.example.com/kyoto.jpg"},
		{input: "  http://example.com/a.png ", want: "http://example.com/a.png"},
		{input: "javascript:alert(1)", want: ""},
		{input: "/relative/path.jpg", want: ""},
		{input: "ftp://example.com/a.png", want: ""},
		{input: "http://[::1", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeImageURL(tc.input))
		})
	}
}
