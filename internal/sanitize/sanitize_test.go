package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := map[string]string{
		"  plain  ":                           "plain",
		"<b>Bold</b> move":                    "Bold move",
		"<script>alert(1)</script>Headline":   "Headline",
		"Tom &amp; Jerry":                     "Tom & Jerry",
		"multi\n\n  spaced\ttext":             "multi spaced text",
		"":                                    "",
		`<a href="javascript:x()">link</a>`:   "link",
	}
	for input, want := range cases {
		assert.Equal(t, want, Text(input), input)
	}
}

func TestMultilineKeepsBreaks(t *testing.T) {
	assert.Equal(t, "first\nsecond <i>", Multiline("<p>first</p>\r\nsecond &lt;i&gt;"))
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a", URL(" https://example.com/a "))
	assert.Equal(t, "HTTP://example.com", URL("HTTP://example.com"))
	assert.Equal(t, "", URL("javascript:alert(1)"))
	assert.Equal(t, "", URL("ftp://example.com"))
}
