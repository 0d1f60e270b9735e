package markup

import (
	"bytes"
	"html"
	"strings"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// renderedText renders Markdown the way GitHub would and returns its text content.
func renderedText(t *testing.T, src string) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert([]byte(src), &buf))

	text := bluemonday.StrictPolicy().Sanitize(buf.String())
	return strings.TrimSpace(html.UnescapeString(text))
}

func TestToMarkdownCardDescription(t *testing.T) {
	out := ToMarkdown("<p>Card description</p>")

	assert.Equal(t, "Card description", out)
	assert.Equal(t, "Card description", renderedText(t, out))
}

func TestToMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty input", input: "", expected: ""},
		{name: "Whitespace only", input: "  \n\t", expected: ""},
		{name: "Plain text", input: "just text", expected: "just text"},
		{name: "Heading", input: "<h2>Scope</h2>", expected: "## Scope"},
		{name: "Bold", input: "<p><strong>Important</strong></p>", expected: "**Important**"},
		{name: "Link", input: `<p><a href="https://example.com/docs">docs</a></p>`, expected: "[docs](https://example.com/docs)"},
		{name: "Script is dropped", input: "<script>alert(1)</script><p>safe</p>", expected: "safe"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToMarkdown(tc.input))
		})
	}
}

func TestToMarkdownList(t *testing.T) {
	out := ToMarkdown("<ul><li>first</li><li>second</li></ul>")

	assert.Contains(t, out, "- first")
	assert.Contains(t, out, "- second")
}

func TestToMarkdownMalformedInputDegrades(t *testing.T) {
	out := ToMarkdown("<p>unclosed <b>bold")

	assert.NotPanics(t, func() { ToMarkdown("<<<>>>") })
	assert.Contains(t, renderedText(t, out), "unclosed bold")
}
