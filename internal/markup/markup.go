// Package markup converts ticket descriptions into pull request Markdown.
package markup

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"

	"github.com/danielolaszy/prfill/internal/logging"
)

var (
	htmlSanitizer *bluemonday.Policy
	converter     *md.Converter
)

func init() {
	htmlSanitizer = bluemonday.UGCPolicy()
	converter = md.NewConverter("", true, nil)
}

// ToMarkdown converts an HTML ticket description to Markdown.
// Scripts, styles and event handlers are dropped before conversion.
// Returns empty string for empty input or when the input cannot be converted.
func ToMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	out, err := converter.ConvertString(htmlSanitizer.Sanitize(src))
	if err != nil {
		logging.Warn("failed to convert description to markdown", "error", err)
		return ""
	}

	return strings.TrimSpace(out)
}
