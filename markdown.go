package fileconv

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

var (
	reScript  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	reDataURI = regexp.MustCompile(`(data:[a-zA-Z0-9/+.-]+;base64,)[A-Za-z0-9+/=]{64,}`)

	reTrailingWhitespace = regexp.MustCompile(`[ \t]+\n`)
	reMultipleNewlines   = regexp.MustCompile(`\n{3,}`)
	reCRLF               = regexp.MustCompile(`\r\n?`)
)

// renderMarkdown turns a rich HTML rendering (DOCX bodies, feed entries) into
// normalized CommonMark with GFM tables.
func (e *Engine) renderMarkdown(page string) (string, error) {
	md, err := htmlFragmentToMarkdown(removeScriptAndStyle(page))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	if !e.keepDataURIs {
		md = truncateDataURIs(md)
	}
	return normalizeMarkdown(md), nil
}

func htmlFragmentToMarkdown(page string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	return conv.ConvertString(page)
}

func removeScriptAndStyle(page string) string {
	page = reScript.ReplaceAllString(page, "")
	return reStyle.ReplaceAllString(page, "")
}

// truncateDataURIs shortens long base64 payloads to data:mime/type;base64...
func truncateDataURIs(md string) string {
	return reDataURI.ReplaceAllString(md, "${1}...")
}

// normalizeMarkdown cleans rendered Markdown: LF line endings, no control
// characters, no trailing blanks, at most one empty line in a row.
func normalizeMarkdown(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s) + "\n"
}
