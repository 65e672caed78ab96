package fileconv

import (
	"regexp"
	"strings"
)

var reAnyTag = regexp.MustCompile(`<[^>]*>`)

// htmlToText drops every tag. Entities are left as written and scripts are
// never evaluated.
func htmlToText(text string) (string, error) {
	return strings.TrimSpace(reAnyTag.ReplaceAllString(text, "")), nil
}

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

var htmlToMarkdownRules = []rewrite{
	{regexp.MustCompile(`(?i)<h1[^>]*>(.*?)</h1>`), "# $1\n\n"},
	{regexp.MustCompile(`(?i)<h2[^>]*>(.*?)</h2>`), "## $1\n\n"},
	{regexp.MustCompile(`(?i)<h3[^>]*>(.*?)</h3>`), "### $1\n\n"},
	{regexp.MustCompile(`(?i)<strong[^>]*>(.*?)</strong>`), "**$1**"},
	{regexp.MustCompile(`(?i)<b[^>]*>(.*?)</b>`), "**$1**"},
	{regexp.MustCompile(`(?i)<em[^>]*>(.*?)</em>`), "*$1*"},
	{regexp.MustCompile(`(?i)<i[^>]*>(.*?)</i>`), "*$1*"},
	{regexp.MustCompile(`(?i)<code[^>]*>(.*?)</code>`), "`$1`"},
	{regexp.MustCompile(`(?i)<p[^>]*>(.*?)</p>`), "$1\n\n"},
	{regexp.MustCompile(`(?i)<br[^>]*/?>`), "\n"},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

// htmlToMarkdown is a lightweight tag rewrite. It handles the common inline
// and heading tags and strips the rest.
func htmlToMarkdown(text string) (string, error) {
	for _, r := range htmlToMarkdownRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text), nil
}

var markdownToHTMLRules = []rewrite{
	{regexp.MustCompile(`(?im)^### (.*)$`), "<h3>$1</h3>"},
	{regexp.MustCompile(`(?im)^## (.*)$`), "<h2>$1</h2>"},
	{regexp.MustCompile(`(?im)^# (.*)$`), "<h1>$1</h1>"},
	{regexp.MustCompile(`\*\*(.*)\*\*`), "<strong>$1</strong>"},
	{regexp.MustCompile(`\*(.*)\*`), "<em>$1</em>"},
	{regexp.MustCompile("`([^`]+)`"), "<code>$1</code>"},
}

func markdownToHTML(text string) (string, error) {
	for _, r := range markdownToHTMLRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	text = strings.ReplaceAll(text, "\n\n", "</p><p>")
	text = strings.ReplaceAll(text, "\n", "<br>")
	return "<html><body><p>" + text + "</p></body></html>", nil
}
