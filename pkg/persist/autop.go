package persist

import (
	"regexp"
	"strings"
)

var (
	blankLines  = regexp.MustCompile(`\n{2,}`)
	blockOpen   = regexp.MustCompile(`(?i)<(p|ul|ol|li|blockquote|pre|h[1-6]|table|div)[^>]*>`)
	danglingPre = regexp.MustCompile(`(?i)<p>\s*(</?(ul|ol|li|blockquote|pre|h[1-6]|table|div)[^>]*>)`)
	danglingPst = regexp.MustCompile(`(?i)(</?(ul|ol|li|blockquote|pre|h[1-6]|table|div)[^>]*>)\s*</p>`)
)

// autop applies paragraph normalization to editor text: blocks of text
// separated by blank lines become <p> elements and remaining single
// newlines become <br /> tags. Text that already opens with block-level
// markup near a paragraph boundary keeps that markup unwrapped.
func autop(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	blocks := blankLines.Split(text, -1)
	var out strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if blockOpen.MatchString(block) && strings.HasPrefix(block, "<") {
			out.WriteString(block)
			out.WriteString("\n")
			continue
		}
		out.WriteString("<p>")
		out.WriteString(strings.ReplaceAll(block, "\n", "<br />\n"))
		out.WriteString("</p>\n")
	}

	result := out.String()
	result = danglingPre.ReplaceAllString(result, "$1")
	result = danglingPst.ReplaceAllString(result, "$1")
	return strings.TrimRight(result, "\n")
}
