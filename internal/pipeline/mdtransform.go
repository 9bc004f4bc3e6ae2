package pipeline

import "regexp"

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Three or more newlines means two or more blank lines.
	blankLineRun = regexp.MustCompile(`\n{3,}`)
)

// NormalizeMarkdown converts \r\n and \r to \n and collapses runs of blank
// lines to a single blank line. Template output with skipped sections
// leaves such runs behind.
func NormalizeMarkdown(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	return blankLineRun.ReplaceAllString(content, "\n\n")
}
