package render

import (
	"fmt"
	"html"
	"strings"
)

const coverLetterPage = `<html>
  <head><meta charset="utf-8"></head>
  <body style="font-family: 'Segoe UI', sans-serif; font-size: 12pt; white-space: pre-wrap; line-height: 1.4;">
%s
  </body>
</html>
`

// CoverLetter wraps the plain-text letter in a minimal printable page.
// The pre-wrap body keeps the letter's paragraph breaks.
func CoverLetter(text string) string {
	body := strings.TrimSpace(text)
	if body == "" {
		body = "(Cover letter intentionally left blank.)"
	}
	return fmt.Sprintf(coverLetterPage, html.EscapeString(body))
}
