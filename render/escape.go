package render

import "strings"

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape replaces & < > " ' with their HTML entities. Every value interpolated
// into rendered markup goes through Escape first.
func Escape(s string) string {
	return htmlReplacer.Replace(s)
}
