package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts HTML to plain text using a proper HTML parser.
// Handles entities, strips tags, and preserves readable text.
func ToText(s string) string {
	return html2text.HTML2Text(s)
}

// Snippet reduces an upstream response body to a single line of at most n
// bytes for error messages. Proxies and rate limiters in front of the APIs
// answer with HTML pages, so markup is stripped first.
func Snippet(body string, n int) string {
	s := body
	if strings.Contains(s, "<") {
		s = ToText(s)
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
