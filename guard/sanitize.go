package guard

import (
	"strings"
)

// htmlEntities are the escapes Sanitize produces. An ampersand that already
// starts one of them is left alone so sanitizing twice is a no-op.
var htmlEntities = []string{"&amp;", "&lt;", "&gt;", "&quot;", "&#x27;"}

// Sanitize normalizes accepted query text: whitespace runs collapse to a
// single space, control characters (below 0x20 and 0x7F) are removed and
// < > " ' & are HTML-escaped. Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	text = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, text)
	// Removing a control character can join two spaces.
	text = strings.Join(strings.Fields(text), " ")
	return escapeHTML(text)
}

func escapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		case '&':
			if startsWithEntity(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func startsWithEntity(s string) bool {
	for _, e := range htmlEntities {
		if strings.HasPrefix(s, e) {
			return true
		}
	}
	return false
}
