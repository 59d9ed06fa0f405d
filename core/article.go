package core

import "regexp"

var articleRef = regexp.MustCompile(`(?i)(?:article|art\.?)\s*(\d+)`)

// ArticleNumber returns the first article number referenced in text,
// as in "article 1457" or "art. 742".
func ArticleNumber(text string) (string, bool) {
	m := articleRef.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
