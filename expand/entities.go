package expand

import (
	"regexp"
	"strings"
)

var (
	articlePattern = regexp.MustCompile(`(?i)(?:article|art\.?)\s*(\d+(?:\.\d+)?)`)
	rangePattern   = regexp.MustCompile(`(?i)(?:articles|art\.?)\s*(\d+)\s*(?:à|et)\s*(\d+)`)
)

var codeNames = []string{
	"Code civil du Québec", "C.c.Q.", "CCQ",
	"Code de procédure civile", "C.p.c.", "CPC",
	"Code criminel", "C.cr.",
	"Charte des droits et libertés",
}

var legalConcepts = []string{
	"contrat", "responsabilité", "divorce", "testament",
	"succession", "bail", "hypothèque", "servitude",
	"prescription", "délai", "recours", "dommages",
}

// ExtractEntities lists the article references, code names and legal
// concepts mentioned in text, in that order and without repeats.
func ExtractEntities(text string) []string {
	var entities []string
	seen := make(map[string]bool)
	add := func(e string) {
		key := strings.ToLower(e)
		if !seen[key] {
			seen[key] = true
			entities = append(entities, e)
		}
	}

	for _, m := range articlePattern.FindAllStringSubmatch(text, -1) {
		add("article " + m[1])
	}
	for _, m := range rangePattern.FindAllStringSubmatch(text, -1) {
		add("articles " + m[1] + " à " + m[2])
	}

	lower := strings.ToLower(text)
	for _, code := range codeNames {
		if strings.Contains(lower, strings.ToLower(code)) {
			add(code)
		}
	}
	for _, concept := range legalConcepts {
		if strings.Contains(lower, concept) {
			add(concept)
		}
	}
	return entities
}
