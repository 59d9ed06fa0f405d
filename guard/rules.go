package guard

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Matcher inspects a query and reports whether it triggers.
// detail is the human readable reason recorded when ok is true.
type Matcher interface {
	Match(query string) (detail string, ok bool)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(query string) (string, bool)

// Match calls f(query).
func (f MatcherFunc) Match(query string) (string, bool) {
	return f(query)
}

// Rule pairs a Matcher with the score added when it triggers.
type Rule struct {
	Name    string
	Matcher Matcher
	Weight  int
}

// Injection patterns, each worth injectionWeight. Several rely on negative
// lookahead so they are compiled with regexp2 rather than the standard library.
var injectionPatterns = []string{
	// Role and system override
	`(?i)(ignore|forget|disregard)\s+(all\s+)?(previous|above|prior|earlier)\s+(instructions?|prompts?|rules?|directives?)`,
	`(?i)you\s+are\s+(now|a)\s+(?!an?\s+assistant|an?\s+expert)`,
	`(?i)(act|behave|pretend)\s+(as|like)\s+(?!an?\s+assistant|an?\s+expert)`,
	`(?i)system\s+(prompt|message|instruction|role)[:=\s]`,
	`(?i)new\s+(instructions?|rules?|role)[:=\s]`,

	// Prompt extraction
	`(?i)(show|reveal|display|print|output|give\s+me)\s+(the\s+)?(system\s+)?(prompt|instruction|template)`,
	`(?i)what\s+(is|are)\s+your\s+(instructions?|prompts?|system\s+message)`,
	`(?i)(tell|show)\s+me\s+your\s+(base|system|original)\s+prompt`,

	// Markup and script
	`<\s*script[^>]*>`,
	`javascript\s*:`,
	`on(?:load|error|click|mouse)\s*=`,
	`eval\s*\(`,
	`exec\s*\(`,

	// SQL
	`(?i)(union|select|insert|update|delete|drop)\s+(all\s+)?(from|into|table)`,
	`(?i);\s*drop\s+table`,
	`(?i)'\s*or\s+'1'\s*=\s*'1`,

	// Shell
	"&&|\\|\\||;|\\$\\(|`",
	`(?i)\b(curl|wget|nc|netcat|bash|sh|cmd|powershell)\s+`,

	// Jailbreak vocabulary
	`(?i)jailbreak|dan\s+mode|dev\s+mode|god\s+mode`,
	`(?i)(simulate|emulate)\s+(?!a\s+legal\s+scenario)`,
	`(?i)(bypass|disable|turn\s+off|remove)\s+(safety|filter|guardrail|protection)`,

	// Hypothetical and roleplay framing
	`(?i)in\s+a\s+(hypothetical|fictional|alternate)\s+scenario`,
	`(?i)let'?s\s+pretend|what\s+if\s+you\s+were`,
	`(?i)role\s*play(ing)?[\s:]`,
}

const injectionWeight = 5

// Suspicious keywords and their weights.
var suspiciousKeywords = []struct {
	word   string
	weight int
}{
	{"ignore", 3},
	{"disregard", 3},
	{"forget", 3},
	{"bypass", 4},
	{"jailbreak", 5},
	{"prompt", 2},
	{"system", 2},
	{"instruction", 2},
	{"override", 4},
	{"admin", 3},
	{"root", 3},
	{"execute", 3},
	{"eval", 4},
	{"script", 3},
}

const (
	maxSpecialChars   = 10
	specialCharWeight = 3
	maxLineLength     = 500
	longLineWeight    = 2
	minRepeatWords    = 5
	repeatRatio       = 0.3
	repeatMinWordLen  = 3
	repetitionWeight  = 3
	regexMatchTimeout = 100 * time.Millisecond
)

var specialChars = regexp.MustCompile("[<>{}()\\[\\]$`|;]")

// RegexMatcher triggers when the pattern matches anywhere in the query.
type RegexMatcher struct {
	re     *regexp2.Regexp
	detail string
}

// NewRegexMatcher compiles pattern with regexp2. The reason reports the first
// 50 characters of the pattern.
func NewRegexMatcher(pattern string) (*RegexMatcher, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	re.MatchTimeout = regexMatchTimeout
	return &RegexMatcher{
		re:     re,
		detail: "Pattern d'injection détecté: " + truncateRunes(pattern, 50),
	}, nil
}

// Match reports a hit. A match error such as a timeout counts as no match.
func (m *RegexMatcher) Match(query string) (string, bool) {
	ok, err := m.re.MatchString(query)
	if err != nil || !ok {
		return "", false
	}
	return m.detail, true
}

// KeywordMatcher triggers when the keyword appears as a whole word,
// optionally followed by a plural "s". Matching is case-insensitive.
type KeywordMatcher struct {
	keyword string
	re      *regexp.Regexp
}

// NewKeywordMatcher builds a whole-word matcher for keyword.
func NewKeywordMatcher(keyword string) *KeywordMatcher {
	return &KeywordMatcher{
		keyword: keyword,
		re:      regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `s?\b`),
	}
}

func (m *KeywordMatcher) Match(query string) (string, bool) {
	if !m.re.MatchString(query) {
		return "", false
	}
	return fmt.Sprintf("Mot-clé suspect: '%s'", m.keyword), true
}

func specialCharMatcher(query string) (string, bool) {
	n := len(specialChars.FindAllStringIndex(query, -1))
	if n <= maxSpecialChars {
		return "", false
	}
	return fmt.Sprintf("Trop de caractères spéciaux (%d)", n), true
}

func longLineMatcher(query string) (string, bool) {
	longest := 0
	for _, line := range strings.Split(query, "\n") {
		longest = max(longest, utf8.RuneCountInString(line))
	}
	if longest <= maxLineLength {
		return "", false
	}
	return fmt.Sprintf("Ligne très longue (%d chars)", longest), true
}

func repetitionMatcher(query string) (string, bool) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) <= minRepeatWords {
		return "", false
	}
	freq := make(map[string]int)
	most := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) <= repeatMinWordLen {
			continue
		}
		freq[w]++
		most = max(most, freq[w])
	}
	if float64(most) <= float64(len(words))*repeatRatio {
		return "", false
	}
	return "Répétition excessive détectée", true
}

// DefaultRules returns the standard rule table: injection patterns,
// suspicious keywords, then the statistical checks.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(injectionPatterns)+len(suspiciousKeywords)+3)
	for i, p := range injectionPatterns {
		m, err := NewRegexMatcher(p)
		if err != nil {
			// The table is static; a bad pattern is a programming error.
			panic(err)
		}
		rules = append(rules, Rule{Name: fmt.Sprintf("injection_%02d", i), Matcher: m, Weight: injectionWeight})
	}
	for _, kw := range suspiciousKeywords {
		rules = append(rules, Rule{Name: "keyword_" + kw.word, Matcher: NewKeywordMatcher(kw.word), Weight: kw.weight})
	}
	rules = append(rules,
		Rule{Name: "special_chars", Matcher: MatcherFunc(specialCharMatcher), Weight: specialCharWeight},
		Rule{Name: "long_line", Matcher: MatcherFunc(longLineMatcher), Weight: longLineWeight},
		Rule{Name: "repetition", Matcher: MatcherFunc(repetitionMatcher), Weight: repetitionWeight},
	)
	return rules
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
