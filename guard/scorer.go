package guard

import (
	"log/slog"

	"github.com/poiesic/juris/core"
)

// PatternRiskScorer sums the weights of every rule a query triggers.
// It holds no per-query state and is safe for concurrent use.
type PatternRiskScorer struct {
	rules  []Rule
	logger *slog.Logger
}

// ScorerOption configures a PatternRiskScorer.
type ScorerOption func(*PatternRiskScorer) error

// WithRules replaces the default rule table.
func WithRules(rules []Rule) ScorerOption {
	return func(s *PatternRiskScorer) error {
		s.rules = rules
		return nil
	}
}

// WithExtraRules appends rules to the table.
func WithExtraRules(rules ...Rule) ScorerOption {
	return func(s *PatternRiskScorer) error {
		s.rules = append(s.rules, rules...)
		return nil
	}
}

// WithScorerLogger sets a custom logger. A nil logger selects the default.
func WithScorerLogger(logger *slog.Logger) ScorerOption {
	return func(s *PatternRiskScorer) error {
		if logger == nil {
			logger = slog.Default().With("component", "risk-scorer")
		}
		s.logger = logger
		return nil
	}
}

// NewPatternRiskScorer creates a scorer over DefaultRules unless overridden.
func NewPatternRiskScorer(opts ...ScorerOption) (*PatternRiskScorer, error) {
	s := &PatternRiskScorer{
		rules:  DefaultRules(),
		logger: slog.Default().With("component", "risk-scorer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Score evaluates every rule in table order.
func (s *PatternRiskScorer) Score(query string) core.RiskAssessment {
	var ra core.RiskAssessment
	for _, rule := range s.rules {
		detail, ok := rule.Matcher.Match(query)
		if !ok {
			continue
		}
		ra.Score += rule.Weight
		ra.Reasons = append(ra.Reasons, detail)
		s.logger.Debug("rule triggered", "rule", rule.Name, "weight", rule.Weight)
	}
	ra.Malicious = ra.Score >= core.MaliciousThreshold
	if ra.Malicious {
		s.logger.Warn("injection attempt detected",
			"score", ra.Score,
			"reasons", ra.Reason(),
			"query", truncateRunes(query, 200))
	}
	return ra
}
