// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/juris/core"
)

// Length limits on the trimmed query.
const (
	DefaultMinChars = 3
	DefaultMaxChars = 2000
	DefaultMaxWords = 300
)

// OutOfDomainMessage is shown when the relevance classifier rejects a query.
const OutOfDomainMessage = "❌ Je ne peux répondre qu'aux questions juridiques concernant le droit québécois ou canadien. Votre question ne semble pas porter sur un sujet juridique."

// Scorer computes the risk assessment of a raw query.
type Scorer interface {
	Score(query string) core.RiskAssessment
}

// Classifier decides whether a query is in the legal domain.
type Classifier interface {
	IsInDomain(ctx context.Context, query string) bool
}

// Limiter admits or denies a request for a user at a given time.
type Limiter interface {
	Admit(userID string, now time.Time) error
}

// Verdict describes an admitted query.
type Verdict struct {
	Query     core.Query
	Sanitized string
	Risk      core.RiskAssessment
	// Warning is set when the query accrued some risk below the rejection threshold.
	Warning bool
}

// InputGuard composes the admission checks.
type InputGuard struct {
	minChars   int
	maxChars   int
	maxWords   int
	limiter    Limiter
	scorer     Scorer
	classifier Classifier
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an InputGuard.
type Option func(*InputGuard) error

// WithLengthLimits overrides the character and word limits.
func WithLengthLimits(minChars, maxChars, maxWords int) Option {
	return func(g *InputGuard) error {
		if minChars < 0 || maxChars < minChars || maxWords <= 0 {
			return fmt.Errorf("invalid length limits %d/%d/%d", minChars, maxChars, maxWords)
		}
		g.minChars, g.maxChars, g.maxWords = minChars, maxChars, maxWords
		return nil
	}
}

// WithClock replaces time.Now for rate limiting.
func WithClock(now func() time.Time) Option {
	return func(g *InputGuard) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		g.now = now
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(g *InputGuard) error {
		if logger == nil {
			logger = slog.Default().With("component", "input-guard")
		}
		g.logger = logger
		return nil
	}
}

// NewInputGuard creates a guard from its three collaborators.
func NewInputGuard(limiter Limiter, scorer Scorer, classifier Classifier, opts ...Option) (*InputGuard, error) {
	if limiter == nil || scorer == nil || classifier == nil {
		return nil, errors.New("guard: limiter, scorer and classifier are required")
	}
	g := &InputGuard{
		minChars:   DefaultMinChars,
		maxChars:   DefaultMaxChars,
		maxWords:   DefaultMaxWords,
		limiter:    limiter,
		scorer:     scorer,
		classifier: classifier,
		now:        time.Now,
		logger:     slog.Default().With("component", "input-guard"),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Validate runs the admission checks in order and stops at the first failure.
// Rejections are returned as *RejectionError. The length check runs before
// any external call is made.
func (g *InputGuard) Validate(ctx context.Context, text, userID string) (*Verdict, error) {
	q := core.NewQuery(text, userID)
	logger := g.logger.With("user", userID)

	if err := g.checkLength(q); err != nil {
		logger.Info("query rejected", "stage", "length", "err", err)
		return nil, err
	}

	if err := g.limiter.Admit(userID, g.now()); err != nil {
		rej := g.rateRejection(err)
		logger.Warn("query rejected", "stage", "rate_limit", "err", err)
		return nil, rej
	}

	risk := g.scorer.Score(q.Text)
	if risk.Malicious {
		logger.Warn("query rejected", "stage", "injection", "score", risk.Score)
		return nil, &RejectionError{
			Err:     ErrInjectionDetected,
			Message: "🚨 Requête rejetée pour des raisons de sécurité. " + risk.Reason(),
		}
	}

	if !g.classifier.IsInDomain(ctx, q.Text) {
		logger.Info("query rejected", "stage", "relevance")
		return nil, &RejectionError{Err: ErrOutOfDomain, Message: OutOfDomainMessage}
	}

	v := &Verdict{
		Query:     q,
		Sanitized: Sanitize(q.Text),
		Risk:      risk,
		Warning:   risk.Score > 0,
	}
	if v.Warning {
		logger.Warn("query accepted with moderate risk", "score", risk.Score, "reasons", risk.Reason())
	}
	logger.Debug("query accepted", "score", risk.Score)
	return v, nil
}

func (g *InputGuard) checkLength(q core.Query) error {
	chars := q.CharCount()
	if chars < g.minChars {
		return &RejectionError{
			Err:     ErrTooShort,
			Message: fmt.Sprintf("❌ Requête trop courte (minimum %d caractères)", g.minChars),
		}
	}
	if chars > g.maxChars {
		return &RejectionError{
			Err:     ErrTooLong,
			Message: fmt.Sprintf("❌ Requête trop longue (maximum %d caractères, vous avez %d)", g.maxChars, chars),
		}
	}
	if words := q.WordCount(); words > g.maxWords {
		return &RejectionError{
			Err:     ErrTooManyWords,
			Message: fmt.Sprintf("❌ Trop de mots (maximum %d mots, vous avez %d)", g.maxWords, words),
		}
	}
	return nil
}

func (g *InputGuard) rateRejection(err error) *RejectionError {
	perMinute, perHour := DefaultPerMinute, DefaultPerHour
	if rl, ok := g.limiter.(*RateLimiter); ok {
		perMinute, perHour = rl.PerMinute(), rl.PerHour()
	}
	msg := fmt.Sprintf("⏳ Trop de requêtes! Limite: %d/minute. Attendez quelques secondes.", perMinute)
	if errors.Is(err, ErrPerHourExceeded) {
		msg = fmt.Sprintf("⏳ Limite horaire atteinte! Maximum: %d/heure. Revenez plus tard.", perHour)
	}
	return &RejectionError{
		Err:     fmt.Errorf("%w: %w", ErrRateLimited, err),
		Message: msg,
	}
}
