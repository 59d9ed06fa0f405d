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


package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/guard"
)

// DefaultTimeout bounds the synthesis call.
const DefaultTimeout = 60 * time.Second

const (
	maxCitations     = 5
	citationsHeading = "\n\n**📚 Sources consultées:**\n"
)

// Guard admits or rejects a question.
type Guard interface {
	Validate(ctx context.Context, text, userID string) (*guard.Verdict, error)
}

// Expander produces the search queries for a question.
type Expander interface {
	Expand(ctx context.Context, question string) []string
}

// Fuser retrieves and fuses knowledge base context.
type Fuser interface {
	Fuse(ctx context.Context, queries []string) *core.FusedContext
}

// WebFallback supplies web context when the knowledge base falls short.
type WebFallback interface {
	ShouldFallback(contextText string) bool
	Search(ctx context.Context, queries []string) string
}

// Orchestrator runs the whole question pipeline.
type Orchestrator struct {
	guard       Guard
	expander    Expander
	fuser       Fuser
	web         WebFallback
	synthesizer ai.Completer
	timeout     time.Duration
	metrics     *Metrics
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithWebFallback enables the web search. Without it the knowledge base is
// the only context source.
func WithWebFallback(web WebFallback) Option {
	return func(o *Orchestrator) error {
		o.web = web
		return nil
	}
}

// WithSynthesisTimeout bounds the synthesis call.
func WithSynthesisTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		o.timeout = d
		return nil
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) error {
		o.metrics = m
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default().With("component", "orchestrator")
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(g Guard, expander Expander, fuser Fuser, synthesizer ai.Completer, opts ...Option) (*Orchestrator, error) {
	switch {
	case g == nil:
		return nil, ErrGuardRequired
	case expander == nil:
		return nil, ErrExpanderRequired
	case fuser == nil:
		return nil, ErrFuserRequired
	case synthesizer == nil:
		return nil, ErrSynthesizerRequired
	}
	o := &Orchestrator{
		guard:       g,
		expander:    expander,
		fuser:       fuser,
		synthesizer: synthesizer,
		timeout:     DefaultTimeout,
		logger:      slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Query answers question on behalf of userID. It always returns an answer
// ending with the disclaimer.
func (o *Orchestrator) Query(ctx context.Context, question, userID string) (answer string, outcome core.QueryOutcome) {
	start := time.Now()
	logger := o.logger.With("user", userID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panic", "panic", r)
			answer = withDisclaimer(technicalErrorMessage)
			outcome = core.QueryOutcome{Error: true}
			o.metrics.outcome(outcomeError)
		}
		o.metrics.observe(time.Since(start).Seconds())
	}()

	verdict, err := o.guard.Validate(ctx, question, userID)
	if err != nil {
		reason := err.Error()
		var rej *guard.RejectionError
		if errors.As(err, &rej) {
			reason = rej.Message
		}
		logger.Warn("question rejected", "reason", reason)
		o.metrics.rejected(err)
		o.metrics.outcome(outcomeRejected)
		return withDisclaimer(reason), core.QueryOutcome{Blocked: true, BlockReason: reason}
	}
	outcome.RiskScore = verdict.Risk.Score
	outcome.Warning = verdict.Warning
	if verdict.Warning {
		o.metrics.warned()
	}

	queries := o.expander.Expand(ctx, verdict.Sanitized)
	outcome.QueriesGenerated = len(queries)

	fused := o.fuser.Fuse(ctx, queries)
	if fused == nil {
		fused = &core.FusedContext{}
	}
	o.metrics.kept(len(fused.Info))

	var webContext string
	if o.web != nil && o.web.ShouldFallback(fused.Text) {
		logger.Info("knowledge base context insufficient, searching the web")
		webContext = o.web.Search(ctx, queries)
		if webContext != "" {
			o.metrics.usedWeb()
		}
	}

	if fused.Empty() && webContext == "" {
		logger.Warn("no context found")
		o.metrics.outcome(outcomeNotFound)
		outcome.UsedKnowledgeBase, outcome.UsedWeb = false, false
		return withDisclaimer(notFoundMessage), outcome
	}

	outcome.UsedKnowledgeBase = !fused.Empty()
	outcome.UsedWeb = webContext != ""
	outcome.ChunksFound = len(fused.Info)

	answer, err = o.synthesize(ctx, fused, webContext, verdict.Sanitized)
	if err != nil {
		logger.Error("synthesis failed", "err", err)
		o.metrics.outcome(outcomeSynthesisError)
		return withDisclaimer(synthesisErrorMessage), outcome
	}

	logger.Info("question answered",
		"knowledge_base", outcome.UsedKnowledgeBase,
		"web", outcome.UsedWeb,
		"chunks", outcome.ChunksFound)
	o.metrics.outcome(outcomeAnswered)
	return answer, outcome
}

func (o *Orchestrator) synthesize(ctx context.Context, fused *core.FusedContext, webContext, question string) (string, error) {
	prompt, err := synthesisPrompt.Format(map[string]any{
		"disclaimer":  Disclaimer,
		"context_kb":  fused.Text,
		"context_web": webContext,
		"question":    question,
	})
	if err != nil {
		return "", fmt.Errorf("render synthesis prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	answer, err := o.synthesizer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if !strings.Contains(answer, Disclaimer) {
		answer += "\n\n" + Disclaimer
	}
	return answer + citations(fused.Info), nil
}

// citations lists the distinct sources among the top candidates.
func citations(info []core.CandidateInfo) string {
	if len(info) == 0 {
		return ""
	}
	if len(info) > maxCitations {
		info = info[:maxCitations]
	}
	var b strings.Builder
	b.WriteString(citationsHeading)
	seen := make(map[string]bool)
	for _, ci := range info {
		if seen[ci.Source] {
			continue
		}
		seen[ci.Source] = true
		fmt.Fprintf(&b, "- %s (pertinence: %.0f%%)\n", ci.Source, float64(ci.Score)*100)
	}
	return b.String()
}
