package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// Defaults for a fusion pass.
const (
	DefaultTopK          = 20
	DefaultMinScore      = 0.55
	DefaultContextBudget = 12000
	DefaultPoolSize      = 10
	DefaultTimeout       = 30 * time.Second

	// Separator joins serialized blocks in the fused context.
	Separator = "\n\n---\n\n"

	snippetLen     = 200
	unknownSource  = "Inconnue"
	unknownArticle = "N/A"
)

// Engine runs multi-query retrieval against a vector index.
type Engine struct {
	searcher  storage.VectorSearcher
	embedder  ai.Embedder
	pool      *ants.Pool
	ownsPool  bool
	topK      int
	minScore  float32
	budget    int
	namespace string
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPool runs searches on a shared pool. The caller keeps ownership.
func WithPool(pool *ants.Pool) Option {
	return func(e *Engine) error {
		if pool == nil {
			return fmt.Errorf("pool cannot be nil")
		}
		e.releasePool()
		e.pool = pool
		e.ownsPool = false
		return nil
	}
}

// WithPoolSize sets the size of the engine's own worker pool.
// Default is DefaultPoolSize.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.releasePool()
		e.pool = pool
		e.ownsPool = true
		return nil
	}
}

// WithTopK sets how many matches each search requests.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			return fmt.Errorf("topK must be positive, got %d", k)
		}
		e.topK = k
		return nil
	}
}

// WithMinScore sets the similarity threshold. Matches scoring below it are dropped.
func WithMinScore(score float32) Option {
	return func(e *Engine) error {
		if score < 0 || score > 1 {
			return fmt.Errorf("min score must be in [0,1], got %v", score)
		}
		e.minScore = score
		return nil
	}
}

// WithContextBudget sets the maximum number of characters in the fused text.
func WithContextBudget(chars int) Option {
	return func(e *Engine) error {
		if chars < 1 {
			return fmt.Errorf("context budget must be positive, got %d", chars)
		}
		e.budget = chars
		return nil
	}
}

// WithNamespace restricts searches to one index namespace.
func WithNamespace(namespace string) Option {
	return func(e *Engine) error {
		e.namespace = namespace
		return nil
	}
}

// WithTimeout bounds each embed-and-search call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		e.timeout = d
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default().With("component", "retrieval")
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a fusion engine over searcher and embedder.
func NewEngine(searcher storage.VectorSearcher, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		searcher: searcher,
		embedder: embedder,
		topK:     DefaultTopK,
		minScore: DefaultMinScore,
		budget:   DefaultContextBudget,
		timeout:  DefaultTimeout,
		logger:   slog.Default().With("component", "retrieval"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.Release()
			return nil, err
		}
	}

	if e.pool == nil {
		pool, err := ants.NewPool(DefaultPoolSize)
		if err != nil {
			return nil, err
		}
		e.pool = pool
		e.ownsPool = true
	}
	return e, nil
}

// Release frees the engine's own pool. A shared pool is left alone.
func (e *Engine) Release() {
	e.releasePool()
}

func (e *Engine) releasePool() {
	if e.ownsPool && e.pool != nil {
		e.pool.Release()
	}
	e.pool = nil
	e.ownsPool = false
}

// Fuse runs every query and assembles the fused context.
func (e *Engine) Fuse(ctx context.Context, queries []string) *core.FusedContext {
	return e.FuseWithMonitor(ctx, queries, nil)
}

// FuseWithMonitor is Fuse with callbacks at each stage.
func (e *Engine) FuseWithMonitor(ctx context.Context, queries []string, monitor Monitor) *core.FusedContext {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(queries)

	results := make([][]core.Candidate, len(queries))
	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = e.searchOne(ctx, query, monitor)
		})
		if err != nil {
			wg.Done()
			e.logger.Error("failed to submit search", "query", truncate(query, 50), "err", err)
			monitor.QueryFinished(query, 0, 0, err)
		}
	}
	wg.Wait()

	merged := merge(results)
	monitor.AfterMerge(len(merged))

	fc := e.assemble(merged, monitor)
	e.logger.Info("context fused",
		"queries", len(queries),
		"unique", len(merged),
		"kept", len(fc.Candidates),
		"chars", utf8.RuneCountInString(fc.Text))
	monitor.Finish(fc)
	return fc
}

// searchOne embeds and searches a single query. Errors yield no candidates.
func (e *Engine) searchOne(ctx context.Context, query string, monitor Monitor) []core.Candidate {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logger := e.logger.With("query", truncate(query, 50))

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		logger.Error("error generating embedding for query", "err", err)
		monitor.QueryFinished(query, 0, 0, err)
		return nil
	}

	req := core.SearchRequest{
		Vector:          vector,
		TopK:            e.topK,
		Namespace:       e.namespace,
		IncludeMetadata: true,
	}
	if num, ok := core.ArticleNumber(query); ok {
		req.Filter = map[string]string{core.MetaArticleNum: num}
		logger.Debug("filtering on article number", "article_num", num)
	}

	matches, err := e.searcher.Search(ctx, req)
	if err != nil {
		logger.Error("error querying vector index", "err", err)
		monitor.QueryFinished(query, 0, 0, err)
		return nil
	}

	kept := make([]core.Candidate, 0, len(matches))
	for _, m := range matches {
		if m.Score < e.minScore {
			continue
		}
		kept = append(kept, toCandidate(m))
	}
	logger.Debug("search finished", "raw", len(matches), "kept", len(kept))
	monitor.QueryFinished(query, len(matches), len(kept), nil)
	return kept
}

func toCandidate(m core.Match) core.Candidate {
	source := m.Metadata[core.MetaSource]
	if source == "" {
		source = m.Metadata[core.MetaFilename]
	}
	if source == "" {
		source = unknownSource
	}
	article := m.Metadata[core.MetaArticle]
	if article == "" {
		article = unknownArticle
	}
	return core.Candidate{
		ID:      m.ID,
		Score:   m.Score,
		Source:  source,
		Article: article,
		Text:    m.Metadata[core.MetaText],
		Origin:  core.OriginKnowledgeBase,
	}
}

// merge concatenates per-query results in query order, keeps the first
// instance of each identity and sorts by score descending.
func merge(results [][]core.Candidate) []core.Candidate {
	seen := make(map[string]bool)
	var merged []core.Candidate
	for _, candidates := range results {
		for _, c := range candidates {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			merged = append(merged, c)
		}
	}
	slices.SortStableFunc(merged, func(a, b core.Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return merged
}

// assemble walks the ranked candidates and stops at the first one that
// would push the text over budget.
func (e *Engine) assemble(ranked []core.Candidate, monitor Monitor) *core.FusedContext {
	fc := &core.FusedContext{}
	var parts []string
	total := 0
	sepLen := utf8.RuneCountInString(Separator)

	for _, c := range ranked {
		block := FormatCandidate(c)
		size := utf8.RuneCountInString(block)
		if len(parts) > 0 {
			size += sepLen
		}
		if total+size > e.budget {
			e.logger.Info("context budget reached", "budget", e.budget, "kept", len(parts), "available", len(ranked))
			monitor.BudgetReached(len(parts), len(ranked))
			break
		}
		total += size
		parts = append(parts, block)
		fc.Candidates = append(fc.Candidates, c)
		fc.Info = append(fc.Info, core.CandidateInfo{
			Source:  c.Source,
			Article: c.Article,
			Score:   c.Score,
			Text:    truncate(c.Text, snippetLen),
		})
	}
	fc.Text = strings.Join(parts, Separator)
	return fc
}

// FormatCandidate serializes a knowledge base candidate into its context block.
func FormatCandidate(c core.Candidate) string {
	return fmt.Sprintf("Source: %s\nArticle/Section: %s\nScore de pertinence: %.2f\nTexte: %s",
		c.Source, c.Article, c.Score, c.Text)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
