package retrieval

import "github.com/poiesic/juris/core"

// Monitor provides hooks to observe a fusion pass.
// QueryFinished is called from worker goroutines and must be safe for
// concurrent use.
type Monitor interface {
	Start(queries []string)
	QueryFinished(query string, raw, kept int, err error)
	AfterMerge(unique int)
	BudgetReached(kept, available int)
	Finish(fc *core.FusedContext)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ []string)                          {}
func (n *noopMonitor) QueryFinished(_ string, _, _ int, _ error) {}
func (n *noopMonitor) AfterMerge(_ int)                          {}
func (n *noopMonitor) BudgetReached(_, _ int)                    {}
func (n *noopMonitor) Finish(_ *core.FusedContext)               {}
