package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fireview/internal/core"
)

// Fetcher retrieves all transactions of one type inside a window.
type Fetcher interface {
	FetchTransactions(ctx context.Context, txType core.TransactionType, window core.Window) ([]core.Transaction, error)
}

// Orchestrator fans out one fetch per transaction type, joins the results
// and reduces them into a Report.
type Orchestrator struct {
	fetcher Fetcher
	topN    int
	now     func() time.Time
}

func NewOrchestrator(fetcher Fetcher, topN int) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		topN:    topN,
		now:     time.Now,
	}
}

// Run fetches withdrawals, deposits and transfers concurrently and
// aggregates them. All three fetches are in flight simultaneously; the first
// failure cancels the remaining ones and propagates with the failing type
// identified, so a partial dashboard is never produced.
func (o *Orchestrator) Run(ctx context.Context, window core.Window) (*core.Report, error) {
	types := core.TransactionTypes()
	results := make([][]core.Transaction, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, txType := range types {
		i, txType := i, txType
		g.Go(func() error {
			txs, err := o.fetcher.FetchTransactions(gctx, txType, window)
			if err != nil {
				return err
			}
			results[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := Aggregate(results[0], results[1], results[2], window, o.topN)
	rep.GeneratedAt = o.now().UTC()
	return rep, nil
}
