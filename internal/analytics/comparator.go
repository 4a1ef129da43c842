package analytics

import (
	"context"
	"time"

	"go-sales-agent/internal/models"

	"golang.org/x/sync/errgroup"
)

type Comparator struct {
	aggregator *Aggregator
	loc        *time.Location
}

func NewComparator(aggregator *Aggregator, loc *time.Location) *Comparator {
	return &Comparator{aggregator: aggregator, loc: loc}
}

// Compare aggregates the current period and the one before it. Both halves are
// needed, so the first failure cancels the other fetch.
func (c *Comparator) Compare(ctx context.Context, period Period, now time.Time) (*models.ComparisonResult, error) {
	currentWindow, previousWindow := period.Windows(now, c.loc)

	var current, previous *models.SalesMetrics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := c.aggregator.Aggregate(gctx, currentWindow)
		current = m
		return err
	})
	g.Go(func() error {
		m, err := c.aggregator.Aggregate(gctx, previousWindow)
		previous = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Compare(period, current, previous), nil
}

// Compare builds the deltas between two already computed summaries.
func Compare(period Period, current, previous *models.SalesMetrics) *models.ComparisonResult {
	return &models.ComparisonResult{
		Period:   period.Name,
		Current:  current,
		Previous: previous,
		Deltas: models.ComparisonDeltas{
			RevenueChangePct:     PercentChange(current.TotalRevenue, previous.TotalRevenue),
			TransactionChangePct: PercentChange(float64(current.TransactionCount), float64(previous.TransactionCount)),
			AverageSaleChange:    current.AverageSale - previous.AverageSale,
		},
	}
}

// PercentChange is 0 against a zero baseline.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
