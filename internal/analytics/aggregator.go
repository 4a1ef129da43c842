package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-sales-agent/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionSource is the POS boundary used by every aggregation.
type TransactionSource interface {
	FetchTransactions(ctx context.Context, window models.DateWindow, shopID string) ([]models.Transaction, error)
}

type Aggregator struct {
	source     TransactionSource
	shopID     string
	classifier *ChannelClassifier
	loc        *time.Location
	logger     *slog.Logger
}

func NewAggregator(source TransactionSource, shopID string, classifier *ChannelClassifier, loc *time.Location, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		source:     source,
		shopID:     shopID,
		classifier: classifier,
		loc:        loc,
		logger:     logger,
	}
}

// Aggregate fetches the window's sales and summarizes them.
func (a *Aggregator) Aggregate(ctx context.Context, window models.DateWindow) (*models.SalesMetrics, error) {
	txns, err := a.source.FetchTransactions(ctx, window, a.shopID)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", window.Label, err)
	}

	m := ComputeMetrics(window, txns, a.classifier, a.loc)
	a.logger.Info("sales aggregated",
		"window", window.Label,
		"fetched", len(txns),
		"counted", m.TransactionCount,
		"revenue", m.TotalRevenue,
	)
	return m, nil
}

// counts reports whether a transaction takes part in SalesMetrics. The same
// filter gates counts, channel mix, hourly buckets and line-item money.
func counts(txn models.Transaction) bool {
	return !txn.Voided && txn.Total > 0
}

// ComputeMetrics is a pure function of the window and its transactions.
func ComputeMetrics(window models.DateWindow, txns []models.Transaction, classifier *ChannelClassifier, loc *time.Location) *models.SalesMetrics {
	m := &models.SalesMetrics{
		Window:        window,
		ChannelCounts: make(map[string]int),
	}

	revenue := decimal.Zero
	cost := decimal.Zero
	items := decimal.Zero

	for _, txn := range txns {
		if !counts(txn) {
			continue
		}
		m.TransactionCount++
		m.ChannelCounts[classifier.Classify(txn.Customer)]++
		// Sales with an unreadable completion time still count, but have no hour.
		if !txn.CompleteTime.IsZero() {
			m.HourlyTransactions[txn.CompleteTime.In(loc).Hour()]++
		}

		for _, line := range txn.Lines {
			qty := decimal.NewFromFloat(line.Quantity)
			revenue = revenue.Add(decimal.NewFromFloat(line.Subtotal))
			cost = cost.Add(decimal.NewFromFloat(line.UnitCost).Mul(qty))
			items = items.Add(qty)
		}
	}

	profit := revenue.Sub(cost)
	m.TotalRevenue = revenue.InexactFloat64()
	m.TotalCost = cost.InexactFloat64()
	m.Profit = profit.InexactFloat64()
	m.TotalItems = items.InexactFloat64()

	if !revenue.IsZero() {
		m.ProfitMargin = profit.Div(revenue).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	if m.TransactionCount > 0 {
		n := decimal.NewFromInt(int64(m.TransactionCount))
		m.AverageSale = revenue.Div(n).InexactFloat64()
		m.AverageItems = items.Div(n).InexactFloat64()
	}
	m.PeakHour = PeakHour(m.HourlyTransactions)
	return m
}

// PeakHour is the first hour holding the maximum count.
func PeakHour(hourly [24]int) int {
	peak := 0
	for h := 1; h < len(hourly); h++ {
		if hourly[h] > hourly[peak] {
			peak = h
		}
	}
	return peak
}
