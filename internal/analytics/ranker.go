package analytics

import (
	"context"
	"fmt"
	"slices"

	"go-sales-agent/internal/models"

	"github.com/shopspring/decimal"
)

const unknownDescription = "Unknown"

type Ranker struct {
	source TransactionSource
	shopID string
}

func NewRanker(source TransactionSource, shopID string) *Ranker {
	return &Ranker{source: source, shopID: shopID}
}

func (r *Ranker) TopProducts(ctx context.Context, window models.DateWindow, n int) ([]models.ProductRank, error) {
	txns, err := r.source.FetchTransactions(ctx, window, r.shopID)
	if err != nil {
		return nil, fmt.Errorf("rank products %s: %w", window.Label, err)
	}
	return RankProducts(txns, n), nil
}

// RankProducts totals every non-voided line per item and returns the top n by
// revenue. Equal revenue keeps first-seen order; n <= 0 returns all items.
func RankProducts(txns []models.Transaction, n int) []models.ProductRank {
	type tally struct {
		itemID      string
		description string
		quantity    decimal.Decimal
		revenue     decimal.Decimal
	}

	index := make(map[string]int)
	var tallies []*tally

	for _, txn := range txns {
		if txn.Voided {
			continue
		}
		for _, line := range txn.Lines {
			i, ok := index[line.ItemID]
			if !ok {
				i = len(tallies)
				index[line.ItemID] = i
				tallies = append(tallies, &tally{itemID: line.ItemID})
			}
			t := tallies[i]
			if t.description == "" {
				t.description = line.Description
			}
			t.quantity = t.quantity.Add(decimal.NewFromFloat(line.Quantity))
			t.revenue = t.revenue.Add(decimal.NewFromFloat(line.Subtotal))
		}
	}

	slices.SortStableFunc(tallies, func(a, b *tally) int {
		return b.revenue.Cmp(a.revenue)
	})
	if n > 0 && len(tallies) > n {
		tallies = tallies[:n]
	}

	ranks := make([]models.ProductRank, 0, len(tallies))
	for _, t := range tallies {
		desc := t.description
		if desc == "" {
			desc = unknownDescription
		}
		ranks = append(ranks, models.ProductRank{
			ItemID:      t.itemID,
			Description: desc,
			Quantity:    t.quantity.InexactFloat64(),
			Revenue:     t.revenue.InexactFloat64(),
		})
	}
	return ranks
}
