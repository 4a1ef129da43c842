package models

import (
	"time"
)

// Transaction - a completed sale as reported by the POS
type Transaction struct {
	ID           string     `json:"id"`
	CompleteTime time.Time  `json:"complete_time"`
	Voided       bool       `json:"voided"`
	Total        float64    `json:"total"`
	Subtotal     float64    `json:"subtotal"`
	Customer     *Customer  `json:"customer,omitempty"` // nil for walk-in sales
	Lines        []LineItem `json:"lines"`
}

type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LineItem - one row of a sale. Quantity is fractional for weighted goods.
type LineItem struct {
	ItemID      string  `json:"item_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
	UnitCost    float64 `json:"unit_cost"` // FIFO cost when the POS has it, average cost otherwise
}

// DateWindow - an inclusive [Start, End] range; Label is the start date in the business timezone
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// SalesMetrics - derived summary of one window. ProfitMargin is a percentage.
type SalesMetrics struct {
	Window             DateWindow     `json:"window"`
	TotalRevenue       float64        `json:"total_revenue"`
	TotalCost          float64        `json:"total_cost"`
	Profit             float64        `json:"profit"`
	ProfitMargin       float64        `json:"profit_margin"`
	TransactionCount   int            `json:"transaction_count"`
	TotalItems         float64        `json:"total_items"`
	AverageSale        float64        `json:"average_sale"`
	AverageItems       float64        `json:"average_items"`
	ChannelCounts      map[string]int `json:"channel_counts"`
	HourlyTransactions [24]int        `json:"hourly_transactions"`
	PeakHour           int            `json:"peak_hour"`
}

type ComparisonDeltas struct {
	RevenueChangePct     float64 `json:"revenue_change_pct"`
	TransactionChangePct float64 `json:"transaction_change_pct"`
	AverageSaleChange    float64 `json:"average_sale_change"`
}

type ComparisonResult struct {
	Period   string           `json:"period"`
	Current  *SalesMetrics    `json:"current"`
	Previous *SalesMetrics    `json:"previous"`
	Deltas   ComparisonDeltas `json:"deltas"`
}

type ProductRank struct {
	ItemID      string  `json:"item_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}
