package assistant

import (
	"fmt"
	"slices"
	"strings"

	"go-sales-agent/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	fallbackSection = "No specific sales data was requested. If the user wants store numbers, " +
		"ask them to say what they need: today's sales, a comparison with yesterday, last week or last month, " +
		"top-selling products, or the sales channel mix."
	posUnavailableNote = "Live sales data is unavailable: the POS integration is not configured. " +
		"Answer from general knowledge and say that live numbers could not be checked."
	llmUnavailableNote = "The language model is not configured, so here are the raw numbers:"
)

var printer = message.NewPrinter(language.AmericanEnglish)

func money(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

func signedMoney(v float64) string {
	if v >= 0 {
		return "+" + money(v)
	}
	return money(v)
}

func signedPct(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

func hourLabel(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}

// Render turns a snapshot into the text block handed to the language model,
// one section per need in the order the needs were routed.
func Render(snap *Snapshot, needs []Need) string {
	var sections []string
	for _, n := range needs {
		sections = append(sections, renderNeed(snap, n))
	}
	return strings.Join(sections, "\n\n")
}

func renderNeed(snap *Snapshot, n Need) string {
	switch n {
	case NeedTodayMetrics:
		if snap.Today == nil {
			return unavailable("TODAY'S SALES", snap.Errors["today"])
		}
		return renderMetrics("TODAY'S SALES ("+snap.Today.Window.Label+")", snap.Today)
	case NeedChannelMix:
		if snap.Today == nil {
			return unavailable("SALES CHANNELS", snap.Errors["today"])
		}
		return renderChannels(snap.Today)
	case NeedTopProducts:
		if snap.Errors[n.String()] != "" {
			return unavailable("TOP PRODUCTS", snap.Errors[n.String()])
		}
		return renderTopProducts(snap)
	case NeedDailyComparison, NeedWeeklyComparison, NeedMonthlyComparison:
		title := strings.ToUpper(strings.TrimSuffix(n.String(), "_comparison")) + " COMPARISON"
		name := strings.TrimSuffix(n.String(), "_comparison")
		res, ok := snap.Comparisons[name]
		if !ok {
			return unavailable(title, snap.Errors[n.String()])
		}
		return renderComparison(title, res)
	}
	return ""
}

func unavailable(title, reason string) string {
	if reason == "" {
		reason = "no data returned."
	}
	return fmt.Sprintf("=== %s ===\nData unavailable: %s", title, reason)
}

func renderMetrics(title string, m *models.SalesMetrics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s ===\n", title)
	fmt.Fprintf(&sb, "Revenue: %s\n", money(m.TotalRevenue))
	fmt.Fprintf(&sb, "Cost: %s | Profit: %s | Margin: %.1f%%\n", money(m.TotalCost), money(m.Profit), m.ProfitMargin)
	fmt.Fprintf(&sb, "Transactions: %d | Items sold: %s\n", m.TransactionCount, quantity(m.TotalItems))
	fmt.Fprintf(&sb, "Average sale: %s | Average items per sale: %.1f\n", money(m.AverageSale), m.AverageItems)
	if m.TransactionCount > 0 {
		fmt.Fprintf(&sb, "Peak hour: %s (%d transactions)", hourLabel(m.PeakHour), m.HourlyTransactions[m.PeakHour])
	} else {
		sb.WriteString("Peak hour: none (no sales yet)")
	}
	return sb.String()
}

func renderChannels(m *models.SalesMetrics) string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(m.ChannelCounts))
	for name, count := range m.ChannelCounts {
		entries = append(entries, entry{name, count})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return strings.Compare(a.name, b.name)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== SALES CHANNELS (%s) ===", m.Window.Label)
	if len(entries) == 0 {
		sb.WriteString("\nNo transactions yet.")
	}
	for _, e := range entries {
		share := float64(e.count) / float64(m.TransactionCount) * 100
		fmt.Fprintf(&sb, "\n%s: %d (%.1f%%)", e.name, e.count, share)
	}
	sb.WriteString("\nChannels are inferred from customer account names and may undercount delivery orders.")
	return sb.String()
}

func renderComparison(title string, res *models.ComparisonResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s ===\n", title)
	for _, p := range []struct {
		label string
		m     *models.SalesMetrics
	}{{"Current", res.Current}, {"Previous", res.Previous}} {
		fmt.Fprintf(&sb, "%s (from %s): revenue %s, %d transactions, average sale %s, margin %.1f%%\n",
			p.label, p.m.Window.Label, money(p.m.TotalRevenue), p.m.TransactionCount, money(p.m.AverageSale), p.m.ProfitMargin)
	}
	fmt.Fprintf(&sb, "Revenue change: %s\n", signedPct(res.Deltas.RevenueChangePct))
	fmt.Fprintf(&sb, "Transaction change: %s\n", signedPct(res.Deltas.TransactionChangePct))
	fmt.Fprintf(&sb, "Average sale change: %s", signedMoney(res.Deltas.AverageSaleChange))
	return sb.String()
}

func renderTopProducts(snap *Snapshot) string {
	var sb strings.Builder
	sb.WriteString("=== TOP PRODUCTS")
	if snap.TopWindow != nil {
		fmt.Fprintf(&sb, " (last %d days, since %s)", topProductsDays, snap.TopWindow.Label)
	}
	sb.WriteString(" ===")

	shown := snap.TopProducts
	if len(shown) > topProductsDisplay {
		shown = shown[:topProductsDisplay]
	}
	if len(shown) == 0 {
		sb.WriteString("\nNo product sales in this period.")
	}
	for i, p := range shown {
		fmt.Fprintf(&sb, "\n%d. %s: %s (%s sold)", i+1, p.Description, money(p.Revenue), quantity(p.Quantity))
	}
	return sb.String()
}

func quantity(q float64) string {
	if q == float64(int64(q)) {
		return printer.Sprintf("%d", int64(q))
	}
	return printer.Sprintf("%.2f", q)
}
