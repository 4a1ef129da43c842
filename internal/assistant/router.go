package assistant

import "strings"

// Need is one piece of sales data a question asks for.
type Need int

const (
	NeedTodayMetrics Need = iota
	NeedDailyComparison
	NeedWeeklyComparison
	NeedMonthlyComparison
	NeedTopProducts
	NeedChannelMix
)

func (n Need) String() string {
	switch n {
	case NeedTodayMetrics:
		return "today"
	case NeedDailyComparison:
		return "daily_comparison"
	case NeedWeeklyComparison:
		return "weekly_comparison"
	case NeedMonthlyComparison:
		return "monthly_comparison"
	case NeedTopProducts:
		return "top_products"
	case NeedChannelMix:
		return "channel_mix"
	default:
		return "unknown"
	}
}

// Rule fires when the lower-cased question contains any keyword.
type Rule struct {
	Name     string
	Keywords []string
	Needs    []Need
}

var DefaultRules = []Rule{
	{Name: "today", Keywords: []string{"today"}, Needs: []Need{NeedTodayMetrics}},
	{Name: "compare", Keywords: []string{"compare", "yesterday"}, Needs: []Need{NeedDailyComparison}},
	{Name: "top", Keywords: []string{"top", "best", "selling"}, Needs: []Need{NeedTopProducts}},
	{Name: "week", Keywords: []string{"week"}, Needs: []Need{NeedWeeklyComparison}},
	{Name: "month", Keywords: []string{"month"}, Needs: []Need{NeedMonthlyComparison}},
	{Name: "channel", Keywords: []string{"channel", "delivery"}, Needs: []Need{NeedChannelMix}},
}

// Route evaluates every rule once and returns the union of their needs in rule
// order. An empty result means no rule matched.
func Route(question string, rules []Rule) []Need {
	q := strings.ToLower(question)
	seen := make(map[Need]bool)
	var needs []Need

	for _, rule := range rules {
		if !matchesAny(q, rule.Keywords) {
			continue
		}
		for _, n := range rule.Needs {
			if !seen[n] {
				seen[n] = true
				needs = append(needs, n)
			}
		}
	}
	return needs
}

func matchesAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func hasNeed(needs []Need, want ...Need) bool {
	for _, n := range needs {
		for _, w := range want {
			if n == w {
				return true
			}
		}
	}
	return false
}
