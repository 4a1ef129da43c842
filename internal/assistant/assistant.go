package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-sales-agent/internal/analytics"
	"go-sales-agent/internal/apperror"
	"go-sales-agent/internal/models"
)

const (
	topProductsFetch   = 10
	topProductsDisplay = 5
	topProductsDays    = 7
)

type MetricsAggregator interface {
	Aggregate(ctx context.Context, window models.DateWindow) (*models.SalesMetrics, error)
}

type PeriodComparator interface {
	Compare(ctx context.Context, period analytics.Period, now time.Time) (*models.ComparisonResult, error)
}

type ProductRanker interface {
	TopProducts(ctx context.Context, window models.DateWindow, n int) ([]models.ProductRank, error)
}

type LanguageModel interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Sources groups the POS-backed analytics. A nil Sources means the POS is not configured.
type Sources struct {
	Aggregator MetricsAggregator
	Comparator PeriodComparator
	Ranker     ProductRanker
}

// Snapshot is the data gathered for one question. Each branch is filled
// independently; a failed branch leaves its field empty and an entry in Errors.
type Snapshot struct {
	Today       *models.SalesMetrics                `json:"today,omitempty"`
	Comparisons map[string]*models.ComparisonResult `json:"comparisons,omitempty"`
	TopProducts []models.ProductRank                `json:"top_products,omitempty"`
	TopWindow   *models.DateWindow                  `json:"top_window,omitempty"`
	Errors      map[string]string                   `json:"errors,omitempty"`
}

type Assistant struct {
	sources      *Sources
	llm          LanguageModel
	rules        []Rule
	systemPrompt string
	loc          *time.Location
	now          func() time.Time
	logger       *slog.Logger
}

// New wires the assistant. sources and llm may be nil; answers then degrade
// to LLM-only or data-only text.
func New(sources *Sources, llm LanguageModel, businessName string, loc *time.Location, logger *slog.Logger) *Assistant {
	return &Assistant{
		sources:      sources,
		llm:          llm,
		rules:        DefaultRules,
		systemPrompt: SystemPrompt(businessName),
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
}

func (a *Assistant) LiveDataEnabled() bool {
	return a.sources != nil
}

// Ask answers a free-text question. It never returns an error: failures become
// a short explanation in the reply text.
func (a *Assistant) Ask(ctx context.Context, question string) string {
	needs := Route(question, a.rules)
	a.logger.Info("question routed", "needs", fmt.Sprint(needs))

	var block string
	switch {
	case len(needs) == 0:
		block = fallbackSection
	case a.sources == nil:
		block = posUnavailableNote
	default:
		snap := a.Gather(ctx, needs)
		block = Render(snap, needs)
	}

	if a.llm == nil {
		if len(needs) == 0 {
			return apperror.UserMessage(apperror.Configuration("assistant", "no language model is configured, so I can only report sales numbers"))
		}
		return llmUnavailableNote + "\n\n" + block
	}

	answer, err := a.llm.Generate(ctx, a.systemPrompt, UserPrompt(block, question))
	if err != nil {
		a.logger.Error("language model failed", "error", err)
		if len(needs) == 0 || a.sources == nil {
			return apperror.UserMessage(err)
		}
		return apperror.UserMessage(err) + " Here is the raw data instead:\n\n" + block
	}
	return answer
}

// Gather fetches every branch the needs call for concurrently. Branches are
// isolated: one failing never discards the others.
func (a *Assistant) Gather(ctx context.Context, needs []Need) *Snapshot {
	snap := &Snapshot{
		Comparisons: make(map[string]*models.ComparisonResult),
		Errors:      make(map[string]string),
	}
	if a.sources == nil {
		snap.Errors["pos"] = apperror.UserMessage(apperror.Configuration("pos", "the POS integration is not configured"))
		return snap
	}

	now := a.now()
	type comparison struct {
		need   Need
		period analytics.Period
		result *models.ComparisonResult
		err    error
	}
	var comparisons []*comparison
	for _, c := range []struct {
		need   Need
		period analytics.Period
	}{
		{NeedDailyComparison, analytics.Daily},
		{NeedWeeklyComparison, analytics.Weekly},
		{NeedMonthlyComparison, analytics.Monthly},
	} {
		if hasNeed(needs, c.need) {
			comparisons = append(comparisons, &comparison{need: c.need, period: c.period})
		}
	}

	var (
		today    *models.SalesMetrics
		todayErr error
		top      []models.ProductRank
		topErr   error
		wg       sync.WaitGroup
	)

	if hasNeed(needs, NeedTodayMetrics, NeedChannelMix) {
		wg.Go(func() {
			today, todayErr = a.sources.Aggregator.Aggregate(ctx, analytics.Today(now, a.loc))
		})
	}
	if hasNeed(needs, NeedTopProducts) {
		window := analytics.LastNDays(now, topProductsDays, a.loc)
		snap.TopWindow = &window
		wg.Go(func() {
			top, topErr = a.sources.Ranker.TopProducts(ctx, window, topProductsFetch)
		})
	}
	for _, c := range comparisons {
		wg.Go(func() {
			c.result, c.err = a.sources.Comparator.Compare(ctx, c.period, now)
		})
	}
	wg.Wait()

	a.record(snap, "today", todayErr)
	snap.Today = today
	a.record(snap, NeedTopProducts.String(), topErr)
	snap.TopProducts = top
	for _, c := range comparisons {
		a.record(snap, c.need.String(), c.err)
		if c.result != nil {
			snap.Comparisons[c.period.Name] = c.result
		}
	}
	return snap
}

func (a *Assistant) record(snap *Snapshot, branch string, err error) {
	if err == nil {
		return
	}
	a.logger.Warn("data branch failed", "branch", branch, "error", err)
	snap.Errors[branch] = apperror.UserMessage(err)
}
