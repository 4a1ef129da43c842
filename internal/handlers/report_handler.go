package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go-sales-agent/internal/analytics"
	"go-sales-agent/internal/apperror"
	"go-sales-agent/internal/assistant"
	"go-sales-agent/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultTopN    = 10
	defaultTopDays = 7
	maxTopDays     = 90
)

// ReportHandler exposes the analytics engine as JSON. A nil sources means the
// POS is not configured and every report answers 503.
type ReportHandler struct {
	sources *assistant.Sources
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
}

type TopProductsResponse struct {
	Window   models.DateWindow    `json:"window"`
	Products []models.ProductRank `json:"products"`
}

func NewReportHandler(sources *assistant.Sources, loc *time.Location, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{sources: sources, loc: loc, now: time.Now, logger: logger}
}

// GetToday handles GET /api/reports/today.
func (h *ReportHandler) GetToday(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	metrics, err := h.sources.Aggregator.Aggregate(c.Request.Context(), analytics.Today(h.now(), h.loc))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetComparison handles GET /api/reports/compare?period=daily|weekly|monthly.
func (h *ReportHandler) GetComparison(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	period, ok := analytics.ParsePeriod(c.DefaultQuery("period", analytics.Daily.Name))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be daily, weekly or monthly"})
		return
	}
	result, err := h.sources.Comparator.Compare(c.Request.Context(), period, h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTopProducts handles GET /api/reports/top?n=10&days=7.
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	n, err := intQuery(c, "n", defaultTopN)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
		return
	}
	days, err := intQuery(c, "days", defaultTopDays)
	if err != nil || days < 1 || days > maxTopDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
		return
	}

	window := analytics.LastNDays(h.now(), days, h.loc)
	ranks, err := h.sources.Ranker.TopProducts(c.Request.Context(), window, n)
	if err != nil {
		h.fail(c, err)
		return
	}
	if ranks == nil {
		ranks = []models.ProductRank{}
	}
	c.JSON(http.StatusOK, TopProductsResponse{Window: window, Products: ranks})
}

func (h *ReportHandler) ready(c *gin.Context) bool {
	if h.sources != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": apperror.UserMessage(apperror.Configuration("reports", "the POS integration is not configured"))})
	return false
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": apperror.UserMessage(err)})
}

func statusFor(err error) int {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case apperror.KindConfiguration:
		return http.StatusServiceUnavailable
	case apperror.KindUpstream, apperror.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
