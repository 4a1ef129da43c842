package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go-sales-agent/internal/apperror"
	"go-sales-agent/internal/config"
	"go-sales-agent/internal/models"

	"golang.org/x/time/rate"
)

const (
	opFetch         = "the POS API"
	loadRelations   = `["SaleLines","SaleLines.Item","Customer"]`
	maxErrorBodyLen = 512
)

// Client reads completed sales from a Lightspeed-style retail API.
type Client struct {
	baseURL    string
	accountID  string
	token      string
	pageSize   int
	maxPages   int
	timeout    time.Duration
	loc        *time.Location
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(cfg config.POSConfig, loc *time.Location, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		accountID:  cfg.AccountID,
		token:      cfg.Token,
		pageSize:   cfg.PageSize,
		maxPages:   cfg.MaxPages,
		timeout:    cfg.Timeout,
		loc:        loc,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		logger:     logger,
	}
}

// FetchTransactions returns every completed sale whose completeTime falls in the
// window, following pagination. Each page request gets the configured timeout;
// ctx bounds the whole fetch.
func (c *Client) FetchTransactions(ctx context.Context, window models.DateWindow, shopID string) ([]models.Transaction, error) {
	next := c.salesURL(window, shopID)
	var txns []models.Transaction

	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			return nil, apperror.Upstream(opFetch, fmt.Sprintf("more than %d pages of sales for %s", c.maxPages, window.Label), nil)
		}
		// Pages share one limiter with every concurrent fetch.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperror.Upstream(opFetch, fmt.Sprintf("gave up after %d pages", page), err)
		}

		resp, err := c.getPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, s := range resp.Sales {
			txn, err := s.toTransaction()
			if err != nil {
				c.logger.Warn("sale has unreadable completeTime, excluded from hourly stats",
					"sale_id", s.SaleID,
					"complete_time", s.CompleteTime,
				)
			}
			txns = append(txns, txn)
		}
		next = resp.Attributes.Next
	}

	c.logger.Debug("fetched POS sales",
		"window", window.Label,
		"shop_id", shopID,
		"transactions", len(txns),
	)
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, nil
}

func (c *Client) salesURL(window models.DateWindow, shopID string) string {
	q := url.Values{}
	q.Set("completeTime", fmt.Sprintf("><,%s,%s",
		window.Start.In(c.loc).Format(time.RFC3339),
		window.End.In(c.loc).Format(time.RFC3339)))
	q.Set("completed", "true")
	q.Set("load_relations", loadRelations)
	q.Set("limit", fmt.Sprint(c.pageSize))
	if shopID != "" {
		q.Set("shopID", shopID)
	}
	return fmt.Sprintf("%s/Account/%s/Sale.json?%s", c.baseURL, url.PathEscape(c.accountID), q.Encode())
}

func (c *Client) getPage(ctx context.Context, pageURL string) (*saleResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperror.Upstream(opFetch, "could not build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.Upstream(opFetch, "request timed out", err)
		}
		return nil, apperror.Upstream(opFetch, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		c.logger.Warn("POS API returned an error",
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, apperror.Upstream(opFetch, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var page saleResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		if ctx.Err() != nil {
			return nil, apperror.Upstream(opFetch, "request timed out", err)
		}
		return nil, apperror.Parse(opFetch, "malformed sales response", err)
	}
	return &page, nil
}
