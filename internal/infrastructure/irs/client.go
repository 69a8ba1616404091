package irs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/gnavadev/fraud-watch/internal/domain/port"
)

const searchPath = "/nonprofits/api/v2/search.json"

// ClientConfig configures the ProPublica nonprofit explorer client.
type ClientConfig struct {
	BaseURL    string
	State      string
	Timeout    time.Duration
	RetryCount int
}

// organization is one hit of the nonprofit search endpoint.
type organization struct {
	Revenue *decimal.Decimal `json:"revenue_amount"`
	EIN     json.Number      `json:"ein"`
	Name    string           `json:"name"`
}

type searchResponse struct {
	Organizations []organization `json:"organizations"`
	TotalResults  int            `json:"total_results"`
}

// Client implements port.NonprofitLookup against the ProPublica nonprofit
// explorer API.
type Client struct {
	rest   *resty.Client
	logger *slog.Logger
	state  string
}

// NewClient creates a registry client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json")

	return &Client{rest: rc, logger: logger, state: cfg.State}
}

// Lookup searches the registry for name and accepts the first hit when its
// name is similar enough. A response with no acceptable hit is not an error.
func (c *Client) Lookup(ctx context.Context, name string) (port.NonprofitMatch, error) {
	term := searchTerm(name)
	if term == "" {
		return port.NonprofitMatch{}, nil
	}

	params := map[string]string{"q": term}
	if c.state != "" {
		params["state[id]"] = c.state
	}

	var result searchResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get(searchPath)
	if err != nil {
		return port.NonprofitMatch{}, fmt.Errorf("irs: search %q: %w", term, err)
	}
	// The explorer answers 404 when a query has no results.
	if resp.StatusCode() == http.StatusNotFound {
		return port.NonprofitMatch{}, nil
	}
	if resp.IsError() {
		return port.NonprofitMatch{}, fmt.Errorf("irs: search %q: unexpected status %d", term, resp.StatusCode())
	}

	if len(result.Organizations) == 0 {
		return port.NonprofitMatch{}, nil
	}

	org := result.Organizations[0]
	score := Similarity(name, org.Name)
	if score <= MatchThreshold {
		c.logger.Debug("irs hit rejected",
			"name", name,
			"candidate", org.Name,
			"similarity", score,
		)
		return port.NonprofitMatch{}, nil
	}

	return port.NonprofitMatch{
		Found:   true,
		EIN:     org.EIN.String(),
		Name:    org.Name,
		Revenue: org.Revenue,
	}, nil
}
