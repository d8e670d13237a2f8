// Package yquote fetches index-level quote snapshots from a
// Yahoo-style quote endpoint. It serves double duty: a direct TTM EPS
// source for the fallback chain, and the auxiliary index level + P/E
// inputs the estimator needs.
package yquote

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"marketbrief/internal/metric"
	"marketbrief/internal/ratelimit"
)

// QuoteResponse represents the quote endpoint response
type QuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			TrailingPE                 float64 `json:"trailingPE"`
			EPSTrailingTwelveMonths    float64 `json:"epsTrailingTwelveMonths"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// Client wraps the quote endpoint for one symbol
type Client struct {
	symbol string
	client *resty.Client
}

// NewClient creates a quote client for the given symbol (e.g. "^GSPC")
func NewClient(symbol, baseURL string) *Client {
	return &Client{
		symbol: symbol,
		client: metric.NewHTTPClient(baseURL),
	}
}

func (c *Client) fetchQuote(ctx context.Context) (*QuoteResponse, string, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIQuote); err != nil {
		return nil, "", fmt.Errorf("rate limiter wait: %w", err)
	}

	var result QuoteResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", c.symbol).
		SetResult(&result).
		Get("")

	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch quote for %s: %w", c.symbol, err)
	}

	if !resp.IsSuccess() {
		return nil, "", metric.ClassifyHTTPStatus(resp.StatusCode())
	}

	if result.QuoteResponse.Error != nil {
		return nil, "", metric.NewValidationError(result.QuoteResponse.Error.Description)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, "", metric.NewValidationError(fmt.Sprintf("no quote in response for %s", c.symbol))
	}

	return &result, resp.Request.URL, nil
}

// Snapshot returns the current index level and trailing P/E, the
// auxiliary inputs for EPS estimation.
func (c *Client) Snapshot(ctx context.Context) (indexValue, trailingPE float64, err error) {
	result, _, err := c.fetchQuote(ctx)
	if err != nil {
		return 0, 0, err
	}

	quote := result.QuoteResponse.Result[0]
	if quote.RegularMarketPrice <= 0 {
		return 0, 0, metric.NewValidationError(fmt.Sprintf("no market price for %s", c.symbol))
	}

	return quote.RegularMarketPrice, quote.TrailingPE, nil
}

// EPSSource exposes the quote's trailing-twelve-month EPS as a chain source
type EPSSource struct {
	client *Client
}

// NewEPSSource creates a chain source backed by a quote client
func NewEPSSource(client *Client) *EPSSource {
	return &EPSSource{client: client}
}

// Name identifies the provider
func (s *EPSSource) Name() string {
	return "yquote"
}

// Fetch retrieves the TTM EPS from the quote snapshot
func (s *EPSSource) Fetch(ctx context.Context) (metric.Result, error) {
	result, url, err := s.client.fetchQuote(ctx)
	if err != nil {
		return metric.Result{}, err
	}

	quote := result.QuoteResponse.Result[0]
	if quote.EPSTrailingTwelveMonths == 0 {
		return metric.Result{}, metric.NewValidationError(fmt.Sprintf("TTM EPS not present for %s", s.client.symbol))
	}

	return metric.Result{
		Value:       quote.EPSTrailingTwelveMonths,
		SourceName:  s.Name(),
		SourceURL:   url,
		RetrievedAt: time.Now(),
	}, nil
}
