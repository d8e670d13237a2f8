package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"

	"marketbrief/internal/metric"
	"marketbrief/internal/ratelimit"
)

// EarningsResponse represents the AlphaVantage API response for reported earnings
type EarningsResponse struct {
	Symbol            string `json:"symbol"`
	QuarterlyEarnings []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		ReportedDate     string `json:"reportedDate"`
		ReportedEPS      string `json:"reportedEPS"`
	} `json:"quarterlyEarnings"`
}

// EPSSource fetches the most recently reported EPS from AlphaVantage.
// The figure is raw as published and may be a single-quarter number;
// the validator's wrong-unit band handles the quarterly/TTM correction.
type EPSSource struct {
	apiKey string
	symbol string
	client *resty.Client
}

// NewEPSSource creates a new EPS source
func NewEPSSource(apiKey, symbol, baseURL string) *EPSSource {
	return &EPSSource{
		apiKey: apiKey,
		symbol: symbol,
		client: metric.NewHTTPClient(baseURL),
	}
}

// Name identifies the provider
func (s *EPSSource) Name() string {
	return "alphavantage"
}

// Fetch retrieves the latest reported EPS
func (s *EPSSource) Fetch(ctx context.Context) (metric.Result, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIAlphaVantage); err != nil {
		return metric.Result{}, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result EarningsResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   s.apiKey,
			"function": "EARNINGS",
			"symbol":   s.symbol,
		}).
		SetResult(&result).
		Get("")

	if err != nil {
		return metric.Result{}, fmt.Errorf("failed to fetch earnings for %s: %w", s.symbol, err)
	}

	if !resp.IsSuccess() {
		return metric.Result{}, metric.ClassifyHTTPStatus(resp.StatusCode())
	}

	if len(result.QuarterlyEarnings) == 0 {
		return metric.Result{}, metric.NewValidationError(fmt.Sprintf("no earnings in response for %s", s.symbol))
	}

	eps, err := strconv.ParseFloat(result.QuarterlyEarnings[0].ReportedEPS, 64)
	if err != nil {
		return metric.Result{}, metric.NewValidationError(fmt.Sprintf("failed to parse EPS %q", result.QuarterlyEarnings[0].ReportedEPS))
	}

	return metric.Result{
		Value:       eps,
		SourceName:  s.Name(),
		SourceURL:   resp.Request.URL,
		RetrievedAt: time.Now(),
	}, nil
}
