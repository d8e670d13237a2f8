// Package fmp fetches metrics from the FinancialModelingPrep API.
package fmp

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"marketbrief/internal/metric"
	"marketbrief/internal/ratelimit"
)

// Quote represents one entry of the FinancialModelingPrep quote response
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	EPS    float64 `json:"eps"`
	PE     float64 `json:"pe"`
}

// EPSSource fetches a trailing-twelve-month EPS from FinancialModelingPrep
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
	return "fmp"
}

// Fetch retrieves the TTM EPS from the quote endpoint
func (s *EPSSource) Fetch(ctx context.Context) (metric.Result, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIFMP); err != nil {
		return metric.Result{}, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result []Quote

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("apikey", s.apiKey).
		SetResult(&result).
		Get(fmt.Sprintf("/quote/%s", s.symbol))

	if err != nil {
		return metric.Result{}, fmt.Errorf("failed to fetch quote for %s: %w", s.symbol, err)
	}

	if !resp.IsSuccess() {
		return metric.Result{}, metric.ClassifyHTTPStatus(resp.StatusCode())
	}

	if len(result) == 0 {
		return metric.Result{}, metric.NewValidationError(fmt.Sprintf("empty quote response for %s", s.symbol))
	}

	if result[0].EPS == 0 {
		return metric.Result{}, metric.NewValidationError(fmt.Sprintf("EPS not present in quote for %s", s.symbol))
	}

	return metric.Result{
		Value:       result[0].EPS,
		SourceName:  s.Name(),
		SourceURL:   resp.Request.URL,
		RetrievedAt: time.Now(),
	}, nil
}
