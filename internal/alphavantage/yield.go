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

// TreasuryYieldResponse represents the AlphaVantage API response for treasury yields
type TreasuryYieldResponse struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`
	Unit     string `json:"unit"`
	Data     []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"data"`
}

// YieldSource fetches a treasury yield series point from AlphaVantage
type YieldSource struct {
	apiKey   string
	maturity string // e.g. "10year"
	client   *resty.Client
}

// NewYieldSource creates a new treasury yield source
func NewYieldSource(apiKey, maturity, baseURL string) *YieldSource {
	return &YieldSource{
		apiKey:   apiKey,
		maturity: maturity,
		client:   metric.NewHTTPClient(baseURL),
	}
}

// Name identifies the provider
func (s *YieldSource) Name() string {
	return "alphavantage"
}

// Fetch retrieves the most recent yield in percent. Missing data points
// are published as "." and skipped.
func (s *YieldSource) Fetch(ctx context.Context) (metric.Result, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIAlphaVantage); err != nil {
		return metric.Result{}, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result TreasuryYieldResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   s.apiKey,
			"function": "TREASURY_YIELD",
			"interval": "daily",
			"maturity": s.maturity,
		}).
		SetResult(&result).
		Get("")

	if err != nil {
		return metric.Result{}, fmt.Errorf("failed to fetch %s treasury yield: %w", s.maturity, err)
	}

	if !resp.IsSuccess() {
		return metric.Result{}, metric.ClassifyHTTPStatus(resp.StatusCode())
	}

	for _, point := range result.Data {
		if point.Value == "" || point.Value == "." {
			continue
		}
		yield, err := strconv.ParseFloat(point.Value, 64)
		if err != nil {
			return metric.Result{}, metric.NewValidationError(fmt.Sprintf("failed to parse yield %q", point.Value))
		}
		return metric.Result{
			Value:       yield,
			SourceName:  s.Name(),
			SourceURL:   resp.Request.URL,
			RetrievedAt: time.Now(),
		}, nil
	}

	return metric.Result{}, metric.NewValidationError("no usable data points in yield response")
}
