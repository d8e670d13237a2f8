package metric

import (
	"log/slog"
	"time"

	"resty.dev/v3"
)

// Per-source request budget. A source that cannot answer inside this
// window is skipped in favor of the next source in the chain, so the
// budget stays deliberately short.
const defaultRequestTimeout = 15 * time.Second

// NewHTTPClient creates an HTTP client for a source adapter with a
// bounded per-request timeout. Adapters do not retry: a failed request
// is recovered by falling through to the next source in the chain, not
// by re-hitting the same provider.
func NewHTTPClient(baseURL string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultRequestTimeout)

	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		if r.IsError() {
			slog.Debug("provider request failed",
				"url", r.Request.URL,
				"status_code", r.StatusCode())
		}
		return nil
	})

	return client
}
