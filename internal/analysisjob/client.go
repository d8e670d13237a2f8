package analysisjob

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"marketbrief/internal/metric"
	"marketbrief/internal/ratelimit"
)

// AckResponse is the synchronous acknowledgement returned by a refresh
// trigger. It is only an acceptance receipt, never the payload.
type AckResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// Client talks to one remote analysis job endpoint.
type Client struct {
	apiKey string
	region string
	client *resty.Client
}

// NewClient creates a client for the analysis endpoint. region scopes
// every request to one geographic analysis; empty means the endpoint's
// default scope.
func NewClient(baseURL, apiKey, region string) *Client {
	return &Client{
		apiKey: apiKey,
		region: region,
		client: metric.NewHTTPClient(baseURL),
	}
}

// request starts a request carrying the credentials and region scope
// that every call to the endpoint needs.
func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey)
	if c.region != "" {
		req.SetQueryParam("region", c.region)
	}
	return req
}

// TriggerRefresh asks the remote endpoint to start a new computation.
// The expected response is an immediate acknowledgement; failure to get
// one is terminal for the orchestration.
func (c *Client) TriggerRefresh(ctx context.Context) error {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIAnalysis); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var ack AckResponse

	resp, err := c.request(ctx).
		SetQueryParam("operation", "refresh").
		SetResult(&ack).
		Post("")

	if err != nil {
		return fmt.Errorf("failed to trigger refresh: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("analysis endpoint returned status %d", resp.StatusCode())
	}

	if !ack.Accepted {
		return fmt.Errorf("refresh not accepted: %s", ack.Message)
	}

	return nil
}

// CheckStatus reads the job's current state.
func (c *Client) CheckStatus(ctx context.Context) (Status, error) {
	var status Status

	resp, err := c.request(ctx).
		SetQueryParam("status", "true").
		SetResult(&status).
		Get("")

	if err != nil {
		return Status{}, fmt.Errorf("failed to check status: %w", err)
	}

	if !resp.IsSuccess() {
		return Status{}, fmt.Errorf("analysis endpoint returned status %d", resp.StatusCode())
	}

	if status.State == "" {
		return Status{}, fmt.Errorf("no state in status response")
	}

	return status, nil
}

// FetchResult retrieves the final dataset once the job has completed.
// The body may be structured JSON or an unstructured prose blob; the
// caller decides how to interpret it.
func (c *Client) FetchResult(ctx context.Context) (string, error) {
	resp, err := c.request(ctx).Get("")

	if err != nil {
		return "", fmt.Errorf("failed to fetch result: %w", err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("analysis endpoint returned status %d", resp.StatusCode())
	}

	return resp.String(), nil
}
