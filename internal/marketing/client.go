// Package marketing provides a client for the external marketing-spend API
// and the helper that merges fetched campaign spend onto revenue trend
// buckets. It is caller-side plumbing: the analytics engine never consumes
// marketing data.
//
// The client retries transient failures (network errors, 5xx responses) with
// a linearly growing backoff before giving up.
package marketing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merrow-labs/shopsight/internal/models"
)

const dateLayout = "2006-01-02"

// Client provides access to the marketing-spend API.
type Client struct {
	apiBaseURL     string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new marketing API client.
func NewClient(apiBaseURL string, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		apiBaseURL: apiBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// campaignSpendWire is the API's JSON shape for one day of campaign spend.
type campaignSpendWire struct {
	CampaignID string          `json:"campaign_id"`
	Date       string          `json:"date"` // YYYY-MM-DD
	Category   string          `json:"category"`
	Spend      decimal.Decimal `json:"spend"`
}

// FetchSpend retrieves per-day campaign spend for the inclusive date range
// [from, to]. Rows that fail validation reject the whole fetch; a partially
// trusted marketing feed is worse than none.
func (c *Client) FetchSpend(ctx context.Context, from, to time.Time) ([]models.CampaignSpend, error) {
	endpoint := fmt.Sprintf("%s/v1/campaign-spend?from=%s&to=%s",
		c.apiBaseURL,
		url.QueryEscape(from.UTC().Format(dateLayout)),
		url.QueryEscape(to.UTC().Format(dateLayout)),
	)

	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign spend: %w", err)
	}
	defer resp.Body.Close()

	var wire []campaignSpendWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode campaign spend: %w", err)
	}

	spends := make([]models.CampaignSpend, 0, len(wire))
	for i, w := range wire {
		id, err := uuid.Parse(w.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid campaign ID %q: %w", i, w.CampaignID, err)
		}
		date, err := time.ParseInLocation(dateLayout, w.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i, w.Date, err)
		}
		spend := models.CampaignSpend{
			CampaignID: id,
			Date:       date,
			Category:   w.Category,
			Spend:      w.Spend,
		}
		if err := spend.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: invalid campaign spend: %w", i, err)
		}
		spends = append(spends, spend)
	}
	return spends, nil
}

// doRequest performs an HTTP GET with retry on network errors and 5xx.
func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		} else if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		} else {
			return resp, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * c.retryDelayBase):
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
