package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
	"github.com/kt1928/building-monitor/internal/metrics"
)

const (
	defaultOpenDataURL = "https://data.cityofnewyork.us"

	serviceRequestsDataset = "/resource/erm2-nwe9.json" // 311 service requests
	dobViolationsDataset   = "/resource/3h2n-5cm9.json" // DOB violations by BIN
	ecbViolationsDataset   = "/resource/6bgk-3dad.json" // ECB violations by BIN
)

// OpenDataClient queries the NYC Open Data (Socrata) endpoints.
// Implements ComplaintFeed.
type OpenDataClient struct {
	BaseURL string
	client  *http.Client
}

// NewOpenDataClient builds a client with the standard 30s timeout.
func NewOpenDataClient() *OpenDataClient {
	return &OpenDataClient{
		BaseURL: defaultOpenDataURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Recent implements ComplaintFeed. Results come back newest first via
// server-side ordering on created_date.
func (c *OpenDataClient) Recent(ctx context.Context, key address.FeedKey, limit int) ([]building.Complaint, error) {
	params := url.Values{
		"$limit": {fmt.Sprintf("%d", limit)},
		"$order": {"created_date DESC"},
		"$where": {fmt.Sprintf(
			"incident_address='%s' AND borough='%s' AND incident_zip='%s'",
			key.Address, key.Borough, key.ZIP,
		)},
	}

	var complaints []building.Complaint
	if err := c.get(ctx, serviceRequestsDataset, params, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// ViolationsByBIN returns DOB violations for a resolved BIN, newest first.
func (c *OpenDataClient) ViolationsByBIN(ctx context.Context, bin string) ([]building.Violation, error) {
	return c.violations(ctx, dobViolationsDataset, bin)
}

// ECBViolationsByBIN returns ECB violations for a resolved BIN, newest first.
func (c *OpenDataClient) ECBViolationsByBIN(ctx context.Context, bin string) ([]building.Violation, error) {
	return c.violations(ctx, ecbViolationsDataset, bin)
}

func (c *OpenDataClient) violations(ctx context.Context, dataset, bin string) ([]building.Violation, error) {
	params := url.Values{
		"$where": {fmt.Sprintf("bin='%s'", bin)},
		"$order": {"issue_date DESC"},
	}
	var violations []building.Violation
	if err := c.get(ctx, dataset, params, &violations); err != nil {
		return nil, err
	}
	return violations, nil
}

func (c *OpenDataClient) get(ctx context.Context, dataset string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+dataset+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build open data request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ProviderRequestCounter.WithLabelValues("311", "error").Inc()
		return &Error{Provider: "311", Code: ErrCodeNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequestCounter.WithLabelValues("311", "error").Inc()
		return &Error{
			Provider: "311",
			Code:     ErrCodeNetwork,
			Message:  fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, dataset),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ProviderRequestCounter.WithLabelValues("311", "malformed").Inc()
		return &Error{Provider: "311", Code: ErrCodeMalformed, Message: "decode response", Err: err}
	}

	metrics.ProviderRequestCounter.WithLabelValues("311", "ok").Inc()
	return nil
}

// interface checks
var (
	_ BuildingStatus = (*BISClient)(nil)
	_ ComplaintFeed  = (*OpenDataClient)(nil)
)
