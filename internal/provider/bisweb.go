package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
	"github.com/kt1928/building-monitor/internal/metrics"
)

const (
	defaultBISURL = "https://a810-bisweb.nyc.gov/bisweb/PropertyProfileOverviewServlet"

	// The BIS host rejects requests without a browser user agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	requestTimeout = 30 * time.Second
)

// tagPattern strips HTML tags so count labels and their numbers become
// adjacent text, matching the page's visual layout rather than its markup.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

var binPattern = regexp.MustCompile(`BIN#\s*(\d+)`)

// summaryLabels are the three counts expected on every property profile
// page. Absence of any of them means the page is malformed (layout change,
// error interstitial, captcha).
var summaryLabels = []string{"Complaints", "Violations-DOB", "Violations-OATH/ECB"}

// BISClient fetches building summaries by scraping the BIS property
// profile page. Implements BuildingStatus.
type BISClient struct {
	BaseURL string
	client  *http.Client
}

// NewBISClient builds a client with the standard 30s timeout. proxyURL
// routes requests through a forward proxy when non-empty; the scraped
// host rate-limits aggressively by source IP.
func NewBISClient(proxyURL string) (*BISClient, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &BISClient{
		BaseURL: defaultBISURL,
		client:  &http.Client{Timeout: requestTimeout, Transport: transport},
	}, nil
}

// FetchSummary implements BuildingStatus.
func (c *BISClient) FetchSummary(ctx context.Context, key address.BISKey) (building.Summary, error) {
	text, err := c.fetchPage(ctx, key)
	if err != nil {
		return building.Summary{}, err
	}

	counts := make(map[string]int, len(summaryLabels))
	for _, label := range summaryLabels {
		n, ok := extractCount(text, label)
		if !ok {
			metrics.ProviderRequestCounter.WithLabelValues("bis", "malformed").Inc()
			return building.Summary{}, &Error{
				Provider: "bis",
				Code:     ErrCodeMalformed,
				Message:  fmt.Sprintf("count %q not found on page for %s %s boro %s", label, key.HouseNo, key.Street, key.BoroCode),
			}
		}
		counts[label] = n
	}

	metrics.ProviderRequestCounter.WithLabelValues("bis", "ok").Inc()
	return building.Summary{
		Complaints:    counts["Complaints"],
		ViolationsDOB: counts["Violations-DOB"],
		ViolationsECB: counts["Violations-OATH/ECB"],
	}, nil
}

// ResolveBIN implements BuildingStatus. Returns "" when the page loads
// but no BIN cell is present.
func (c *BISClient) ResolveBIN(ctx context.Context, key address.BISKey) (string, error) {
	text, err := c.fetchPage(ctx, key)
	if err != nil {
		return "", err
	}
	m := binPattern.FindStringSubmatch(text)
	if m == nil {
		return "", nil
	}
	return m[1], nil
}

// fetchPage retrieves the property profile page and returns its
// tag-stripped text.
func (c *BISClient) fetchPage(ctx context.Context, key address.BISKey) (string, error) {
	params := url.Values{
		"boro":    {key.BoroCode},
		"houseno": {key.HouseNo},
		"street":  {key.Street},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build bis request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ProviderRequestCounter.WithLabelValues("bis", "error").Inc()
		return "", &Error{Provider: "bis", Code: ErrCodeNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.ProviderRequestCounter.WithLabelValues("bis", "rate_limited").Inc()
		return "", &Error{
			Provider: "bis",
			Code:     ErrCodeRateLimited,
			Message:  fmt.Sprintf("rate limited fetching %s %s boro %s", key.HouseNo, key.Street, key.BoroCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequestCounter.WithLabelValues("bis", "error").Inc()
		return "", &Error{
			Provider: "bis",
			Code:     ErrCodeNetwork,
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderRequestCounter.WithLabelValues("bis", "error").Inc()
		return "", &Error{Provider: "bis", Code: ErrCodeNetwork, Message: "read body", Err: err}
	}

	return tagPattern.ReplaceAllString(string(body), "\n"), nil
}

// extractCount finds "<label> <number>" in tag-stripped page text.
func extractCount(text, label string) (int, bool) {
	re := regexp.MustCompile(regexp.QuoteMeta(label) + `\s+(\d+)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
