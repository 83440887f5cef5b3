package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
)

// BuildingStatus is the building-status side of the monitor: summary
// counts and BIN resolution, both keyed by a parsed BIS address.
type BuildingStatus interface {
	// FetchSummary returns the current complaint and violation counts
	// for a building. A page missing any expected count is an
	// ErrCodeMalformed failure, distinct from transport errors but
	// counted against the same retry budget.
	FetchSummary(ctx context.Context, key address.BISKey) (building.Summary, error)

	// ResolveBIN extracts the building identifier number from the
	// property profile page. Returns "" without error when the page
	// loads but carries no BIN.
	ResolveBIN(ctx context.Context, key address.BISKey) (string, error)
}

// ComplaintFeed is the 311 side of the monitor.
type ComplaintFeed interface {
	// Recent returns up to limit complaints for the address, newest
	// first (ordered by creation date descending).
	Recent(ctx context.Context, key address.FeedKey, limit int) ([]building.Complaint, error)
}

// Error codes for provider failures.
const (
	// ErrCodeNetwork covers transport failures, timeouts and non-2xx
	// responses other than 429.
	ErrCodeNetwork = "NETWORK"

	// ErrCodeRateLimited is HTTP 429 from the scraped host. Logged
	// distinctly, retried identically to other failures.
	ErrCodeRateLimited = "RATE_LIMITED"

	// ErrCodeMalformed means the response arrived but the expected
	// fields could not be located in it.
	ErrCodeMalformed = "MALFORMED"
)

// Error is a failed provider call with a code for log classification.
type Error struct {
	Provider string // "bis" or "311"
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider: %s: %s: %v", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s provider: %s: %s", e.Provider, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a rate-limit provider error.
func IsRateLimited(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == ErrCodeRateLimited
}

// IsMalformed reports whether err is a malformed-response provider error.
func IsMalformed(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == ErrCodeMalformed
}
