package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
)

// BIN resolution outcomes.
const (
	BINAlreadyStored = "already_stored" // store had a BIN, nothing fetched
	BINCached        = "cached"         // taken from the configured address entry
	BINScraped       = "scraped"        // resolved from the BIS page
	BINNotFound      = "not_found"      // page loaded, no BIN on it
	BINParseError    = "parse_error"    // address could not be parsed
	BINFetchError    = "fetch_error"    // page fetch failed
)

// BINResult is the outcome of resolving one address's BIN.
type BINResult struct {
	Address string
	BIN     string
	Status  string
}

// binLookupPacing spaces out scrapes against the rate-limited host.
const binLookupPacing = 1 * time.Second

// ResolveBINs fills in missing building identifiers for the given
// addresses: configured BINs are stored directly, the rest are scraped
// from the BIS page. Lookup failures are per-address; only store
// failures abort the pass.
func (e *Engine) ResolveBINs(ctx context.Context, monitored []building.MonitoredAddress) ([]BINResult, error) {
	logger := e.logger.With("task", "resolve-bins")
	results := make([]BINResult, 0, len(monitored))

	for _, m := range monitored {
		key := address.Normalize(m.Address)
		alog := logger.With("address", key)

		stored, err := e.store.BIN(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read stored bin: %w", err)
		}
		if stored != "" {
			alog.Info("bin already stored", "bin", stored)
			results = append(results, BINResult{Address: key, BIN: stored, Status: BINAlreadyStored})
			continue
		}

		if m.BIN != "" {
			if err := e.store.SetBIN(ctx, key, m.BIN); err != nil {
				return nil, fmt.Errorf("store configured bin: %w", err)
			}
			alog.Info("stored configured bin", "bin", m.BIN)
			results = append(results, BINResult{Address: key, BIN: m.BIN, Status: BINCached})
			continue
		}

		bisKey, perr := address.ParseBIS(key)
		if perr != nil {
			alog.Error("cannot parse address for bin lookup", "error", perr)
			results = append(results, BINResult{Address: key, Status: BINParseError})
			continue
		}

		bin, err := e.status.ResolveBIN(ctx, bisKey)
		switch {
		case err != nil:
			alog.Error("bin lookup failed", "error", err)
			results = append(results, BINResult{Address: key, Status: BINFetchError})
		case bin == "":
			alog.Warn("no bin found on page")
			results = append(results, BINResult{Address: key, Status: BINNotFound})
		default:
			if err := e.store.SetBIN(ctx, key, bin); err != nil {
				return nil, fmt.Errorf("store scraped bin: %w", err)
			}
			alog.Info("scraped bin", "bin", bin)
			results = append(results, BINResult{Address: key, BIN: bin, Status: BINScraped})
		}

		// Pace scrapes against the rate-limited host.
		if err := e.clock.Sleep(ctx, binLookupPacing); err != nil {
			return results, err
		}
	}

	return results, nil
}
