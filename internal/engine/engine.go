package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
	"github.com/kt1928/building-monitor/internal/metrics"
	"github.com/kt1928/building-monitor/internal/notify"
	"github.com/kt1928/building-monitor/internal/provider"
	"github.com/kt1928/building-monitor/internal/store"
)

const defaultFeedLimit = 20

// Engine orchestrates one reconciliation run end to end.
type Engine struct {
	store      *store.Store
	status     provider.BuildingStatus
	feed       provider.ComplaintFeed
	dispatcher *notify.Dispatcher
	clock      Clock
	logger     *slog.Logger
	policy     RetryPolicy
	feedLimit  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, letting tests skip cooldowns.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRetryPolicy replaces the default BIS retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithFeedLimit caps how many recent complaints are requested per address.
func WithFeedLimit(n int) Option {
	return func(e *Engine) { e.feedLimit = n }
}

// New builds an engine over an opened store, the two providers and a
// dispatcher.
func New(st *store.Store, status provider.BuildingStatus, feed provider.ComplaintFeed, dispatcher *notify.Dispatcher, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      st,
		status:     status,
		feed:       feed,
		dispatcher: dispatcher,
		clock:      realClock{},
		logger:     logger,
		policy:     DefaultRetryPolicy(),
		feedLimit:  defaultFeedLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions selects the scope of one run.
type RunOptions struct {
	// Addresses is the configured monitor list, used for full runs.
	Addresses []building.MonitoredAddress

	// OwnerID, when positive, scopes the run to that owner's assigned
	// addresses and notifies only that owner.
	OwnerID int64

	// GlobalWebhook receives the single payload when no owners exist
	// (non-partitioned mode).
	GlobalWebhook string
}

// retryItem is an address whose BIS check exhausted the first pass and
// is queued for the batched second pass.
type retryItem struct {
	monitored building.MonitoredAddress
	key       string
	bisKey    address.BISKey
	owners    []int64
}

// Run executes one reconciliation run. The returned error is non-nil
// only for run-fatal conditions (empty scope, store failure); per-address
// parse and provider failures are collected in the report instead.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*building.Report, error) {
	logger := e.logger.With("run", uuid.NewString()[:8])

	report, err := e.run(ctx, logger, opts)
	if err != nil {
		metrics.RunCounter.WithLabelValues("error").Inc()
		logger.Error("run failed", "error", err)
		return nil, err
	}

	metrics.RunCounter.WithLabelValues("ok").Inc()
	logger.Info("run completed", "checked", len(report.Checked), "failed", len(report.Failed))
	return report, nil
}

func (e *Engine) run(ctx context.Context, logger *slog.Logger, opts RunOptions) (*building.Report, error) {
	monitored, err := e.resolveScope(ctx, logger, opts)
	if err != nil {
		return nil, err
	}

	owners, err := e.store.Owners(ctx)
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	partitioned := len(owners) > 0

	// Bulk baseline reads, once per run. Every later comparison works
	// off these snapshots rather than per-address queries.
	baseline, err := e.store.AllStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load status baseline: %w", err)
	}
	seen, err := e.store.AllIncidentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load incident ledger: %w", err)
	}

	report := building.NewReport(e.clock.Now())

	// First pass, in configured order.
	var retries []retryItem
	for _, m := range monitored {
		alog := logger.With("address", address.Normalize(m.Address))
		item, err := e.processAddress(ctx, alog, m, partitioned, baseline, seen, report)
		if err != nil {
			return nil, err
		}
		if item != nil {
			retries = append(retries, *item)
		}
	}

	// Batched second pass after a single long cooldown.
	if len(retries) > 0 {
		logger.Warn("retrying failed addresses after cooldown",
			"count", len(retries), "cooldown", e.policy.BatchCooldown)
		if err := e.clock.Sleep(ctx, e.policy.BatchCooldown); err != nil {
			return nil, err
		}
		for _, item := range retries {
			alog := logger.With("address", item.key)
			summary, err := e.fetchBIS(ctx, alog, item.bisKey)
			if err != nil {
				alog.Error("bis check failed permanently", "error", err)
				report.Failed = append(report.Failed, building.AddressFailure{
					Address: item.key,
					Stage:   building.StageBIS,
					Reason:  err.Error(),
				})
				continue
			}
			if err := e.applySummary(ctx, alog, item.key, item.monitored.BIN, summary, item.owners, baseline, report); err != nil {
				return nil, err
			}
		}
	}

	if err := e.dispatch(ctx, report, opts, owners, partitioned); err != nil {
		return nil, err
	}
	return report, nil
}

// resolveScope returns the address list for this run.
func (e *Engine) resolveScope(ctx context.Context, logger *slog.Logger, opts RunOptions) ([]building.MonitoredAddress, error) {
	var monitored []building.MonitoredAddress
	if opts.OwnerID > 0 {
		addrs, err := e.store.AddressesForOwner(ctx, opts.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("load addresses for owner %d: %w", opts.OwnerID, err)
		}
		for _, a := range addrs {
			monitored = append(monitored, building.MonitoredAddress{Address: a})
		}
		logger.Info("starting owner-scoped check", "owner", opts.OwnerID, "addresses", len(monitored))
	} else {
		monitored = opts.Addresses
		logger.Info("starting full check", "addresses", len(monitored))
	}

	if len(monitored) == 0 {
		return nil, fmt.Errorf("no addresses to check")
	}
	return monitored, nil
}

// processAddress runs the per-address pipeline. It returns a retryItem
// when the BIS check exhausted its first-pass budget. The returned error
// is reserved for store failures, which are fatal for the run.
func (e *Engine) processAddress(ctx context.Context, logger *slog.Logger, m building.MonitoredAddress, partitioned bool, baseline map[string]building.AddressStatus, seen map[string]struct{}, report *building.Report) (*retryItem, error) {
	key := address.Normalize(m.Address)
	report.Checked = append(report.Checked, key)
	logger.Info("processing address")

	ownerIDs := []int64{building.GlobalBucket}
	if partitioned {
		var err error
		ownerIDs, err = e.store.OwnersForAddress(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load owners for %s: %w", key, err)
		}
		if len(ownerIDs) > 0 {
			logger.Info("address has assigned owners", "owners", len(ownerIDs))
		}
	}

	// Both key forms parse independently off the normalized address, so
	// store-sourced and config-sourced addresses produce identical keys.
	// One parse failing does not block the other check.
	bisKey, bisParseErr := address.ParseBIS(key)
	feedKey, feedParseErr := address.ParseFeed(key)
	if bisParseErr != nil || feedParseErr != nil {
		reason := bisParseErr
		if reason == nil {
			reason = feedParseErr
		}
		logger.Error("address parse failed", "error", reason)
		report.Failed = append(report.Failed, building.AddressFailure{
			Address: key,
			Stage:   building.StageParse,
			Reason:  reason.Error(),
		})
	}

	var retry *retryItem
	if bisParseErr == nil {
		summary, err := e.fetchBIS(ctx, logger, bisKey)
		if err != nil {
			logger.Warn("bis check failed, queued for batched retry", "error", err)
			retry = &retryItem{monitored: m, key: key, bisKey: bisKey, owners: ownerIDs}
		} else if err := e.applySummary(ctx, logger, key, m.BIN, summary, ownerIDs, baseline, report); err != nil {
			return nil, err
		}
	} else {
		logger.Error("skipping bis check due to parse error")
	}

	if feedParseErr == nil {
		if err := e.checkComplaints(ctx, logger, key, feedKey, ownerIDs, seen, report); err != nil {
			return retry, err
		}
	} else {
		logger.Error("skipping 311 check due to parse error")
	}

	return retry, nil
}

// fetchBIS attempts the building-status fetch up to MaxAttempts times
// with AttemptDelay between attempts. Rate limiting is logged at its own
// level but retried like any other failure.
func (e *Engine) fetchBIS(ctx context.Context, logger *slog.Logger, key address.BISKey) (building.Summary, error) {
	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		summary, err := e.status.FetchSummary(ctx, key)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if provider.IsRateLimited(err) {
			logger.Warn("bis rate limited", "attempt", attempt)
		} else {
			logger.Error("bis fetch failed", "attempt", attempt, "error", err)
		}

		if attempt < e.policy.MaxAttempts {
			if err := e.clock.Sleep(ctx, e.policy.AttemptDelay); err != nil {
				return building.Summary{}, err
			}
		}
	}
	return building.Summary{}, lastErr
}

// applySummary diffs the fetched counts against the baseline, attributes
// any change to the address's owner set, and persists the new totals.
// A first-ever successful check persists the baseline without reporting
// a change.
func (e *Engine) applySummary(ctx context.Context, logger *slog.Logger, key, bin string, summary building.Summary, ownerIDs []int64, baseline map[string]building.AddressStatus, report *building.Report) error {
	old, exists := baseline[key]
	if exists {
		var deltas []building.FieldDelta
		if summary.ViolationsDOB != old.ViolationsDOB {
			deltas = append(deltas, building.FieldDelta{Field: "Violations-DOB", Old: old.ViolationsDOB, New: summary.ViolationsDOB})
		}
		if summary.ViolationsECB != old.ViolationsECB {
			deltas = append(deltas, building.FieldDelta{Field: "Violations-OATH/ECB", Old: old.ViolationsECB, New: summary.ViolationsECB})
		}
		if len(deltas) > 0 {
			logger.Info("violation counts changed", "fields", len(deltas))
			change := building.StatusChange{Address: key, Deltas: deltas, NewTotals: summary}
			for _, id := range ownerIDs {
				report.StatusChanges[id] = append(report.StatusChanges[id], change)
			}
		}
	} else {
		logger.Info("first successful check, persisting baseline")
	}

	err := e.store.UpsertStatus(ctx, building.AddressStatus{
		Address:       key,
		BIN:           bin,
		Complaints:    summary.Complaints,
		ViolationsDOB: summary.ViolationsDOB,
		ViolationsECB: summary.ViolationsECB,
		LastChecked:   e.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("persist status: %w", err)
	}
	logger.Info("status persisted")
	return nil
}

// checkComplaints fetches recent 311 complaints (single attempt), filters
// them against the ledger snapshot, persists the new ones idempotently
// and attributes them to the owner set. Feed failures are per-address.
func (e *Engine) checkComplaints(ctx context.Context, logger *slog.Logger, key string, feedKey address.FeedKey, ownerIDs []int64, seen map[string]struct{}, report *building.Report) error {
	complaints, err := e.feed.Recent(ctx, feedKey, e.feedLimit)
	if err != nil {
		logger.Error("311 check failed", "error", err)
		report.Failed = append(report.Failed, building.AddressFailure{
			Address: key,
			Stage:   building.StageComplaints,
			Reason:  err.Error(),
		})
		return nil
	}

	var fresh []building.Complaint
	lastDate := ""
	for _, c := range complaints {
		if c.IncidentID == "" {
			logger.Warn("complaint without incident id, skipping")
			continue
		}
		if _, ok := seen[c.IncidentID]; ok {
			continue
		}
		if _, err := e.store.InsertComplaint(ctx, c); err != nil {
			return fmt.Errorf("persist complaint: %w", err)
		}
		seen[c.IncidentID] = struct{}{}
		fresh = append(fresh, c)
		if c.CreatedDate > lastDate {
			lastDate = c.CreatedDate
		}
	}

	if len(fresh) == 0 {
		logger.Info("no new 311 complaints")
		return nil
	}

	logger.Info("new 311 complaints", "count", len(fresh))
	alert := building.ComplaintAlert{Address: key, LastDate: lastDate, Complaints: fresh}
	for _, id := range ownerIDs {
		report.NewComplaints[id] = append(report.NewComplaints[id], alert)
	}
	return nil
}

// dispatch hands the finished report to the notifier. Delivery is
// best-effort; this only fails on store reads needed for owner scoping.
func (e *Engine) dispatch(ctx context.Context, report *building.Report, opts RunOptions, owners []building.Owner, partitioned bool) error {
	if !partitioned {
		e.dispatcher.DispatchGlobal(ctx, report, opts.GlobalWebhook)
		return nil
	}

	toNotify := owners
	if opts.OwnerID > 0 {
		toNotify = nil
		for _, o := range owners {
			if o.ID == opts.OwnerID {
				toNotify = []building.Owner{o}
				break
			}
		}
	}

	addressesByOwner := make(map[int64][]string, len(toNotify))
	for _, o := range toNotify {
		addrs, err := e.store.AddressesForOwner(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("load addresses for owner %d: %w", o.ID, err)
		}
		addressesByOwner[o.ID] = addrs
	}

	e.dispatcher.DispatchOwners(ctx, report, toNotify, addressesByOwner)
	return nil
}
