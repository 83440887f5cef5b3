// Package engine implements the reconciliation core: one run iterates
// the monitored addresses in configured order, fetches current state
// from both providers, diffs it against the persisted baseline, commits
// new state per address, and accumulates per-owner change sets for the
// notification dispatcher.
//
// Per-address pipeline:
//
//	PENDING -> PARSING -> (PARSE_FAILED | PARSED)
//	        -> BIS_CHECKING -> (BIS_OK | BIS_FAILED)
//	        -> COMPLAINTS_CHECKING -> (DONE | COMPLAINTS_FAILED)
//
// BIS failures get a bounded in-place retry; addresses still failing are
// queued and retried once more in a single batched second pass after a
// long cooldown, because the scraped host rate-limits by source IP.
// An address failing both passes is recorded as permanently failed for
// the run and causes no status mutation.
//
// Failure isolation: a parse or provider failure on one address never
// aborts processing of the others. Store failures are the exception;
// without a trustworthy baseline the diff and dedup logic cannot be
// trusted, so they abort the run.
//
// The engine is sequential by design. Parallel address checks would trip
// the upstream's anti-scraping defenses without a concurrency cap and
// jitter; runs happen a handful of times per day, so latency is not a
// concern.
package engine
