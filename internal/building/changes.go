package building

import "time"

// GlobalBucket is the pseudo owner ID used when the monitor runs without
// owner partitioning: every change is attributed to this single bucket
// and delivered to the globally configured webhook.
const GlobalBucket int64 = 0

// FieldDelta is one changed violation count on an address.
type FieldDelta struct {
	Field string // "Violations-DOB" or "Violations-OATH/ECB"
	Old   int
	New   int
}

// StatusChange describes the field-level deltas detected for one address,
// together with the new absolute totals.
type StatusChange struct {
	Address   string
	Deltas    []FieldDelta
	NewTotals Summary
}

// ComplaintAlert carries the new 311 complaints found for one address.
// LastDate is the creation date of the most recent new complaint.
type ComplaintAlert struct {
	Address    string
	LastDate   string
	Complaints []Complaint
}

// FailureStage identifies where in the per-address pipeline a permanent
// failure happened.
type FailureStage string

const (
	StageParse      FailureStage = "parse"
	StageBIS        FailureStage = "bis"
	StageComplaints FailureStage = "311"
)

// AddressFailure is a permanently failed address for one run: parse
// failures, BIS failures surviving both retry passes, and complaint-feed
// failures. Reported, never fatal.
type AddressFailure struct {
	Address string
	Stage   FailureStage
	Reason  string
}

// Report is the outcome of one reconciliation run. Change maps are keyed
// by owner ID (or GlobalBucket in non-partitioned mode); an address with
// no assigned owners has its changes computed but mapped to no key, so
// they are persisted yet never dispatched.
//
// Built fresh each run and discarded after dispatch.
type Report struct {
	Started       time.Time
	Checked       []string // normalized addresses processed this run
	Failed        []AddressFailure
	StatusChanges map[int64][]StatusChange
	NewComplaints map[int64][]ComplaintAlert
}

// NewReport returns an empty report with initialized maps.
func NewReport(started time.Time) *Report {
	return &Report{
		Started:       started,
		StatusChanges: make(map[int64][]StatusChange),
		NewComplaints: make(map[int64][]ComplaintAlert),
	}
}

// HasActivity reports whether any owner bucket carries changes or any
// address failed. Used for the all-clear notification case.
func (r *Report) HasActivity() bool {
	return len(r.StatusChanges) > 0 || len(r.NewComplaints) > 0 || len(r.Failed) > 0
}
