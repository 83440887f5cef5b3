package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
	"github.com/kt1928/building-monitor/internal/provider"
)

// ScriptedStatus is a provider.BuildingStatus fake with per-key scripted
// summaries, BINs and failure counts.
type ScriptedStatus struct {
	mu        sync.Mutex
	summaries map[address.BISKey]building.Summary
	bins      map[address.BISKey]string
	failures  map[address.BISKey]int // remaining failures; negative means always fail
	calls     map[address.BISKey]int
}

// NewScriptedStatus returns an empty fake; unknown keys fail as
// malformed pages.
func NewScriptedStatus() *ScriptedStatus {
	return &ScriptedStatus{
		summaries: make(map[address.BISKey]building.Summary),
		bins:      make(map[address.BISKey]string),
		failures:  make(map[address.BISKey]int),
		calls:     make(map[address.BISKey]int),
	}
}

// SetSummary scripts the summary returned for a key.
func (s *ScriptedStatus) SetSummary(key address.BISKey, summary building.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[key] = summary
}

// SetBIN scripts the BIN resolved for a key.
func (s *ScriptedStatus) SetBIN(key address.BISKey, bin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bins[key] = bin
}

// FailTimes makes the next n FetchSummary calls for key fail with a
// network error before the scripted summary is served. Negative n fails
// every call.
func (s *ScriptedStatus) FailTimes(key address.BISKey, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = n
}

// Calls returns how many FetchSummary calls key has received.
func (s *ScriptedStatus) Calls(key address.BISKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// FetchSummary implements provider.BuildingStatus.
func (s *ScriptedStatus) FetchSummary(_ context.Context, key address.BISKey) (building.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++

	if n := s.failures[key]; n != 0 {
		if n > 0 {
			s.failures[key] = n - 1
		}
		return building.Summary{}, &provider.Error{
			Provider: "bis",
			Code:     provider.ErrCodeNetwork,
			Message:  fmt.Sprintf("scripted failure for %s %s", key.HouseNo, key.Street),
		}
	}

	summary, ok := s.summaries[key]
	if !ok {
		return building.Summary{}, &provider.Error{
			Provider: "bis",
			Code:     provider.ErrCodeMalformed,
			Message:  fmt.Sprintf("no scripted summary for %s %s", key.HouseNo, key.Street),
		}
	}
	return summary, nil
}

// ResolveBIN implements provider.BuildingStatus.
func (s *ScriptedStatus) ResolveBIN(_ context.Context, key address.BISKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bins[key], nil
}

// ScriptedFeed is a provider.ComplaintFeed fake.
type ScriptedFeed struct {
	mu         sync.Mutex
	complaints map[address.FeedKey][]building.Complaint
	failKeys   map[address.FeedKey]bool
	calls      int
}

// NewScriptedFeed returns an empty fake; unknown keys yield no complaints.
func NewScriptedFeed() *ScriptedFeed {
	return &ScriptedFeed{
		complaints: make(map[address.FeedKey][]building.Complaint),
		failKeys:   make(map[address.FeedKey]bool),
	}
}

// SetComplaints scripts the feed result for a key, newest first.
func (f *ScriptedFeed) SetComplaints(key address.FeedKey, complaints []building.Complaint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complaints[key] = complaints
}

// FailFor makes Recent fail for a key with a network error.
func (f *ScriptedFeed) FailFor(key address.FeedKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys[key] = true
}

// Calls returns the total number of Recent calls.
func (f *ScriptedFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Recent implements provider.ComplaintFeed.
func (f *ScriptedFeed) Recent(_ context.Context, key address.FeedKey, limit int) ([]building.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.failKeys[key] {
		return nil, &provider.Error{
			Provider: "311",
			Code:     provider.ErrCodeNetwork,
			Message:  "scripted feed failure",
		}
	}

	result := f.complaints[key]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
