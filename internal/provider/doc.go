// Package provider implements the two upstream data sources the monitor
// reconciles against.
//
// BISClient scrapes the municipal property profile page for violation and
// complaint counts and the building identifier number (BIN). The page is
// served by an anti-scraping-sensitive host; callers own the retry policy
// and must treat HTTP 429 as rate limiting (it is surfaced with its own
// error code for log visibility but retried like any other failure).
//
// OpenDataClient talks to the structured NYC Open Data endpoints: the 311
// service request feed and the BIN-keyed DOB/ECB violation datasets.
//
// Both clients enforce a 30 second request timeout so a hung upstream
// cannot stall a run indefinitely.
package provider
