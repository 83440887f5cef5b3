// Package building defines the core domain types shared by the store,
// the reconciliation engine and the notification dispatcher.
//
// The types mirror the two upstream sources:
//   - Summary: the three counts scraped from a BIS property profile page
//   - Complaint: a single 311 service request record
//
// AddressStatus rows are keyed by the normalized address string (see
// internal/address.Normalize). A missing row means the address has never
// been successfully checked; it does NOT mean zero violations. The engine
// relies on this distinction to suppress change alerts on first contact.
package building
