// Package address parses free-text NYC addresses into the structured keys
// the two upstream providers require.
//
// The canonical input form is "<house><unit?> <street>, <Borough>, <State> <ZIP>",
// e.g. "952A Greene Ave, Brooklyn, NY 11221". Parsing is pure; a failure for
// one address never affects another.
package address

import (
	"errors"
	"fmt"
	"strings"
)

// boroCodes maps the five recognized borough names to BIS borough codes.
var boroCodes = map[string]string{
	"MANHATTAN":     "1",
	"BRONX":         "2",
	"BROOKLYN":      "3",
	"QUEENS":        "4",
	"STATEN ISLAND": "5",
}

// BISKey identifies a building on the BIS property profile lookup.
type BISKey struct {
	HouseNo  string
	Street   string
	BoroCode string // "1".."5"
}

// FeedKey identifies an address on the 311 service request feed.
// All components are upper-cased to match the dataset's conventions.
type FeedKey struct {
	Address string // "<house> <street>", upper-cased
	Borough string
	ZIP     string
}

// ParseError reports a malformed address. The engine records it and skips
// the affected check; it never aborts processing of other addresses.
type ParseError struct {
	Address string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse address %q: %s", e.Address, e.Reason)
}

// IsParseError reports whether err is a ParseError, unwrapping as needed.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Normalize returns the canonical store key for an address: trimmed,
// inner whitespace collapsed, upper-cased. Status rows and owner
// assignments are keyed by this form so lookups are case-insensitive.
func Normalize(addr string) string {
	return strings.ToUpper(strings.Join(strings.Fields(addr), " "))
}

// ParseBIS extracts the (house number, street, borough code) triple used
// by the BIS property profile lookup.
func ParseBIS(addr string) (BISKey, error) {
	parts := strings.Split(addr, ",")
	if len(parts) < 2 {
		return BISKey{}, &ParseError{Address: addr, Reason: "want at least 2 comma-separated segments"}
	}

	houseStreet := strings.TrimSpace(parts[0])
	fields := strings.Fields(houseStreet)
	if len(fields) < 2 {
		return BISKey{}, &ParseError{Address: addr, Reason: "missing house number or street"}
	}

	borough := strings.ToUpper(strings.TrimSpace(parts[1]))
	code, ok := boroCodes[borough]
	if !ok {
		return BISKey{}, &ParseError{Address: addr, Reason: fmt.Sprintf("unknown borough %q", borough)}
	}

	return BISKey{
		HouseNo:  fields[0],
		Street:   strings.Join(fields[1:], " "),
		BoroCode: code,
	}, nil
}

// ParseFeed extracts the (address, borough, zip) triple used by the 311
// feed. The ZIP is the last whitespace-delimited token of the third
// comma segment ("NY 11221" -> "11221").
func ParseFeed(addr string) (FeedKey, error) {
	parts := strings.Split(addr, ",")
	if len(parts) < 3 {
		return FeedKey{}, &ParseError{Address: addr, Reason: "want at least 3 comma-separated segments"}
	}

	borough := strings.ToUpper(strings.TrimSpace(parts[1]))
	if _, ok := boroCodes[borough]; !ok {
		return FeedKey{}, &ParseError{Address: addr, Reason: fmt.Sprintf("unknown borough %q", borough)}
	}

	stateZip := strings.Fields(strings.TrimSpace(parts[2]))
	if len(stateZip) == 0 {
		return FeedKey{}, &ParseError{Address: addr, Reason: "missing ZIP code"}
	}

	return FeedKey{
		Address: strings.ToUpper(strings.TrimSpace(parts[0])),
		Borough: borough,
		ZIP:     stateZip[len(stateZip)-1],
	}, nil
}
