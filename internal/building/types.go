package building

import "time"

// Summary holds the three counts extracted from a BIS property profile page.
//
// Complaints is informational only; change detection compares the two
// violation categories (DOB and OATH/ECB), which are tracked independently.
type Summary struct {
	Complaints    int
	ViolationsDOB int
	ViolationsECB int
}

// AddressStatus is the persisted state for one monitored address.
//
// A row exists only after at least one successful BIS fetch. BIN is empty
// until resolved from the BIS page.
type AddressStatus struct {
	Address       string // normalized address key
	BIN           string // building identifier number, "" if unresolved
	Complaints    int
	ViolationsDOB int
	ViolationsECB int
	LastChecked   time.Time
}

// Summary returns the stored counts as a Summary value.
func (s AddressStatus) Summary() Summary {
	return Summary{
		Complaints:    s.Complaints,
		ViolationsDOB: s.ViolationsDOB,
		ViolationsECB: s.ViolationsECB,
	}
}

// Complaint is a single 311 service request record.
//
// Field names and JSON tags follow the NYC Open Data erm2-nwe9 dataset.
// All values are kept as the raw strings returned by the feed; the record
// is immutable once its incident ID enters the dedup ledger, even though
// the upstream may later mutate Status or Resolution. Re-surfacing such
// mutations is a known limitation, not handled here.
type Complaint struct {
	IncidentID   string `json:"unique_key"`
	Address      string `json:"incident_address"`
	Borough      string `json:"borough"`
	ZIP          string `json:"incident_zip"`
	CreatedDate  string `json:"created_date"`
	Type         string `json:"complaint_type"`
	Descriptor   string `json:"descriptor"`
	Agency       string `json:"agency"`
	Status       string `json:"status"`
	ClosedDate   string `json:"closed_date,omitempty"`
	Resolution   string `json:"resolution_description,omitempty"`
	LocationType string `json:"location_type,omitempty"`
	Latitude     string `json:"latitude,omitempty"`
	Longitude    string `json:"longitude,omitempty"`
}

// Violation is a single record from the BIN-keyed DOB or ECB violation
// datasets. Only the fields shown in CLI output are decoded.
type Violation struct {
	BIN            string `json:"bin"`
	IssueDate      string `json:"issue_date"`
	ViolationType  string `json:"violation_type,omitempty"`
	Status         string `json:"violation_status,omitempty"`
	Description    string `json:"description,omitempty"`
	DispositionCmt string `json:"disposition_comments,omitempty"`
}

// Owner is a notification recipient. An owner may be assigned zero or
// more monitored addresses through the address_owners relation.
type Owner struct {
	ID       int64
	Name     string
	Webhook  string // webhook URL, "" if none configured
	Email    string // recorded but not delivered to
	Phone    string // recorded but not delivered to
	Schedule []int  // preferred run hours, nil means default
}

// MonitoredAddress is one configured address, optionally carrying a
// cached BIN so the resolver pass can skip it.
type MonitoredAddress struct {
	Address string `yaml:"address"`
	BIN     string `yaml:"bin,omitempty"`
}
