package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kt1928/building-monitor/internal/building"
)

// AllStatuses returns every persisted address status keyed by normalized
// address. Read once per run to build the comparison baseline; never
// re-queried per address.
func (s *Store) AllStatuses(ctx context.Context) (map[string]building.AddressStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, bin, complaints, dob_violations, ecb_violations, last_checked
		FROM bis_status
	`)
	if err != nil {
		return nil, fmt.Errorf("query statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]building.AddressStatus)
	for rows.Next() {
		var st building.AddressStatus
		var bin sql.NullString
		var checked sql.NullTime
		if err := rows.Scan(&st.Address, &bin, &st.Complaints, &st.ViolationsDOB, &st.ViolationsECB, &checked); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		st.BIN = bin.String
		if checked.Valid {
			st.LastChecked = checked.Time
		}
		statuses[st.Address] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statuses: %w", err)
	}

	return statuses, nil
}

// UpsertStatus inserts or updates the status row for an address.
// An empty incoming BIN never clobbers a previously resolved one.
func (s *Store) UpsertStatus(ctx context.Context, st building.AddressStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bis_status (address, bin, complaints, dob_violations, ecb_violations, last_checked)
		VALUES (?, NULLIF(?, ''), ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			bin            = COALESCE(NULLIF(excluded.bin, ''), bis_status.bin),
			complaints     = excluded.complaints,
			dob_violations = excluded.dob_violations,
			ecb_violations = excluded.ecb_violations,
			last_checked   = excluded.last_checked
	`, st.Address, st.BIN, st.Complaints, st.ViolationsDOB, st.ViolationsECB, st.LastChecked)
	if err != nil {
		return fmt.Errorf("upsert status %s: %w", st.Address, err)
	}
	return nil
}

// SetBIN records a resolved BIN for an address, creating the row if the
// address has never been checked.
func (s *Store) SetBIN(ctx context.Context, addr, bin string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bis_status (address, bin) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET bin = excluded.bin
	`, addr, bin)
	if err != nil {
		return fmt.Errorf("set bin for %s: %w", addr, err)
	}
	return nil
}

// BIN returns the stored BIN for an address, "" if unresolved or the
// address is unknown.
func (s *Store) BIN(ctx context.Context, addr string) (string, error) {
	var bin sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT bin FROM bis_status WHERE address = ?`, addr).Scan(&bin)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get bin for %s: %w", addr, err)
	}
	return bin.String, nil
}
