package store

import (
	"context"
	"fmt"

	"github.com/kt1928/building-monitor/internal/building"
)

// AllIncidentIDs returns the full dedup ledger of seen 311 incident IDs.
// Read once per run before any writes; the per-run ChangeSet is filtered
// against this snapshot.
func (s *Store) AllIncidentIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT incident_id FROM complaints_311`)
	if err != nil {
		return nil, fmt.Errorf("query incident ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan incident id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident ids: %w", err)
	}

	return ids, nil
}

// InsertComplaint adds a complaint to the ledger. Inserting an incident
// ID that is already present is a no-op, reported via inserted=false.
// The ledger is append-only: later upstream mutations of a recorded
// complaint (status, resolution) are never written back.
func (s *Store) InsertComplaint(ctx context.Context, c building.Complaint) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO complaints_311 (
			incident_id, address, borough, zip_code, created_date,
			complaint_type, descriptor, agency, status, closed_date,
			resolution_description, location_type, latitude, longitude
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(incident_id) DO NOTHING
	`,
		c.IncidentID, c.Address, c.Borough, c.ZIP, c.CreatedDate,
		c.Type, c.Descriptor, c.Agency, c.Status, c.ClosedDate,
		c.Resolution, c.LocationType, c.Latitude, c.Longitude,
	)
	if err != nil {
		return false, fmt.Errorf("insert complaint %s: %w", c.IncidentID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert complaint %s: rows affected: %w", c.IncidentID, err)
	}
	return n > 0, nil
}
