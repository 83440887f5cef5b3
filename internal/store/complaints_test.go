package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kt1928/building-monitor/internal/building"
)

func TestInsertComplaint_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c := building.Complaint{
		IncidentID:  "ABC123",
		Address:     "10 MAIN ST",
		Borough:     "BROOKLYN",
		ZIP:         "11201",
		CreatedDate: "2024-06-01T09:00:00.000",
		Type:        "HEAT/HOT WATER",
		Agency:      "HPD",
		Status:      "Open",
	}

	inserted, err := s.InsertComplaint(ctx, c)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Re-insert of the same incident ID is a no-op, not an error.
	inserted, err = s.InsertComplaint(ctx, c)
	require.NoError(t, err)
	assert.False(t, inserted)

	ids, err := s.AllIncidentIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

// The ledger is append-only: a mutated upstream record with a seen
// incident ID must not overwrite the stored one.
func TestInsertComplaint_MutatedDuplicateIgnored(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	original := building.Complaint{IncidentID: "ABC123", Status: "Open"}
	mutated := building.Complaint{IncidentID: "ABC123", Status: "Closed", Resolution: "Inspected."}

	_, err := s.InsertComplaint(ctx, original)
	require.NoError(t, err)
	inserted, err := s.InsertComplaint(ctx, mutated)
	require.NoError(t, err)
	assert.False(t, inserted)

	var status string
	err = s.db.QueryRow(`SELECT status FROM complaints_311 WHERE incident_id = 'ABC123'`).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "Open", status)
}

func TestAllIncidentIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"A1", "A2", "A3"} {
		_, err := s.InsertComplaint(ctx, building.Complaint{IncidentID: id})
		require.NoError(t, err)
	}

	ids, err := s.AllIncidentIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	_, ok := ids["A2"]
	assert.True(t, ok)
}
