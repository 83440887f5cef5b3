package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kt1928/building-monitor/internal/building"
)

func TestAddOwner_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, building.Owner{
		Name:     "Greene Holdings",
		Webhook:  "https://hooks.example/abc",
		Email:    "ops@greene.example",
		Schedule: []int{6, 18},
	})
	require.NoError(t, err)

	o, err := s.Owner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Greene Holdings", o.Name)
	assert.Equal(t, "https://hooks.example/abc", o.Webhook)
	assert.Equal(t, []int{6, 18}, o.Schedule)
}

func TestAddOwner_DefaultSchedule(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, building.Owner{Name: "No Schedule"})
	require.NoError(t, err)

	o, err := s.Owner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 12, 20}, o.Schedule)
}

func TestOwner_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.Owner(context.Background(), 999)
	require.Error(t, err)
}

func TestUpdateOwnerSinks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.AddOwner(ctx, building.Owner{Name: "A", Webhook: "https://old.example"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateOwnerSinks(ctx, id, "https://new.example", "a@example.com", ""))

	o, err := s.Owner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://new.example", o.Webhook)
	assert.Equal(t, "a@example.com", o.Email)
	assert.Empty(t, o.Phone)
}

func TestAssignments_ManyToMany(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, err := s.AddOwner(ctx, building.Owner{Name: "A"})
	require.NoError(t, err)
	b, err := s.AddOwner(ctx, building.Owner{Name: "B"})
	require.NoError(t, err)

	addr1 := "10 MAIN ST, BROOKLYN, NY 11201"
	addr2 := "952A GREENE AVE, BROOKLYN, NY 11221"

	require.NoError(t, s.Assign(ctx, addr1, a))
	require.NoError(t, s.Assign(ctx, addr1, b))
	require.NoError(t, s.Assign(ctx, addr2, a))
	// Re-assign is idempotent.
	require.NoError(t, s.Assign(ctx, addr1, a))

	owners, err := s.OwnersForAddress(ctx, addr1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, owners)

	addrs, err := s.AddressesForOwner(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{addr1, addr2}, addrs)
}

func TestUnassign(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, err := s.AddOwner(ctx, building.Owner{Name: "A"})
	require.NoError(t, err)
	addr := "10 MAIN ST, BROOKLYN, NY 11201"

	require.NoError(t, s.Assign(ctx, addr, a))
	require.NoError(t, s.Unassign(ctx, addr, a))

	owners, err := s.OwnersForAddress(ctx, addr)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestDeleteOwner_CascadesAssignments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, err := s.AddOwner(ctx, building.Owner{Name: "A"})
	require.NoError(t, err)
	addr := "10 MAIN ST, BROOKLYN, NY 11201"
	require.NoError(t, s.Assign(ctx, addr, a))

	require.NoError(t, s.DeleteOwner(ctx, a))

	owners, err := s.OwnersForAddress(ctx, addr)
	require.NoError(t, err)
	assert.Empty(t, owners)
}
