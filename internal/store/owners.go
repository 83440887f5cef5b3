package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kt1928/building-monitor/internal/building"
)

// defaultSchedule matches the schema default for owners.schedule.
var defaultSchedule = []int{8, 12, 20}

// AddOwner inserts a new owner and returns its ID.
func (s *Store) AddOwner(ctx context.Context, o building.Owner) (int64, error) {
	schedule, err := marshalSchedule(o.Schedule)
	if err != nil {
		return 0, fmt.Errorf("add owner %s: %w", o.Name, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO owners (name, email, phone, webhook, schedule)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?)
	`, o.Name, o.Email, o.Phone, o.Webhook, schedule)
	if err != nil {
		return 0, fmt.Errorf("add owner %s: %w", o.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add owner %s: last insert id: %w", o.Name, err)
	}
	return id, nil
}

// Owner returns one owner by ID.
func (s *Store) Owner(ctx context.Context, id int64) (building.Owner, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, webhook, schedule FROM owners WHERE id = ?
	`, id)
	o, err := scanOwner(row)
	if err == sql.ErrNoRows {
		return building.Owner{}, fmt.Errorf("owner %d not found", id)
	}
	if err != nil {
		return building.Owner{}, fmt.Errorf("get owner %d: %w", id, err)
	}
	return o, nil
}

// Owners returns all owners.
func (s *Store) Owners(ctx context.Context) ([]building.Owner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, webhook, schedule FROM owners ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	var owners []building.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}

	return owners, nil
}

// UpdateOwnerSinks updates an owner's notification endpoints.
func (s *Store) UpdateOwnerSinks(ctx context.Context, id int64, webhook, email, phone string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE owners
		SET webhook = NULLIF(?, ''), email = NULLIF(?, ''), phone = NULLIF(?, '')
		WHERE id = ?
	`, webhook, email, phone, id)
	if err != nil {
		return fmt.Errorf("update owner %d: %w", id, err)
	}
	return nil
}

// DeleteOwner removes an owner; assignments cascade.
func (s *Store) DeleteOwner(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM owners WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete owner %d: %w", id, err)
	}
	return nil
}

// Assign links an address to an owner. Idempotent.
func (s *Store) Assign(ctx context.Context, addr string, ownerID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO address_owners (address, owner_id) VALUES (?, ?)
		ON CONFLICT(address, owner_id) DO NOTHING
	`, addr, ownerID)
	if err != nil {
		return fmt.Errorf("assign %s to owner %d: %w", addr, ownerID, err)
	}
	return nil
}

// Unassign removes an address-owner link.
func (s *Store) Unassign(ctx context.Context, addr string, ownerID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM address_owners WHERE address = ? AND owner_id = ?
	`, addr, ownerID)
	if err != nil {
		return fmt.Errorf("unassign %s from owner %d: %w", addr, ownerID, err)
	}
	return nil
}

// OwnersForAddress returns the IDs of owners assigned to an address.
// An address may have zero, one or many owners.
func (s *Store) OwnersForAddress(ctx context.Context, addr string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id FROM address_owners WHERE address = ? ORDER BY owner_id
	`, addr)
	if err != nil {
		return nil, fmt.Errorf("query owners for %s: %w", addr, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owner ids: %w", err)
	}

	return ids, nil
}

// AddressesForOwner returns the normalized addresses assigned to an owner.
func (s *Store) AddressesForOwner(ctx context.Context, ownerID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address FROM address_owners WHERE owner_id = ? ORDER BY address
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query addresses for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addrs = append(addrs, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}

	return addrs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (building.Owner, error) {
	var o building.Owner
	var email, phone, webhook sql.NullString
	var schedule string
	if err := row.Scan(&o.ID, &o.Name, &email, &phone, &webhook, &schedule); err != nil {
		return building.Owner{}, err
	}
	o.Email = email.String
	o.Phone = phone.String
	o.Webhook = webhook.String

	if err := json.Unmarshal([]byte(schedule), &o.Schedule); err != nil {
		return building.Owner{}, fmt.Errorf("decode schedule %q: %w", schedule, err)
	}
	return o, nil
}

func marshalSchedule(hours []int) (string, error) {
	if hours == nil {
		hours = defaultSchedule
	}
	b, err := json.Marshal(hours)
	if err != nil {
		return "", fmt.Errorf("encode schedule: %w", err)
	}
	return string(b), nil
}
