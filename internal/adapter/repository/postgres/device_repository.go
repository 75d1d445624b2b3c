package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

type DeviceRepository struct {
	db *sql.DB
}

func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, device domain.DelegatedDevice) (domain.DelegatedDevice, error) {
	const query = `
INSERT INTO delegated_devices (
	id,
	label,
	key_hash,
	status
) VALUES ($1, $2, $3, $4)
RETURNING created_at`

	var createdAt time.Time
	if err := r.db.QueryRowContext(
		ctx,
		query,
		device.ID,
		device.Label,
		device.KeyHash,
		device.Status,
	).Scan(&createdAt); err != nil {
		return domain.DelegatedDevice{}, fmt.Errorf("create device: %w", err)
	}

	device.CreatedAt = createdAt

	return device, nil
}

func (r *DeviceRepository) Get(ctx context.Context, id string) (domain.DelegatedDevice, error) {
	const query = `
SELECT id, label, key_hash, status, created_at, last_seen_at, revoked_at
FROM delegated_devices
WHERE id = $1`

	var device domain.DelegatedDevice
	var lastSeenAt sql.NullTime
	var revokedAt sql.NullTime

	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID,
		&device.Label,
		&device.KeyHash,
		&device.Status,
		&device.CreatedAt,
		&lastSeenAt,
		&revokedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.DelegatedDevice{}, domain.ErrRecordNotFound
		}
		return domain.DelegatedDevice{}, fmt.Errorf("get device: %w", err)
	}

	if lastSeenAt.Valid {
		value := lastSeenAt.Time
		device.LastSeenAt = &value
	}
	if revokedAt.Valid {
		value := revokedAt.Time
		device.RevokedAt = &value
	}

	return device, nil
}

func (r *DeviceRepository) TouchSeen(ctx context.Context, id string, at time.Time) error {
	const query = `
UPDATE delegated_devices
SET last_seen_at = $2
WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("touch device seen: %w", err)
	}

	return nil
}

func (r *DeviceRepository) Revoke(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `
UPDATE delegated_devices
SET status = 'REVOKED',
    revoked_at = $2
WHERE id = $1
  AND status = 'ACTIVE'`

	result, err := r.db.ExecContext(ctx, query, id, revokedAt)
	if err != nil {
		return fmt.Errorf("revoke device: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke device rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrDeviceRevoked
	}

	return nil
}
