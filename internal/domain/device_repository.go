package domain

import (
	"context"
	"time"
)

type DeviceRepository interface {
	Create(ctx context.Context, device DelegatedDevice) (DelegatedDevice, error)
	Get(ctx context.Context, id string) (DelegatedDevice, error)
	TouchSeen(ctx context.Context, id string, at time.Time) error
	Revoke(ctx context.Context, id string, revokedAt time.Time) error
}
