package domain

import "time"

type DeviceStatus string

const (
	DeviceStatusActive  DeviceStatus = "ACTIVE"
	DeviceStatusRevoked DeviceStatus = "REVOKED"
)

type DelegatedDevice struct {
	ID         string
	Label      string
	KeyHash    string
	Status     DeviceStatus
	CreatedAt  time.Time
	LastSeenAt *time.Time
	RevokedAt  *time.Time
}
