package domain

import (
	"context"
	"time"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification BankNotification) (BankNotification, error)
	Get(ctx context.Context, id string) (BankNotification, error)
	GetBySignature(ctx context.Context, signature string) (BankNotification, error)
	FindDuplicate(ctx context.Context, candidate BankNotification, window time.Duration) (BankNotification, error)
	ListUnacknowledged(ctx context.Context, limit int, oldestFirst bool) ([]BankNotification, error)
	ListSweepable(ctx context.Context, currency Currency, limit int) ([]BankNotification, error)
	ClaimMatch(ctx context.Context, notificationID string, orderID string, matchedAt time.Time) error
	ReleaseMatch(ctx context.Context, notificationID string) error
	MarkUnmatched(ctx context.Context, notificationID string, reason UnmatchedReason) error
	Acknowledge(ctx context.Context, notificationID string, acknowledgedAt time.Time) (BankNotification, error)
}
