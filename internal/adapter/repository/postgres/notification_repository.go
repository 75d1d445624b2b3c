package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
)

type NotificationRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts the notification with ON CONFLICT DO NOTHING on the dedupe
// signature, so two concurrent submissions of the same bank event resolve
// at the storage layer: the loser gets ErrDuplicateNotification.
func (r *NotificationRepository) Create(ctx context.Context, notification domain.BankNotification) (domain.BankNotification, error) {
	logger.Info("notification repository create", logger.Fields{
		"notificationId": notification.ID,
		"bankId":         notification.BankID,
		"currency":       notification.Currency,
		"status":         notification.Status,
	})

	const query = `
INSERT INTO bank_notifications (
	id,
	correlation_id,
	dedupe_signature,
	bank_id,
	amount,
	currency,
	counterpart_name,
	reference_text,
	raw_title,
	raw_content,
	source_package,
	observed_at,
	status
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
ON CONFLICT (dedupe_signature) DO NOTHING
RETURNING created_at, updated_at`

	var createdAt time.Time
	var updatedAt time.Time

	if err := r.db.QueryRowContext(
		ctx,
		query,
		notification.ID,
		notification.CorrelationID,
		notification.DedupeSignature(),
		notification.BankID,
		notification.Amount,
		notification.Currency,
		notification.CounterpartName,
		notification.ReferenceText,
		notification.RawTitle,
		notification.RawContent,
		notification.SourcePackage,
		notification.ObservedAt,
		notification.Status,
	).Scan(&createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.BankNotification{}, domain.ErrDuplicateNotification
		}
		logger.Error("notification repository create failed", err, logger.Fields{
			"notificationId": notification.ID,
		})
		return domain.BankNotification{}, fmt.Errorf("create notification: %w", err)
	}

	notification.CreatedAt = createdAt
	notification.UpdatedAt = updatedAt

	return notification, nil
}

func (r *NotificationRepository) Get(ctx context.Context, id string) (domain.BankNotification, error) {
	const query = `
SELECT id, correlation_id, bank_id, amount, currency, counterpart_name, reference_text,
	raw_title, raw_content, source_package, observed_at, status, unmatched_reason,
	matched_order_id, matched_at, acknowledged_at, created_at, updated_at
FROM bank_notifications
WHERE id = $1`

	var notification domain.BankNotification
	if err := scanNotification(r.db.QueryRowContext(ctx, query, id), &notification); err != nil {
		if err == sql.ErrNoRows {
			return domain.BankNotification{}, domain.ErrRecordNotFound
		}
		return domain.BankNotification{}, fmt.Errorf("get notification: %w", err)
	}

	return notification, nil
}

func (r *NotificationRepository) GetBySignature(ctx context.Context, signature string) (domain.BankNotification, error) {
	const query = `
SELECT id, correlation_id, bank_id, amount, currency, counterpart_name, reference_text,
	raw_title, raw_content, source_package, observed_at, status, unmatched_reason,
	matched_order_id, matched_at, acknowledged_at, created_at, updated_at
FROM bank_notifications
WHERE dedupe_signature = $1`

	var notification domain.BankNotification
	if err := scanNotification(r.db.QueryRowContext(ctx, query, signature), &notification); err != nil {
		if err == sql.ErrNoRows {
			return domain.BankNotification{}, domain.ErrRecordNotFound
		}
		return domain.BankNotification{}, fmt.Errorf("get notification by signature: %w", err)
	}

	return notification, nil
}

// FindDuplicate looks for an earlier record of the same bank event within
// the trailing window around observedAt. The counterpart comparison happens
// here rather than in SQL so it shares the exact normalization the dedupe
// signature uses.
func (r *NotificationRepository) FindDuplicate(ctx context.Context, candidate domain.BankNotification, window time.Duration) (domain.BankNotification, error) {
	const query = `
SELECT id, correlation_id, bank_id, amount, currency, counterpart_name, reference_text,
	raw_title, raw_content, source_package, observed_at, status, unmatched_reason,
	matched_order_id, matched_at, acknowledged_at, created_at, updated_at
FROM bank_notifications
WHERE bank_id = $1
  AND currency = $2
  AND amount = $3
  AND observed_at BETWEEN $4 AND $5
ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(
		ctx,
		query,
		candidate.BankID,
		candidate.Currency,
		candidate.Amount,
		candidate.ObservedAt.Add(-window),
		candidate.ObservedAt.Add(window),
	)
	if err != nil {
		return domain.BankNotification{}, fmt.Errorf("find duplicate notification: %w", err)
	}
	defer rows.Close()

	counterpart := domain.NormalizeCounterpart(candidate.CounterpartName)
	for rows.Next() {
		var notification domain.BankNotification
		if err := scanNotification(rows, &notification); err != nil {
			return domain.BankNotification{}, fmt.Errorf("scan duplicate candidate: %w", err)
		}
		if domain.NormalizeCounterpart(notification.CounterpartName) == counterpart {
			return notification, nil
		}
	}
	if err := rows.Err(); err != nil {
		return domain.BankNotification{}, fmt.Errorf("iterate duplicate candidates: %w", err)
	}

	return domain.BankNotification{}, domain.ErrRecordNotFound
}

func (r *NotificationRepository) ListUnacknowledged(ctx context.Context, limit int, oldestFirst bool) ([]domain.BankNotification, error) {
	const ascQuery = `
SELECT id, correlation_id, bank_id, amount, currency, counterpart_name, reference_text,
	raw_title, raw_content, source_package, observed_at, status, unmatched_reason,
	matched_order_id, matched_at, acknowledged_at, created_at, updated_at
FROM bank_notifications
WHERE status <> 'ACKNOWLEDGED'
ORDER BY observed_at ASC, id ASC
LIMIT $1`

	const descQuery = `
SELECT id, correlation_id, bank_id, amount, currency, counterpart_name, reference_text,
	raw_title, raw_content, source_package, observed_at, status, unmatched_reason,
	matched_order_id, matched_at, acknowledged_at, created_at, updated_at
FROM bank_notifications
WHERE status <> 'ACKNOWLEDGED'
ORDER BY observed_at DESC, id DESC
LIMIT $1`

	query := descQuery
	if oldestFirst {
		query = ascQuery
	}

	return r.list(ctx, query, limit)
}

func (r *NotificationRepository) ListSweepable(ctx context.Context, currency domain.Currency, limit int) ([]domain.BankNotification, error) {
	const query = `
SELECT id, correlation_id, bank_id, amount, currency, counterpart_name, reference_text,
	raw_title, raw_content, source_package, observed_at, status, unmatched_reason,
	matched_order_id, matched_at, acknowledged_at, created_at, updated_at
FROM bank_notifications
WHERE status IN ('STORED', 'UNMATCHED')
  AND currency = $1
ORDER BY observed_at ASC, id ASC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, currency, limit)
	if err != nil {
		return nil, fmt.Errorf("list sweepable notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *NotificationRepository) list(ctx context.Context, query string, limit int) ([]domain.BankNotification, error) {
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// ClaimMatch is the conditional update that decides the winner when two
// sweeps race for the same notification or two notifications race for the
// same obligation. The partial unique index on matched_order_id raises a
// unique violation for the second notification; the status condition stops
// a second sweep of the same notification.
func (r *NotificationRepository) ClaimMatch(ctx context.Context, notificationID string, orderID string, matchedAt time.Time) error {
	const query = `
UPDATE bank_notifications
SET status = 'MATCHED',
    matched_order_id = $2,
    matched_at = $3,
    unmatched_reason = NULL,
    updated_at = NOW()
WHERE id = $1
  AND status IN ('STORED', 'UNMATCHED')
  AND matched_order_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, notificationID, orderID, matchedAt)
	if err != nil {
		return fmt.Errorf("claim match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim match rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	logger.Info("notification matched", logger.Fields{
		"notificationId": notificationID,
		"orderId":        orderID,
	})

	return nil
}

// ReleaseMatch undoes a claim after the downstream transition failed. The
// notification goes back to UNMATCHED with no reason set, so the next sweep
// retries it.
func (r *NotificationRepository) ReleaseMatch(ctx context.Context, notificationID string) error {
	const query = `
UPDATE bank_notifications
SET status = 'UNMATCHED',
    matched_order_id = NULL,
    matched_at = NULL,
    updated_at = NOW()
WHERE id = $1
  AND status = 'MATCHED'`

	result, err := r.db.ExecContext(ctx, query, notificationID)
	if err != nil {
		return fmt.Errorf("release match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("release match rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	logger.Info("notification match released", logger.Fields{
		"notificationId": notificationID,
	})

	return nil
}

func (r *NotificationRepository) MarkUnmatched(ctx context.Context, notificationID string, reason domain.UnmatchedReason) error {
	const query = `
UPDATE bank_notifications
SET status = 'UNMATCHED',
    unmatched_reason = $2,
    updated_at = NOW()
WHERE id = $1
  AND status IN ('STORED', 'UNMATCHED')
  AND matched_order_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, notificationID, reason)
	if err != nil {
		return fmt.Errorf("mark unmatched: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark unmatched rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// Acknowledge is a compare-and-set: only a not-yet-acknowledged row is
// updated. An id that exists but is already final comes back with
// ErrNotificationFinal so the caller can answer idempotently.
func (r *NotificationRepository) Acknowledge(ctx context.Context, notificationID string, acknowledgedAt time.Time) (domain.BankNotification, error) {
	const query = `
UPDATE bank_notifications
SET status = 'ACKNOWLEDGED',
    acknowledged_at = $2,
    updated_at = NOW()
WHERE id = $1
  AND status <> 'ACKNOWLEDGED'
RETURNING id, correlation_id, bank_id, amount, currency, counterpart_name, reference_text,
	raw_title, raw_content, source_package, observed_at, status, unmatched_reason,
	matched_order_id, matched_at, acknowledged_at, created_at, updated_at`

	var notification domain.BankNotification
	err := scanNotification(r.db.QueryRowContext(ctx, query, notificationID, acknowledgedAt), &notification)
	if err == nil {
		logger.Info("notification acknowledged", logger.Fields{
			"notificationId": notificationID,
		})
		return notification, nil
	}
	if err != sql.ErrNoRows {
		return domain.BankNotification{}, fmt.Errorf("acknowledge notification: %w", err)
	}

	existing, getErr := r.Get(ctx, notificationID)
	if getErr != nil {
		return domain.BankNotification{}, getErr
	}
	return existing, domain.ErrNotificationFinal
}

func collectNotifications(rows *sql.Rows) ([]domain.BankNotification, error) {
	notifications := make([]domain.BankNotification, 0)
	for rows.Next() {
		var notification domain.BankNotification
		if err := scanNotification(rows, &notification); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

func scanNotification(row rowScanner, notification *domain.BankNotification) error {
	var (
		unmatchedReason sql.NullString
		matchedOrderID  sql.NullString
		matchedAt       sql.NullTime
		acknowledgedAt  sql.NullTime
	)

	if err := row.Scan(
		&notification.ID,
		&notification.CorrelationID,
		&notification.BankID,
		&notification.Amount,
		&notification.Currency,
		&notification.CounterpartName,
		&notification.ReferenceText,
		&notification.RawTitle,
		&notification.RawContent,
		&notification.SourcePackage,
		&notification.ObservedAt,
		&notification.Status,
		&unmatchedReason,
		&matchedOrderID,
		&matchedAt,
		&acknowledgedAt,
		&notification.CreatedAt,
		&notification.UpdatedAt,
	); err != nil {
		return err
	}

	if unmatchedReason.Valid {
		reason := domain.UnmatchedReason(unmatchedReason.String)
		notification.UnmatchedReason = &reason
	}
	if matchedOrderID.Valid {
		value := matchedOrderID.String
		notification.MatchedOrderID = &value
	}
	if matchedAt.Valid {
		value := matchedAt.Time
		notification.MatchedAt = &value
	}
	if acknowledgedAt.Valid {
		value := acknowledgedAt.Time
		notification.AcknowledgedAt = &value
	}

	return nil
}
