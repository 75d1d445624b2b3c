package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
	"github.com/cambiatec/fiat-notification-reconciler/internal/matcher"
)

// SweepReport counts the outcomes of a single reconciliation pass.
type SweepReport struct {
	Scanned   int
	Matched   int
	Unmatched int
	Ambiguous int
	Failed    int
}

type ReconciliationService struct {
	notifications domain.NotificationRepository
	orders        domain.ObligationGateway
	policy        matcher.Policy
	interval      time.Duration
	batchSize     int
	trigger       chan struct{}
}

func NewReconciliationService(
	notifications domain.NotificationRepository,
	orders domain.ObligationGateway,
	policy matcher.Policy,
	interval time.Duration,
	batchSize int,
) *ReconciliationService {
	return &ReconciliationService{
		notifications: notifications,
		orders:        orders,
		policy:        policy,
		interval:      interval,
		batchSize:     batchSize,
		trigger:       make(chan struct{}, 1),
	}
}

// Trigger wakes the sweep loop without blocking the caller. A full buffer
// means a sweep is already pending, so the poke can be dropped: the sweep
// re-reads the table and will see the new row.
func (s *ReconciliationService) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run sweeps on a fixed interval and whenever Trigger fires, until ctx is
// cancelled. Sweep errors are logged and the loop keeps going; the periodic
// tick is the correctness guarantee, triggers only reduce latency.
func (s *ReconciliationService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("reconciliation service started", logger.Fields{
		"intervalSeconds": s.interval.Seconds(),
		"batchSize":       s.batchSize,
	})

	for {
		select {
		case <-ctx.Done():
			logger.Info("reconciliation service stopped", nil)
			return nil
		case <-ticker.C:
		case <-s.trigger:
		}

		if _, err := s.SweepOnce(ctx); err != nil {
			logger.Error("reconciliation service sweep failed", err, nil)
		}
	}
}

// SweepOnce scans unsettled notifications per currency, fetches the open
// obligations once per currency, and matches each notification under the
// configured policy.
func (s *ReconciliationService) SweepOnce(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	for _, currency := range domain.Currencies() {
		pending, err := s.notifications.ListSweepable(ctx, currency, s.batchSize)
		if err != nil {
			return report, fmt.Errorf("list sweepable notifications: %w", err)
		}
		if len(pending) == 0 {
			continue
		}

		obligations, err := s.orders.ListAwaitingPayment(ctx, currency)
		if err != nil {
			logger.Error("reconciliation service obligation fetch failed", err, logger.Fields{
				"currency": currency,
			})
			report.Failed += len(pending)
			report.Scanned += len(pending)
			continue
		}

		taken := make(map[string]struct{})
		now := time.Now().UTC()

		for _, notification := range pending {
			report.Scanned++

			outcome := s.policy.Match(notification, withoutTaken(obligations, taken), now)
			switch outcome.Decision {
			case matcher.DecisionMatched:
				if err := s.settle(ctx, notification, outcome); err != nil {
					report.Failed++
					continue
				}
				taken[outcome.Obligation.OrderID] = struct{}{}
				report.Matched++
			case matcher.DecisionNoCandidates:
				if s.recordUnmatched(ctx, notification, domain.UnmatchedReasonNoCandidates) {
					report.Unmatched++
				} else {
					report.Failed++
				}
			case matcher.DecisionAmbiguous:
				if s.recordUnmatched(ctx, notification, domain.UnmatchedReasonAmbiguous) {
					report.Ambiguous++
				} else {
					report.Failed++
				}
			}
		}
	}

	if report.Scanned > 0 {
		logger.Info("reconciliation service sweep finished", logger.Fields{
			"scanned":   report.Scanned,
			"matched":   report.Matched,
			"unmatched": report.Unmatched,
			"ambiguous": report.Ambiguous,
			"failed":    report.Failed,
		})
	}

	return report, nil
}

// settle claims the notification for the matched obligation and notifies the
// order subsystem. The claim is released if the order subsystem refuses or
// cannot be reached, which returns the notification to the sweepable pool.
func (s *ReconciliationService) settle(ctx context.Context, notification domain.BankNotification, outcome matcher.Outcome) error {
	orderID := outcome.Obligation.OrderID

	if err := s.notifications.ClaimMatch(ctx, notification.ID, orderID, time.Now().UTC()); err != nil {
		if isUniqueViolation(err) {
			logger.Info("reconciliation service obligation already taken", logger.Fields{
				"notificationId": notification.ID,
				"orderId":        orderID,
			})
			return domain.ErrObligationTaken
		}
		if errors.Is(err, domain.ErrRecordNotFound) {
			// The notification advanced concurrently; nothing to undo.
			return err
		}
		logger.Error("reconciliation service claim failed", err, logger.Fields{
			"notificationId": notification.ID,
			"orderId":        orderID,
		})
		return err
	}

	observation := domain.PaymentObservation{
		OrderID:         orderID,
		NotificationID:  notification.ID,
		CorrelationID:   notification.CorrelationID,
		Amount:          notification.Amount,
		Currency:        notification.Currency,
		CounterpartName: notification.CounterpartName,
	}

	if err := s.orders.MarkPaymentObserved(ctx, observation); err != nil {
		logger.Error("reconciliation service payment observation failed", err, logger.Fields{
			"notificationId": notification.ID,
			"orderId":        orderID,
		})
		if releaseErr := s.notifications.ReleaseMatch(ctx, notification.ID); releaseErr != nil {
			logger.Error("reconciliation service release failed", releaseErr, logger.Fields{
				"notificationId": notification.ID,
			})
		}
		return fmt.Errorf("mark payment observed: %w", err)
	}

	basis := "tolerance"
	if outcome.Exact {
		basis = "exact"
	}
	logger.Info("reconciliation service notification matched", logger.Fields{
		"notificationId": notification.ID,
		"orderId":        orderID,
		"basis":          basis,
		"amount":         notification.Amount.String(),
		"currency":       notification.Currency,
	})

	return nil
}

func (s *ReconciliationService) recordUnmatched(ctx context.Context, notification domain.BankNotification, reason domain.UnmatchedReason) bool {
	if notification.Status == domain.NotificationStatusUnmatched &&
		notification.UnmatchedReason != nil && *notification.UnmatchedReason == reason {
		return true
	}

	if err := s.notifications.MarkUnmatched(ctx, notification.ID, reason); err != nil {
		logger.Error("reconciliation service mark unmatched failed", err, logger.Fields{
			"notificationId": notification.ID,
			"reason":         reason,
		})
		return false
	}

	logger.Info("reconciliation service notification unmatched", logger.Fields{
		"notificationId": notification.ID,
		"reason":         reason,
		"amount":         notification.Amount.String(),
		"currency":       notification.Currency,
	})

	return true
}

// withoutTaken filters out obligations already consumed earlier in the same
// sweep, so two notifications in one batch cannot claim the same order.
func withoutTaken(obligations []domain.PendingObligation, taken map[string]struct{}) []domain.PendingObligation {
	if len(taken) == 0 {
		return obligations
	}

	remaining := make([]domain.PendingObligation, 0, len(obligations))
	for _, obligation := range obligations {
		if _, ok := taken[obligation.OrderID]; ok {
			continue
		}
		remaining = append(remaining, obligation)
	}

	return remaining
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
