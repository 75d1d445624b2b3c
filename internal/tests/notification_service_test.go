package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/models"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/usecase/services"
)

func TestNotificationServiceListAppliesDefaults(t *testing.T) {
	var gotLimit int
	var gotOldestFirst bool

	svc := services.NewNotificationService(notificationRepoStub{
		listUnacknowledgedFn: func(_ context.Context, limit int, oldestFirst bool) ([]domain.BankNotification, error) {
			gotLimit = limit
			gotOldestFirst = oldestFirst
			return []domain.BankNotification{{
				ID:            "n-1",
				CorrelationID: "c-1",
				BankID:        "bnb",
				Amount:        decimal.RequireFromString("150.50"),
				Currency:      domain.CurrencyBOB,
				ObservedAt:    time.Now().UTC(),
				Status:        domain.NotificationStatusUnmatched,
				CreatedAt:     time.Now().UTC(),
			}}, nil
		},
	})

	resp, err := svc.ListUnacknowledged(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotLimit != 50 || !gotOldestFirst {
		t.Fatalf("expected default limit 50 ascending, got %d %v", gotLimit, gotOldestFirst)
	}
	if resp.Data == nil || resp.Data.Count != 1 || resp.Data.Order != "asc" {
		t.Fatalf("unexpected page %+v", resp.Data)
	}
}

func TestNotificationServiceListCapsLimit(t *testing.T) {
	var gotLimit int

	svc := services.NewNotificationService(notificationRepoStub{
		listUnacknowledgedFn: func(_ context.Context, limit int, _ bool) ([]domain.BankNotification, error) {
			gotLimit = limit
			return nil, nil
		},
	})

	if _, err := svc.ListUnacknowledged(context.Background(), 10_000, "desc"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotLimit != 200 {
		t.Fatalf("expected capped limit 200, got %d", gotLimit)
	}
}

func TestNotificationServiceListRejectsUnknownOrder(t *testing.T) {
	svc := services.NewNotificationService(notificationRepoStub{})

	_, err := svc.ListUnacknowledged(context.Background(), 10, "sideways")
	if err == nil {
		t.Fatal("expected validation error for unknown order")
	}
}

func TestNotificationServiceAcknowledgeSuccess(t *testing.T) {
	ackedAt := time.Date(2026, 2, 10, 16, 0, 0, 0, time.UTC)

	svc := services.NewNotificationService(notificationRepoStub{
		acknowledgeFn: func(_ context.Context, notificationID string, _ time.Time) (domain.BankNotification, error) {
			return domain.BankNotification{
				ID:             notificationID,
				Status:         domain.NotificationStatusAcknowledged,
				AcknowledgedAt: &ackedAt,
			}, nil
		},
	})

	resp, err := svc.Acknowledge(context.Background(), models.AcknowledgeNotificationRequest{NotificationID: "n-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data == nil || resp.Data.Status != string(domain.NotificationStatusAcknowledged) {
		t.Fatal("expected acknowledged response")
	}
	if resp.Data.AcknowledgedAt != "2026-02-10T16:00:00Z" {
		t.Fatalf("unexpected acknowledgedAt %q", resp.Data.AcknowledgedAt)
	}
}

func TestNotificationServiceAcknowledgeIsIdempotent(t *testing.T) {
	ackedAt := time.Date(2026, 2, 10, 16, 0, 0, 0, time.UTC)

	svc := services.NewNotificationService(notificationRepoStub{
		acknowledgeFn: func(context.Context, string, time.Time) (domain.BankNotification, error) {
			return domain.BankNotification{}, domain.ErrNotificationFinal
		},
		getFn: func(_ context.Context, id string) (domain.BankNotification, error) {
			return domain.BankNotification{
				ID:             id,
				Status:         domain.NotificationStatusAcknowledged,
				AcknowledgedAt: &ackedAt,
			}, nil
		},
	})

	resp, err := svc.Acknowledge(context.Background(), models.AcknowledgeNotificationRequest{NotificationID: "n-1"})
	if err != nil {
		t.Fatalf("repeated ack must succeed, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected success envelope for repeated ack")
	}
	if resp.Message != "notification already acknowledged" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Data.AcknowledgedAt != "2026-02-10T16:00:00Z" {
		t.Fatalf("expected original ack time, got %q", resp.Data.AcknowledgedAt)
	}
}

func TestNotificationServiceAcknowledgeUnknownID(t *testing.T) {
	svc := services.NewNotificationService(notificationRepoStub{
		acknowledgeFn: func(context.Context, string, time.Time) (domain.BankNotification, error) {
			return domain.BankNotification{}, domain.ErrRecordNotFound
		},
	})

	resp, err := svc.Acknowledge(context.Background(), models.AcknowledgeNotificationRequest{NotificationID: "missing"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if resp.Message != "Notification not found" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
