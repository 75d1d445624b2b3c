package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

const (
	IngestOutcomeAccepted = "ACCEPTED"
	IngestOutcomeIgnored  = "IGNORED"
)

type IngestNotificationRequest struct {
	Title             string `json:"title"`
	Content           string `json:"content"`
	SourcePackage     string `json:"sourcePackage,omitempty"`
	ObservedAtEpochMs int64  `json:"observedAtEpochMs"`
}

func (r IngestNotificationRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Content) == "" {
		errs = append(errs, "title or content is required")
	}
	if r.ObservedAtEpochMs <= 0 {
		errs = append(errs, "observedAtEpochMs must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (r IngestNotificationRequest) ObservedAt() time.Time {
	return time.UnixMilli(r.ObservedAtEpochMs).UTC()
}

type IngestNotificationResponse struct {
	ID              string           `json:"id,omitempty"`
	CorrelationID   string           `json:"correlationId,omitempty"`
	Outcome         string           `json:"outcome"`
	Status          string           `json:"status,omitempty"`
	Duplicate       bool             `json:"duplicate"`
	IgnoredReason   string           `json:"ignoredReason,omitempty"`
	BankID          string           `json:"bankId,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	CounterpartName string           `json:"counterpartName,omitempty"`
	ReferenceText   string           `json:"referenceText,omitempty"`
}

type AcknowledgeNotificationRequest struct {
	NotificationID string `json:"notificationId"`
}

func (r AcknowledgeNotificationRequest) Validate() error {
	if strings.TrimSpace(r.NotificationID) == "" {
		return errors.New("notificationId is required")
	}

	return nil
}

type AcknowledgeNotificationResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	AcknowledgedAt string `json:"acknowledgedAt,omitempty"`
}

type NotificationView struct {
	ID              string          `json:"id"`
	CorrelationID   string          `json:"correlationId"`
	BankID          string          `json:"bankId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CounterpartName string          `json:"counterpartName"`
	ReferenceText   string          `json:"referenceText,omitempty"`
	SourcePackage   string          `json:"sourcePackage,omitempty"`
	ObservedAt      string          `json:"observedAt"`
	Status          string          `json:"status"`
	UnmatchedReason string          `json:"unmatchedReason,omitempty"`
	MatchedOrderID  string          `json:"matchedOrderId,omitempty"`
	MatchedAt       string          `json:"matchedAt,omitempty"`
	CreatedAt       string          `json:"createdAt"`
}

func NewNotificationView(n domain.BankNotification) NotificationView {
	view := NotificationView{
		ID:              n.ID,
		CorrelationID:   n.CorrelationID,
		BankID:          n.BankID,
		Amount:          n.Amount,
		Currency:        string(n.Currency),
		CounterpartName: n.CounterpartName,
		ReferenceText:   n.ReferenceText,
		SourcePackage:   n.SourcePackage,
		ObservedAt:      n.ObservedAt.UTC().Format(time.RFC3339),
		Status:          string(n.Status),
		CreatedAt:       n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.UnmatchedReason != nil {
		view.UnmatchedReason = string(*n.UnmatchedReason)
	}
	if n.MatchedOrderID != nil {
		view.MatchedOrderID = *n.MatchedOrderID
	}
	if n.MatchedAt != nil {
		view.MatchedAt = n.MatchedAt.UTC().Format(time.RFC3339)
	}

	return view
}
