package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type NotificationStatus string

const (
	NotificationStatusStored       NotificationStatus = "STORED"
	NotificationStatusMatched      NotificationStatus = "MATCHED"
	NotificationStatusUnmatched    NotificationStatus = "UNMATCHED"
	NotificationStatusAcknowledged NotificationStatus = "ACKNOWLEDGED"
)

type UnmatchedReason string

const (
	UnmatchedReasonNoCandidates UnmatchedReason = "NO_CANDIDATES"
	UnmatchedReasonAmbiguous    UnmatchedReason = "AMBIGUOUS"
)

// UnknownCounterpart marks a payment whose sender could not be extracted.
// Classification failures are rejected outright, so there is no analogous
// sentinel for the bank.
const UnknownCounterpart = "UNKNOWN"

type BankNotification struct {
	ID              string
	CorrelationID   string
	BankID          string
	Amount          decimal.Decimal
	Currency        Currency
	CounterpartName string
	ReferenceText   string
	RawTitle        string
	RawContent      string
	SourcePackage   string
	ObservedAt      time.Time
	Status          NotificationStatus
	UnmatchedReason *UnmatchedReason
	MatchedOrderID  *string
	MatchedAt       *time.Time
	AcknowledgedAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DedupeSignature identifies two submissions of the same underlying bank
// event: same bank, amount, currency, counterpart and observation minute.
// Minute truncation keeps the signature stable across devices whose clocks
// agree to within the dedupe window.
func (n BankNotification) DedupeSignature() string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(n.BankID)),
		n.Amount.String(),
		string(n.Currency),
		n.ObservedAt.UTC().Truncate(time.Minute).Format(time.RFC3339),
		NormalizeCounterpart(n.CounterpartName),
	}
	return strings.Join(parts, "|")
}

// NormalizeCounterpart collapses case and runs of whitespace so that payer
// hints and extracted names compare equal regardless of formatting.
func NormalizeCounterpart(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
