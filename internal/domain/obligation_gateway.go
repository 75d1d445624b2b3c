package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentObservation struct {
	OrderID         string
	NotificationID  string
	CorrelationID   string
	Amount          decimal.Decimal
	Currency        Currency
	CounterpartName string
}

type ObligationGateway interface {
	ListAwaitingPayment(ctx context.Context, currency Currency) ([]PendingObligation, error)
	MarkPaymentObserved(ctx context.Context, observation PaymentObservation) error
}
