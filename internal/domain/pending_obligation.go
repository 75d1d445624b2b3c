package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const ObligationStatusAwaitingPayment = "AWAITING_PAYMENT"

type PendingObligation struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      Currency
	PayerNameHint string
	Status        string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

func (o PendingObligation) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}
