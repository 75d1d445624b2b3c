package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDedupeSignature_StableAcrossFormatting(t *testing.T) {
	observed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	first := BankNotification{
		BankID:          "bnb",
		Amount:          decimal.RequireFromString("150.50"),
		Currency:        CurrencyBOB,
		CounterpartName: "Juan Perez",
		ObservedAt:      observed,
	}
	second := BankNotification{
		BankID:          "BNB",
		Amount:          decimal.RequireFromString("150.5"),
		Currency:        CurrencyBOB,
		CounterpartName: "  JUAN   PEREZ ",
		ObservedAt:      observed.Add(20 * time.Second),
	}

	if first.DedupeSignature() != second.DedupeSignature() {
		t.Fatalf("expected equal signatures, got %q and %q", first.DedupeSignature(), second.DedupeSignature())
	}
}

func TestDedupeSignature_DistinguishesAmounts(t *testing.T) {
	observed := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

	first := BankNotification{
		BankID:          "bnb",
		Amount:          decimal.RequireFromString("150.50"),
		Currency:        CurrencyBOB,
		CounterpartName: "Juan Perez",
		ObservedAt:      observed,
	}
	second := first
	second.Amount = decimal.RequireFromString("150.51")

	if first.DedupeSignature() == second.DedupeSignature() {
		t.Fatalf("expected different signatures for different amounts")
	}
}
