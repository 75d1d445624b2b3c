package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func bobNotification(amount, counterpart string) domain.BankNotification {
	return domain.BankNotification{
		ID:              "ntf-1",
		Amount:          decimal.RequireFromString(amount),
		Currency:        domain.CurrencyBOB,
		CounterpartName: counterpart,
		ObservedAt:      testNow.Add(-5 * time.Minute),
	}
}

func awaiting(orderID, amount string) domain.PendingObligation {
	return domain.PendingObligation{
		OrderID:   orderID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  domain.CurrencyBOB,
		Status:    domain.ObligationStatusAwaitingPayment,
		CreatedAt: testNow.Add(-30 * time.Minute),
		ExpiresAt: testNow.Add(30 * time.Minute),
	}
}

func tolerantPolicy() Policy {
	policy := DefaultPolicy()
	policy.Tolerance = decimal.RequireFromString("0.50")
	return policy
}

func TestMatch_ExactOutranksTolerance(t *testing.T) {
	exact := awaiting("ord-exact", "150.50")
	near := awaiting("ord-near", "150.40")

	outcome := tolerantPolicy().Match(
		bobNotification("150.50", "Juan Perez"),
		[]domain.PendingObligation{near, exact},
		testNow,
	)

	require.Equal(t, DecisionMatched, outcome.Decision)
	assert.Equal(t, "ord-exact", outcome.Obligation.OrderID)
	assert.True(t, outcome.Exact)
}

func TestMatch_ToleranceUsedWhenNoExact(t *testing.T) {
	near := awaiting("ord-near", "150.40")

	outcome := tolerantPolicy().Match(
		bobNotification("150.50", "Juan Perez"),
		[]domain.PendingObligation{near},
		testNow,
	)

	require.Equal(t, DecisionMatched, outcome.Decision)
	assert.Equal(t, "ord-near", outcome.Obligation.OrderID)
	assert.False(t, outcome.Exact)
}

func TestMatch_ZeroToleranceRejectsNearMiss(t *testing.T) {
	near := awaiting("ord-near", "150.40")

	outcome := DefaultPolicy().Match(
		bobNotification("150.50", "Juan Perez"),
		[]domain.PendingObligation{near},
		testNow,
	)

	assert.Equal(t, DecisionNoCandidates, outcome.Decision)
}

func TestMatch_PayerHintBreaksTie(t *testing.T) {
	hinted := awaiting("ord-hinted", "150.50")
	hinted.PayerNameHint = "JUAN PEREZ"
	other := awaiting("ord-other", "150.50")
	other.PayerNameHint = "Maria Lopez"

	outcome := DefaultPolicy().Match(
		bobNotification("150.50", "Juan Perez"),
		[]domain.PendingObligation{other, hinted},
		testNow,
	)

	require.Equal(t, DecisionMatched, outcome.Decision)
	assert.Equal(t, "ord-hinted", outcome.Obligation.OrderID)
}

func TestMatch_UnknownCounterpartSkipsHintAndOldestWins(t *testing.T) {
	older := awaiting("ord-older", "150.50")
	older.CreatedAt = testNow.Add(-45 * time.Minute)
	older.PayerNameHint = "Maria Lopez"
	newer := awaiting("ord-newer", "150.50")
	newer.PayerNameHint = "Juan Perez"

	outcome := DefaultPolicy().Match(
		bobNotification("150.50", domain.UnknownCounterpart),
		[]domain.PendingObligation{newer, older},
		testNow,
	)

	require.Equal(t, DecisionMatched, outcome.Decision)
	assert.Equal(t, "ord-older", outcome.Obligation.OrderID)
}

func TestMatch_FullTieIsAmbiguous(t *testing.T) {
	first := awaiting("ord-a", "150.50")
	second := awaiting("ord-b", "150.50")

	outcome := DefaultPolicy().Match(
		bobNotification("150.50", domain.UnknownCounterpart),
		[]domain.PendingObligation{first, second},
		testNow,
	)

	assert.Equal(t, DecisionAmbiguous, outcome.Decision)
}

func TestMatch_IneligibleCandidatesFiltered(t *testing.T) {
	wrongCurrency := awaiting("ord-usd", "150.50")
	wrongCurrency.Currency = domain.CurrencyUSD

	expired := awaiting("ord-expired", "150.50")
	expired.ExpiresAt = testNow.Add(-time.Minute)

	wrongStatus := awaiting("ord-paid", "150.50")
	wrongStatus.Status = "PAID"

	tooNew := awaiting("ord-future", "150.50")
	tooNew.CreatedAt = testNow // observedAt is five minutes ago, beyond the skew

	outcome := DefaultPolicy().Match(
		bobNotification("150.50", "Juan Perez"),
		[]domain.PendingObligation{wrongCurrency, expired, wrongStatus, tooNew},
		testNow,
	)

	assert.Equal(t, DecisionNoCandidates, outcome.Decision)
}

func TestMatch_ClockSkewAdmitsSlightlyNewerObligation(t *testing.T) {
	notification := bobNotification("150.50", "Juan Perez")
	slightlyNewer := awaiting("ord-skew", "150.50")
	slightlyNewer.CreatedAt = notification.ObservedAt.Add(time.Minute)

	outcome := DefaultPolicy().Match(
		notification,
		[]domain.PendingObligation{slightlyNewer},
		testNow,
	)

	require.Equal(t, DecisionMatched, outcome.Decision)
	assert.Equal(t, "ord-skew", outcome.Obligation.OrderID)
}

func TestMatch_DisabledTieBreaksLeaveAmbiguity(t *testing.T) {
	policy := DefaultPolicy()
	policy.PreferPayerHint = false
	policy.PreferOldest = false

	hinted := awaiting("ord-hinted", "150.50")
	hinted.PayerNameHint = "Juan Perez"
	older := awaiting("ord-older", "150.50")
	older.CreatedAt = testNow.Add(-45 * time.Minute)

	outcome := policy.Match(
		bobNotification("150.50", "Juan Perez"),
		[]domain.PendingObligation{hinted, older},
		testNow,
	)

	assert.Equal(t, DecisionAmbiguous, outcome.Decision)
}
