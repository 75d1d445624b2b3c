package matcher

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

type Decision string

const (
	DecisionMatched      Decision = "MATCHED"
	DecisionNoCandidates Decision = "NO_CANDIDATES"
	DecisionAmbiguous    Decision = "AMBIGUOUS"
)

// Policy holds the configurable knobs of the matching algorithm. Tolerance
// admits amounts within a fixed threshold when no exact candidate exists;
// ClockSkew relaxes the created-before-observed rule, since obligation
// timestamps come from the order subsystem's clock and observedAt from a
// phone's.
type Policy struct {
	Tolerance       decimal.Decimal
	ClockSkew       time.Duration
	PreferPayerHint bool
	PreferOldest    bool
}

func DefaultPolicy() Policy {
	return Policy{
		Tolerance:       decimal.Zero,
		ClockSkew:       2 * time.Minute,
		PreferPayerHint: true,
		PreferOldest:    true,
	}
}

type Outcome struct {
	Decision   Decision
	Obligation domain.PendingObligation
	Exact      bool
}

// Match selects at most one obligation for the notification. Exact-amount
// candidates exclude tolerance candidates; ties narrow by payer hint, then
// by earliest createdAt. A tie that survives every enabled criterion is
// deliberately left unresolved: crediting among equally plausible orders
// is a manual decision.
func (p Policy) Match(notification domain.BankNotification, obligations []domain.PendingObligation, now time.Time) Outcome {
	var exact, tolerated []domain.PendingObligation
	for _, obligation := range obligations {
		if !p.eligible(notification, obligation, now) {
			continue
		}
		diff := obligation.Amount.Sub(notification.Amount).Abs()
		switch {
		case diff.IsZero():
			exact = append(exact, obligation)
		case diff.LessThanOrEqual(p.Tolerance):
			tolerated = append(tolerated, obligation)
		}
	}

	pool := exact
	isExact := true
	if len(pool) == 0 {
		pool = tolerated
		isExact = false
	}
	if len(pool) == 0 {
		return Outcome{Decision: DecisionNoCandidates}
	}

	if len(pool) > 1 && p.PreferPayerHint {
		if hinted := filterByPayerHint(notification, pool); len(hinted) > 0 {
			pool = hinted
		}
	}
	if len(pool) > 1 && p.PreferOldest {
		pool = filterOldest(pool)
	}

	if len(pool) == 1 {
		return Outcome{Decision: DecisionMatched, Obligation: pool[0], Exact: isExact}
	}
	return Outcome{Decision: DecisionAmbiguous}
}

func (p Policy) eligible(notification domain.BankNotification, obligation domain.PendingObligation, now time.Time) bool {
	if obligation.Currency != notification.Currency {
		return false
	}
	if obligation.Status != domain.ObligationStatusAwaitingPayment {
		return false
	}
	if obligation.Expired(now) {
		return false
	}
	if obligation.CreatedAt.After(notification.ObservedAt.Add(p.ClockSkew)) {
		return false
	}
	return true
}

// filterByPayerHint keeps obligations whose hint matches the extracted
// counterpart. An unknown counterpart matches nothing: absence of a name
// removes the tie-break signal rather than endorsing every candidate.
func filterByPayerHint(notification domain.BankNotification, pool []domain.PendingObligation) []domain.PendingObligation {
	counterpart := domain.NormalizeCounterpart(notification.CounterpartName)
	if counterpart == "" || notification.CounterpartName == domain.UnknownCounterpart {
		return nil
	}
	var hinted []domain.PendingObligation
	for _, obligation := range pool {
		if obligation.PayerNameHint == "" {
			continue
		}
		if domain.NormalizeCounterpart(obligation.PayerNameHint) == counterpart {
			hinted = append(hinted, obligation)
		}
	}
	return hinted
}

func filterOldest(pool []domain.PendingObligation) []domain.PendingObligation {
	oldest := pool[0].CreatedAt
	for _, obligation := range pool[1:] {
		if obligation.CreatedAt.Before(oldest) {
			oldest = obligation.CreatedAt
		}
	}
	var kept []domain.PendingObligation
	for _, obligation := range pool {
		if obligation.CreatedAt.Equal(oldest) {
			kept = append(kept, obligation)
		}
	}
	return kept
}
