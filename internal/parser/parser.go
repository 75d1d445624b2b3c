package parser

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cambiatec/fiat-notification-reconciler/internal/bankprofile"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

var (
	ErrUnrecognizedSource = errors.New("text does not look like a bank notification")
	ErrUnparseableAmount  = errors.New("no currency marker yielded a positive amount")
)

type ParsedPayment struct {
	BankID          string
	Amount          decimal.Decimal
	Currency        domain.Currency
	CounterpartName string
	ReferenceText   string
}

type Parser struct {
	registry *bankprofile.Registry
}

func New(registry *bankprofile.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse turns raw notification text into a typed payment signal.
// Classification and a positive amount are required for acceptance;
// counterpart and reference are best-effort enrichments that default to
// the unknown sentinel and the empty string.
func (p *Parser) Parse(title, content, sourcePackage string) (ParsedPayment, error) {
	profile, ok := p.registry.Classify(title, content, sourcePackage)
	if !ok {
		return ParsedPayment{}, ErrUnrecognizedSource
	}

	lowered := strings.ToLower(strings.Join(strings.Fields(title+" "+content), " "))

	amount, currency, ok := extractAmount(lowered, profile.AmountMarkers)
	if !ok {
		return ParsedPayment{}, ErrUnparseableAmount
	}

	parsed := ParsedPayment{
		BankID:          profile.BankID,
		Amount:          amount,
		Currency:        currency,
		CounterpartName: domain.UnknownCounterpart,
	}
	if name := extractName(lowered, profile.NameIntroducers); name != "" {
		parsed.CounterpartName = titleCase(name)
	}
	parsed.ReferenceText = extractReference(lowered, profile.ReferenceIntroducers)
	return parsed, nil
}
