package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambiatec/fiat-notification-reconciler/internal/bankprofile"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

func TestNormalizeAmountRun(t *testing.T) {
	tests := []struct {
		run  string
		want string
	}{
		{"150,50", "150.50"},
		{"150.50", "150.50"},
		{"1.500,75", "1500.75"},
		{"1,500.75", "1500.75"},
		{"1.500", "1500"},
		{"1,500", "1500"},
		{"12.345.678", "12345678"},
		{"150", "150"},
		{"1.5", "1.5"},
		{"0,50", "0.50"},
	}
	for _, tt := range tests {
		t.Run(tt.run, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAmountRun(tt.run))
		})
	}
}

func TestExtractAmount(t *testing.T) {
	markers := []bankprofile.AmountMarker{
		{Token: "bs.", Currency: domain.CurrencyBOB},
		{Token: "bs", Currency: domain.CurrencyBOB},
		{Token: "usdt", Currency: domain.CurrencyUSDT},
		{Token: "usd", Currency: domain.CurrencyUSD},
		{Token: "$us", Currency: domain.CurrencyUSD},
	}

	tests := []struct {
		name         string
		text         string
		wantAmount   string
		wantCurrency domain.Currency
		wantOK       bool
	}{
		{
			name:         "prefix marker with comma decimal",
			text:         "recibiste bs. 150,50 de juan",
			wantAmount:   "150.50",
			wantCurrency: domain.CurrencyBOB,
			wantOK:       true,
		},
		{
			name:         "suffix marker takes the run before it",
			text:         "recibiste 200,75 bs de maria",
			wantAmount:   "200.75",
			wantCurrency: domain.CurrencyBOB,
			wantOK:       true,
		},
		{
			name:         "usdt shadows usd at the same position",
			text:         "deposito usdt 99,90 confirmado",
			wantAmount:   "99.90",
			wantCurrency: domain.CurrencyUSDT,
			wantOK:       true,
		},
		{
			name:         "thousands separator stripped",
			text:         "abono de $us 1.500,75 en tu cuenta",
			wantAmount:   "1500.75",
			wantCurrency: domain.CurrencyUSD,
			wantOK:       true,
		},
		{
			name:         "sentence period not captured",
			text:         "pago bs. 150. gracias",
			wantAmount:   "150",
			wantCurrency: domain.CurrencyBOB,
			wantOK:       true,
		},
		{
			name:   "no currency marker",
			text:   "recibiste 500 de juan",
			wantOK: false,
		},
		{
			name:   "zero amount rejected",
			text:   "pago bs. 0,00 procesado",
			wantOK: false,
		},
		{
			name:   "number beyond the lookahead window",
			text:   "bs. recibiste un deposito importante 150,50",
			wantOK: false,
		},
		{
			name:   "marker inside a word does not count",
			text:   "clubs 100 miembros",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, currency, ok := extractAmount(tt.text, markers)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.wantAmount)), "got %s", amount)
			assert.Equal(t, tt.wantCurrency, currency)
		})
	}
}
