package domain

type Currency string

const (
	CurrencyBOB  Currency = "BOB"
	CurrencyUSD  Currency = "USD"
	CurrencyUSDT Currency = "USDT"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyBOB, CurrencyUSD, CurrencyUSDT:
		return true
	}
	return false
}

func Currencies() []Currency {
	return []Currency{CurrencyBOB, CurrencyUSD, CurrencyUSDT}
}
