package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/cambiatec/fiat-notification-reconciler/internal/bankprofile"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

// amountLookahead bounds how far from a currency marker the numeric run may
// start, in bytes of lower-cased text.
const amountLookahead = 20

// extractAmount scans lowered text for the first currency marker that has a
// positive numeric run nearby. Markers compete by position in the text; at
// the same position the profile's marker order decides, so "usdt" can shadow
// "usd".
func extractAmount(lowered string, markers []bankprofile.AmountMarker) (decimal.Decimal, domain.Currency, bool) {
	for pos := 0; pos < len(lowered); pos++ {
		for _, marker := range markers {
			token := strings.ToLower(marker.Token)
			if token == "" || !markerAt(lowered, token, pos) {
				continue
			}
			if amount, ok := amountNear(lowered, pos, pos+len(token)); ok {
				return amount, marker.Currency, true
			}
		}
	}
	return decimal.Decimal{}, "", false
}

// markerAt reports whether token occurs at pos on a word boundary. A letter
// immediately before the token, or immediately after a token ending in a
// letter, disqualifies the hit ("usd" must not match inside "usada").
func markerAt(lowered, token string, pos int) bool {
	if !strings.HasPrefix(lowered[pos:], token) {
		return false
	}
	if pos > 0 {
		prev, _ := utf8.DecodeLastRuneInString(lowered[:pos])
		if unicode.IsLetter(prev) {
			return false
		}
	}
	last, _ := utf8.DecodeLastRuneInString(token)
	if unicode.IsLetter(last) {
		if rest := lowered[pos+len(token):]; rest != "" {
			next, _ := utf8.DecodeRuneInString(rest)
			if unicode.IsLetter(next) {
				return false
			}
		}
	}
	return true
}

func amountNear(lowered string, markerStart, markerEnd int) (decimal.Decimal, bool) {
	if amount, ok := amountAhead(lowered, markerEnd); ok {
		return amount, true
	}
	return amountBehind(lowered, markerStart)
}

func amountAhead(lowered string, from int) (decimal.Decimal, bool) {
	limit := from + amountLookahead
	if limit > len(lowered) {
		limit = len(lowered)
	}
	for i := from; i < limit; i++ {
		if isDigit(lowered[i]) {
			return parseAmountRun(numericRunAt(lowered, i))
		}
	}
	return decimal.Decimal{}, false
}

// amountBehind handles suffix-marker spellings like "150,50 Bs." by taking
// the numeric run closest to the marker within the window before it.
func amountBehind(lowered string, markerStart int) (decimal.Decimal, bool) {
	from := markerStart - amountLookahead
	if from < 0 {
		from = 0
	}
	var lastRun string
	for i := from; i < markerStart; i++ {
		if !isDigit(lowered[i]) {
			continue
		}
		if i > 0 && isDigit(lowered[i-1]) {
			// inside a run that started before the window
			continue
		}
		run := numericRunAt(lowered, i)
		if i+len(run) <= markerStart {
			lastRun = run
		}
		i += len(run) - 1
	}
	if lastRun == "" {
		return decimal.Decimal{}, false
	}
	return parseAmountRun(lastRun)
}

// numericRunAt consumes digits plus group/decimal separators. A separator
// is only part of the run when a digit follows it, so a sentence period
// after the amount is never captured.
func numericRunAt(lowered string, start int) string {
	end := start
	for end < len(lowered) {
		c := lowered[end]
		if isDigit(c) {
			end++
			continue
		}
		if (c == '.' || c == ',') && end+1 < len(lowered) && isDigit(lowered[end+1]) {
			end++
			continue
		}
		break
	}
	return lowered[start:end]
}

func parseAmountRun(run string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(normalizeAmountRun(run))
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// normalizeAmountRun resolves mixed separator conventions: a final
// separator followed by one or two digits is the decimal point, every other
// separator groups thousands. "150,50", "1.500,75" and "1,500.75" all
// normalize to the values a bank statement means by them.
func normalizeAmountRun(run string) string {
	lastSep := strings.LastIndexAny(run, ".,")
	if lastSep == -1 {
		return run
	}
	fraction := run[lastSep+1:]
	if len(fraction) <= 2 {
		return stripGroupSeparators(run[:lastSep]) + "." + fraction
	}
	return stripGroupSeparators(run)
}

func stripGroupSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
