package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxNameWords       = 5
	maxNameLength      = 60
	maxReferenceWords  = 8
	maxReferenceLength = 80
)

// Words that end a counterpart-name run: field labels, clause-starting
// prepositions and currency tokens.
var nameStopWords = newWordSet(
	"ref", "referencia", "glosa", "motivo", "concepto", "memo",
	"cuenta", "cta", "nro", "monto", "importe", "saldo",
	"fecha", "hora", "para", "a", "al", "por", "con", "en", "tu", "su",
	"bs", "bob", "usd", "usdt", "sus", "us",
)

var referenceStopWords = newWordSet(
	"cuenta", "cta", "nro", "monto", "importe", "saldo",
	"fecha", "hora", "disponible",
	"bs", "bob", "usd", "usdt", "sus", "us",
)

func newWordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, word := range words {
		set[word] = true
	}
	return set
}

// extractName walks introducer occurrences left to right and returns the
// first non-empty bounded run after one. An introducer directly followed by
// a stop word or a digit yields nothing and the scan moves on, so "de Bs.
// 100 de Juan" still finds the payer.
func extractName(lowered string, introducers []string) string {
	offset := 0
	for {
		start, ok := findIntroducer(lowered, offset, introducers)
		if !ok {
			return ""
		}
		if run := boundedRun(lowered[start:], maxNameWords, maxNameLength, nameStopWords, true); run != "" {
			return run
		}
		offset = start
	}
}

func extractReference(lowered string, introducers []string) string {
	start, ok := findIntroducer(lowered, 0, introducers)
	if !ok {
		return ""
	}
	return boundedRun(lowered[start:], maxReferenceWords, maxReferenceLength, referenceStopWords, false)
}

// findIntroducer locates the earliest introducer occurrence at or after
// from, preferring the longest introducer when two start at the same
// position. Returns the index just past the introducer.
func findIntroducer(lowered string, from int, introducers []string) (int, bool) {
	bestPos, bestLen := -1, 0
	for _, introducer := range introducers {
		token := strings.ToLower(introducer)
		if token == "" {
			continue
		}
		search := from
		for search < len(lowered) {
			idx := strings.Index(lowered[search:], token)
			if idx == -1 {
				break
			}
			pos := search + idx
			if wordBoundaryBefore(lowered, pos) {
				if bestPos == -1 || pos < bestPos || (pos == bestPos && len(token) > bestLen) {
					bestPos, bestLen = pos, len(token)
				}
				break
			}
			search = pos + 1
		}
	}
	if bestPos == -1 {
		return 0, false
	}
	return bestPos + bestLen, true
}

func wordBoundaryBefore(lowered string, pos int) bool {
	if pos == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(lowered[:pos])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}

// boundedRun takes words until a stop word, the word or length cap, or
// (when digitsStop) a word containing a digit.
func boundedRun(rest string, maxWords, maxLen int, stops map[string]bool, digitsStop bool) string {
	var kept []string
	length := 0
	for _, word := range strings.Fields(rest) {
		trimmed := strings.Trim(word, ".,;:!?()[]\"'$")
		if trimmed == "" || stops[trimmed] {
			break
		}
		if digitsStop && strings.ContainsAny(trimmed, "0123456789") {
			break
		}
		if len(kept) == maxWords {
			break
		}
		length += len(trimmed) + 1
		if length-1 > maxLen {
			break
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}

func titleCase(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
