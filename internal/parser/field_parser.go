package parser

import (
	"strings"
)

// StripCarrierPrefix removes a carrier designator from a flight number,
// e.g. "WN1234" -> "1234". The remainder is kept as text.
func StripCarrierPrefix(flightNumber, prefix string) string {
	flightNumber = strings.TrimSpace(flightNumber)
	if prefix == "" {
		return flightNumber
	}
	if len(flightNumber) > len(prefix) && strings.EqualFold(flightNumber[:len(prefix)], prefix) {
		return strings.TrimSpace(flightNumber[len(prefix):])
	}
	return flightNumber
}

// ParseFlag reports whether a cell holds the literal true token "1"
func ParseFlag(input string) bool {
	return strings.TrimSpace(input) == "1"
}

// IsMarked reports whether a cell holds one of the marker tokens
// (case-insensitive). With no tokens any non-empty cell counts.
func IsMarked(input string, tokens ...string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if len(tokens) == 0 {
		return true
	}
	for _, token := range tokens {
		if strings.EqualFold(input, token) {
			return true
		}
	}
	return false
}

// NormalizeCode uppercases and trims an airport code or tail number
func NormalizeCode(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}
