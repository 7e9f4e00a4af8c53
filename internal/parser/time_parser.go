package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinutesPerDay is the crossover adjustment for legs that arrive after midnight
const MinutesPerDay = 24 * 60

var (
	clockRegex    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	durationRegex = regexp.MustCompile(`^(\d+):(\d{2})$`)
	integerRegex  = regexp.MustCompile(`^\d+$`)
)

// ParseClock parses a local time "H:MM" or "HH:MM" into minutes since midnight.
// Returns false for empty or unparseable input.
func ParseClock(input string) (int, bool) {
	matches := clockRegex.FindStringSubmatch(strings.TrimSpace(input))
	if matches == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	if hours > 23 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// ParseBlock parses a block time cell.
// Supported formats:
// - integer minutes ("254")
// - H:MM duration ("4:14")
// Returns false when the cell is empty or not a duration.
func ParseBlock(input string) (int, bool) {
	input = strings.TrimSpace(input)
	if integerRegex.MatchString(input) {
		minutes, err := strconv.Atoi(input)
		if err != nil {
			return 0, false
		}
		return minutes, true
	}
	if matches := durationRegex.FindStringSubmatch(input); matches != nil {
		hours, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, false
		}
		minutes, _ := strconv.Atoi(matches[2])
		if minutes > 59 {
			return 0, false
		}
		return hours*60 + minutes, true
	}
	return 0, false
}

// DeriveBlock computes block minutes from departure and arrival clock times,
// adding a day when the arrival is earlier than the departure.
func DeriveBlock(departure, arrival int) int {
	if arrival < departure {
		arrival += MinutesPerDay
	}
	return arrival - departure
}

// FormatClock renders minutes since midnight as HH:MM
func FormatClock(minutes int) string {
	if minutes < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", minutes/60%24, minutes%60)
}
