package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage format for flight dates
const DateLayout = "2006-01-02"

var (
	isoDateRegex      = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	relativeDaysRegex = regexp.MustCompile(`^-?(\d+)\s*(d|day|days|w|week|weeks)$`)
)

// ParseDate parses a calendar date and returns it in YYYY-MM-DD form.
// Only year-first dates are accepted ("2025-01-24", "2025/1/24");
// day/month orderings are ambiguous and rejected.
func ParseDate(input string) (string, error) {
	t, err := parseCalendarDate(input)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ParseAsOf parses a reference date for rolling totals.
// Supported formats:
// - "" or "today"
// - "yesterday"
// - YYYY-MM-DD
// - N days/weeks back (e.g. "30d", "2 weeks", "-7d")
func ParseAsOf(input string, now time.Time) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch input {
	case "", "today":
		return today.Format(DateLayout), nil
	case "yesterday":
		return today.AddDate(0, 0, -1).Format(DateLayout), nil
	}

	if matches := relativeDaysRegex.FindStringSubmatch(input); matches != nil {
		amount, err := strconv.Atoi(matches[1])
		if err != nil {
			return "", fmt.Errorf("invalid number")
		}
		if strings.HasPrefix(matches[2], "w") {
			amount *= 7
		}
		return today.AddDate(0, 0, -amount).Format(DateLayout), nil
	}

	return ParseDate(input)
}

// DaysBefore returns the date n days before date (both YYYY-MM-DD)
func DaysBefore(date string, n int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", date)
	}
	return t.AddDate(0, 0, -n).Format(DateLayout), nil
}

// DaysBetween returns the whole number of days from a to b
func DaysBetween(a, b string) (int, error) {
	ta, err := time.Parse(DateLayout, a)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", a)
	}
	tb, err := time.Parse(DateLayout, b)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", b)
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

func parseCalendarDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	matches := isoDateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", input)
	}

	year, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	day, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid date %q: month must be between 1 and 12", input)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// Catches 2025-02-30 and friends
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date %q: no such day", input)
	}
	return t, nil
}
