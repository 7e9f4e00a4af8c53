// Package metrics computes rolling totals, route aggregates and summary
// statistics over a set of flights. All durations are integer minutes.
package metrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var minutesRegex = regexp.MustCompile(`^(-?)(\d+):([0-5]\d)$`)

// FormatMinutes renders a duration as H:MM with unbounded hours
func FormatMinutes(total int) string {
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d", sign, total/60, total%60)
}

// ParseMinutes is the inverse of FormatMinutes
func ParseMinutes(s string) (int, error) {
	matches := minutesRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return 0, fmt.Errorf("invalid duration %q: expected H:MM", s)
	}
	hours, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	minutes, _ := strconv.Atoi(matches[3])
	total := hours*60 + minutes
	if matches[1] == "-" {
		total = -total
	}
	return total, nil
}
