package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/balkashynov/pilotlog/internal/models"
)

// DefaultWindows are the look-back periods shown by default. 28 days is the
// 672 hour flight time lookback.
var DefaultWindows = []int{7, 28, 60, 90, 365}

const dateLayout = "2006-01-02"

// WindowTotal is the flying in one rolling window
type WindowTotal struct {
	Days      int    `json:"days"`
	Flights   int    `json:"flights"`
	Minutes   int    `json:"minutes"`
	Formatted string `json:"formatted"`
}

// Rolling holds the totals of several windows ending on the same date
type Rolling struct {
	AsOf    string              `json:"as_of"`
	Windows map[int]WindowTotal `json:"windows"`
}

// Sorted returns the windows ordered by length
func (r Rolling) Sorted() []WindowTotal {
	out := make([]WindowTotal, 0, len(r.Windows))
	for _, w := range r.Windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Days < out[j].Days })
	return out
}

// RollingTotals sums block minutes and counts flights for each window w over
// the half-open interval asOf-w < date <= asOf. Deadhead legs are included.
func RollingTotals(asOf string, windows []int, flights []models.Flight) (Rolling, error) {
	end, err := time.Parse(dateLayout, asOf)
	if err != nil {
		return Rolling{}, fmt.Errorf("invalid as-of date %q", asOf)
	}

	result := Rolling{AsOf: asOf, Windows: make(map[int]WindowTotal, len(windows))}
	for _, days := range windows {
		if days <= 0 {
			return Rolling{}, fmt.Errorf("invalid window of %d days", days)
		}
		// ISO dates order lexically, so string comparison is exact here
		start := end.AddDate(0, 0, -days).Format(dateLayout)

		total := WindowTotal{Days: days}
		for _, f := range flights {
			if f.FlightDate > start && f.FlightDate <= asOf {
				total.Flights++
				total.Minutes += f.BlockMinutes
			}
		}
		total.Formatted = FormatMinutes(total.Minutes)
		result.Windows[days] = total
	}
	return result, nil
}

// MaxWindow returns the longest window, or 0 for none
func MaxWindow(windows []int) int {
	max := 0
	for _, w := range windows {
		if w > max {
			max = w
		}
	}
	return max
}

// BurnRate projects when a window limit will be reached at the current pace
type BurnRate struct {
	WindowDays       int    `json:"window_days"`
	UsedMinutes      int    `json:"used_minutes"`
	LimitMinutes     int    `json:"limit_minutes"`
	RemainingMinutes int    `json:"remaining_minutes"`
	DailyMinutes     int    `json:"daily_minutes"`
	DailyFormatted   string `json:"daily_formatted"`
	DaysToLimit      *int   `json:"days_to_limit"`
	ProjectedDate    string `json:"projected_date,omitempty"`
}

// ComputeBurnRate projects the date a limit is reached from the average
// daily flying over the window. Whole minutes and days throughout.
func ComputeBurnRate(asOf string, windowDays, usedMinutes, limitMinutes int) (BurnRate, error) {
	end, err := time.Parse(dateLayout, asOf)
	if err != nil {
		return BurnRate{}, fmt.Errorf("invalid as-of date %q", asOf)
	}

	br := BurnRate{
		WindowDays:   windowDays,
		UsedMinutes:  usedMinutes,
		LimitMinutes: limitMinutes,
	}
	br.RemainingMinutes = limitMinutes - usedMinutes
	if br.RemainingMinutes < 0 {
		br.RemainingMinutes = 0
	}
	if windowDays > 0 {
		br.DailyMinutes = usedMinutes / windowDays
	}
	br.DailyFormatted = FormatMinutes(br.DailyMinutes)

	if windowDays > 0 && usedMinutes > 0 {
		days := br.RemainingMinutes * windowDays / usedMinutes
		br.DaysToLimit = &days
		br.ProjectedDate = end.AddDate(0, 0, days).Format(dateLayout)
	}
	return br, nil
}
