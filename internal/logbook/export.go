package logbook

import (
	"context"

	"github.com/balkashynov/pilotlog/internal/export"
	"github.com/balkashynov/pilotlog/internal/metrics"
)

// Workbook gathers the flights matching q, their statistics and the rolling
// totals as of asOf into an export workbook
func (s *Service) Workbook(ctx context.Context, q Query, asOf string) (*export.Workbook, []string, error) {
	flights, warnings, err := s.all(ctx, "export", q)
	if err != nil {
		return nil, nil, err
	}

	rolling, err := s.Rolling(ctx, asOf, nil)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, rolling.Warnings...)

	wb := &export.Workbook{
		Flights: flights,
		Stats:   metrics.ComputeStats(flights),
		Rolling: metrics.Rolling{AsOf: rolling.AsOf, Windows: make(map[int]metrics.WindowTotal, len(rolling.Windows))},
	}
	for _, w := range rolling.Windows {
		wb.Rolling.Windows[w.Days] = w
	}
	return wb, warnings, nil
}
