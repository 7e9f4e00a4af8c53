package commands

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/balkashynov/pilotlog/internal/importer"
	"github.com/balkashynov/pilotlog/internal/logbook"
	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/testutil"
)

func TestRenderImportReport(t *testing.T) {
	report := &importer.Report{
		BatchID:       "b-1",
		Filename:      "trips.csv",
		Source:        models.SourceSWA,
		RowsProcessed: 10,
		RowsImported:  3,
		RowsSkipped:   7,
		Summary:       importer.Summary{NewBlockFormatted: "4:30", DateRange: "2025-01-01 to 2025-01-03"},
	}
	for i := 0; i < 7; i++ {
		report.Errors = append(report.Errors, models.RowIssue{Row: i + 2, Message: fmt.Sprintf("bad row %d", i)})
	}

	tests := []struct {
		name      string
		maxErrors int
		contains  []string
		excludes  []string
	}{
		{
			name:      "capped",
			maxErrors: 5,
			contains:  []string{"3 imported, 7 skipped, 0 duplicate of 10 rows", "added 4:30 block from 2025-01-01 to 2025-01-03", "row 6: bad row 4", "... and 2 more errors"},
			excludes:  []string{"bad row 5"},
		},
		{
			name:      "none shown",
			maxErrors: 0,
			contains:  []string{"... and 7 more errors"},
			excludes:  []string{"bad row 0"},
		},
		{
			name:      "all shown",
			maxErrors: 10,
			contains:  []string{"row 8: bad row 6"},
			excludes:  []string{"more errors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderImportReport(&buf, report, tt.maxErrors)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestRenderFlights(t *testing.T) {
	var buf bytes.Buffer
	renderFlights(&buf, &logbook.FlightsResult{Flights: []models.Flight{}, Warnings: []string{"limit clamped"}})
	assert.Contains(t, buf.String(), "warning: limit clamped")
	assert.Contains(t, buf.String(), "No flights found.")

	buf.Reset()
	f := testutil.NewFlight("2025-01-24", "KHOU", "KDAL", 65,
		testutil.WithFlightNumber("1234"), testutil.WithType("73H", "B737-800"), testutil.Deadhead())
	renderFlights(&buf, &logbook.FlightsResult{Flights: []models.Flight{f}, Total: 30, Offset: 10, Limit: 10})
	out := buf.String()
	assert.Contains(t, out, "1234 DH")
	assert.Contains(t, out, "1:05")
	assert.Contains(t, out, "B737-800")
	assert.Contains(t, out, "(11-11 of 30 flights)")
}

func TestRenderRollingAndBurnRate(t *testing.T) {
	var buf bytes.Buffer
	renderRolling(&buf, &logbook.RollingResult{
		AsOf:    "2025-01-24",
		Windows: []metrics.WindowTotal{{Days: 28, Flights: 12, Minutes: 1830, Formatted: "30:30"}},
	})
	assert.Contains(t, buf.String(), "as of 2025-01-24")
	assert.Contains(t, buf.String(), "30:30")

	br, err := metrics.ComputeBurnRate("2025-01-24", 28, 3600, 6000)
	assert.NoError(t, err)
	buf.Reset()
	renderBurnRate(&buf, &br)
	assert.Contains(t, buf.String(), "60:00 of 100:00 used in the last 28 days (40:00 remaining)")
	assert.Contains(t, buf.String(), "limit reached in 18 days (2025-02-11)")

	idle, err := metrics.ComputeBurnRate("2025-01-24", 28, 0, 6000)
	assert.NoError(t, err)
	buf.Reset()
	renderBurnRate(&buf, &idle)
	assert.Contains(t, buf.String(), "no flying to project from")
}

func TestRenderRoutesTop(t *testing.T) {
	flights := []models.Flight{
		testutil.NewFlight("2025-01-01", "KHOU", "KDAL", 60),
		testutil.NewFlight("2025-01-02", "KHOU", "KDAL", 60),
		testutil.NewFlight("2025-01-03", "KDAL", "KDEN", 120),
	}
	routes, airports := metrics.AggregateRoutes(flights)
	result := &logbook.RoutesResult{Routes: routes}
	for _, a := range airports {
		result.Airports = append(result.Airports, logbook.RouteAirport{ICAO: a.ICAO, Departures: a.Departures, Arrivals: a.Arrivals})
	}

	var buf bytes.Buffer
	renderRoutes(&buf, result, 1)
	assert.Contains(t, buf.String(), "KHOU-KDAL")
	assert.NotContains(t, buf.String(), "KDAL-KDEN")
	assert.Contains(t, buf.String(), "KDAL")

	buf.Reset()
	renderRoutes(&buf, &logbook.RoutesResult{}, 10)
	assert.Contains(t, buf.String(), "No routes flown.")
}

func TestQueryFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "flights"}
	addQueryFlags(cmd, true)
	assert.NoError(t, cmd.ParseFlags([]string{"--from", "2025-01-01", "--crew", "smith", "--type", "B737-800", "--limit", "5"}))

	q := queryFromFlags(cmd)
	assert.Equal(t, logbook.Query{DateFrom: "2025-01-01", Crew: "smith", AircraftType: "B737-800", Limit: 5}, q)

	unpaged := &cobra.Command{Use: "stats"}
	addQueryFlags(unpaged, false)
	assert.NoError(t, unpaged.ParseFlags([]string{"--airport", "KDEN"}))
	assert.Equal(t, logbook.Query{Airport: "KDEN"}, queryFromFlags(unpaged))
}

func TestHelpAndVersion(t *testing.T) {
	var buf bytes.Buffer
	showCustomHelp(&buf)
	assert.Contains(t, buf.String(), "pilotlog import")

	buf.Reset()
	SetVersion("1.2.3", "abc", "today")
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "pilotlog 1.2.3 (commit abc")
}
