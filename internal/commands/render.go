package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/balkashynov/pilotlog/internal/airports"
	"github.com/balkashynov/pilotlog/internal/importer"
	"github.com/balkashynov/pilotlog/internal/logbook"
	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/parser"
)

func newTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

// renderImportReport prints the counts and at most maxErrors row errors
func renderImportReport(w io.Writer, r *importer.Report, maxErrors int) {
	fmt.Fprintf(w, "%s (%s): %d imported, %d skipped, %d duplicate of %d rows\n",
		r.Filename, r.Source, r.RowsImported, r.RowsSkipped, r.RowsDuplicate, r.RowsProcessed)
	if r.RowsImported > 0 {
		fmt.Fprintf(w, "  added %s block", r.Summary.NewBlockFormatted)
		if r.Summary.DateRange != "" {
			fmt.Fprintf(w, " from %s", r.Summary.DateRange)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  batch %s\n", r.BatchID)

	for i, issue := range r.Errors {
		if i == maxErrors {
			fmt.Fprintf(w, "  ... and %d more errors\n", len(r.Errors)-maxErrors)
			break
		}
		fmt.Fprintf(w, "  row %d: %s\n", issue.Row, issue.Message)
	}
	if n := len(r.Warnings); n > 0 {
		fmt.Fprintf(w, "  %d warnings\n", n)
	}
}

func clockOrBlank(v *int) string {
	if v == nil {
		return ""
	}
	return parser.FormatClock(*v)
}

func typeOf(f models.Flight) string {
	if t := models.Str(f.AircraftType); t != "" {
		return t
	}
	return models.Str(f.AircraftTypeRaw)
}

func renderFlights(w io.Writer, result *logbook.FlightsResult) {
	renderWarnings(w, result.Warnings)
	if len(result.Flights) == 0 {
		fmt.Fprintln(w, "No flights found.")
		return
	}

	t := newTable(w, "ID", "DATE", "FLT", "FROM", "TO", "OUT", "IN", "BLOCK", "TAIL", "TYPE", "CREW")
	for _, f := range result.Flights {
		flt := models.Str(f.FlightNumber)
		if f.IsDeadhead {
			flt += " DH"
		}
		t.AppendRow(table.Row{
			f.ID, f.FlightDate, flt, f.Origin, f.Destination,
			clockOrBlank(f.DepartureTime), clockOrBlank(f.ArrivalTime),
			metrics.FormatMinutes(f.BlockMinutes), models.Str(f.TailNumber), typeOf(f),
			strings.TrimSpace(models.Str(f.CrewPosition) + " " + models.Str(f.CrewName)),
		})
	}
	t.Render()

	first := result.Offset + 1
	last := result.Offset + len(result.Flights)
	fmt.Fprintf(w, "(%d-%d of %d flights)\n", first, last, result.Total)
}

func renderStats(w io.Writer, result *logbook.StatsResult) {
	renderWarnings(w, result.Warnings)
	s := result.Stats

	t := newTable(w, "TOTAL", "VALUE")
	t.AppendRows([]table.Row{
		{"Flights", s.TotalFlights},
		{"Block", s.TotalBlockFormatted},
		{"Airports", s.UniqueAirports},
		{"Aircraft", s.UniqueAircraft},
		{"Deadhead", fmt.Sprintf("%d (%s)", s.DeadheadFlights, metrics.FormatMinutes(s.DeadheadMinutes))},
		{"PIC takeoffs", s.PICTakeoffs},
		{"PIC landings", s.PICLandings},
	})
	if s.DateRange != nil {
		t.AppendRow(table.Row{"First flight", s.DateRange.FirstFlight})
		t.AppendRow(table.Row{"Last flight", s.DateRange.LastFlight})
	}
	t.Render()

	if len(s.ByAircraftType) > 0 {
		types := newTable(w, "TYPE", "FLIGHTS", "BLOCK")
		for _, ts := range s.ByAircraftType {
			types.AppendRow(table.Row{ts.Type, ts.Flights, ts.Formatted})
		}
		types.Render()
	}
	if len(s.ByYear) > 0 {
		years := newTable(w, "YEAR", "FLIGHTS", "BLOCK")
		for _, ys := range s.ByYear {
			years.AppendRow(table.Row{ys.Year, ys.Flights, ys.Formatted})
		}
		years.Render()
	}
}

func renderRolling(w io.Writer, result *logbook.RollingResult) {
	renderWarnings(w, result.Warnings)
	if result.AsOf == "" {
		return
	}
	fmt.Fprintf(w, "Rolling totals as of %s\n", result.AsOf)
	t := newTable(w, "DAYS", "FLIGHTS", "BLOCK")
	for _, wt := range result.Windows {
		t.AppendRow(table.Row{wt.Days, wt.Flights, wt.Formatted})
	}
	t.Render()
}

func renderBurnRate(w io.Writer, br *metrics.BurnRate) {
	fmt.Fprintf(w, "%s of %s used in the last %d days (%s remaining)\n",
		metrics.FormatMinutes(br.UsedMinutes), metrics.FormatMinutes(br.LimitMinutes),
		br.WindowDays, metrics.FormatMinutes(br.RemainingMinutes))
	fmt.Fprintf(w, "averaging %s per day", br.DailyFormatted)
	if br.DaysToLimit == nil {
		fmt.Fprintln(w, ", no flying to project from")
		return
	}
	fmt.Fprintf(w, ", limit reached in %d days (%s)\n", *br.DaysToLimit, br.ProjectedDate)
}

func renderRoutes(w io.Writer, result *logbook.RoutesResult, top int) {
	renderWarnings(w, result.Warnings)
	if len(result.Routes) == 0 {
		fmt.Fprintln(w, "No routes flown.")
		return
	}

	routes := metrics.TopRoutes(result.Routes, top)
	t := newTable(w, "ROUTE", "FLIGHTS", "BLOCK", "FIRST", "LAST")
	for _, r := range routes {
		t.AppendRow(table.Row{r.Origin + "-" + r.Destination, r.Count, r.TotalFormatted, r.FirstFlown, r.LastFlown})
	}
	t.Render()

	stats := make([]metrics.AirportStat, 0, len(result.Airports))
	names := make(map[string]string, len(result.Airports))
	for _, a := range result.Airports {
		stats = append(stats, metrics.AirportStat{ICAO: a.ICAO, Departures: a.Departures, Arrivals: a.Arrivals})
		names[a.ICAO] = a.Name
	}
	at := newTable(w, "AIRPORT", "NAME", "DEP", "ARR", "VISITS")
	for _, a := range metrics.TopAirports(stats, top) {
		at.AppendRow(table.Row{a.ICAO, names[a.ICAO], a.Departures, a.Arrivals, a.Visits()})
	}
	at.Render()
}

func renderAirports(w io.Writer, list []models.Airport) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No airports loaded. Use 'pilotlog airports load airports.csv' first.")
		return
	}
	t := newTable(w, "ICAO", "IATA", "NAME", "CITY", "LAT", "LON")
	for _, a := range list {
		lat, lon := "", ""
		if a.HasCoordinates() {
			lat = fmt.Sprintf("%.4f", *a.Latitude)
			lon = fmt.Sprintf("%.4f", *a.Longitude)
		}
		t.AppendRow(table.Row{a.ICAO, models.Str(a.IATA), models.Str(a.Name), models.Str(a.City), lat, lon})
	}
	t.Render()
}

func renderAirportLoad(w io.Writer, loaded int, st airports.Stats) {
	fmt.Fprintf(w, "Loaded %d airports from %d rows (%d closed, %d without coordinates, %d bad idents, %d not flown)\n",
		loaded, st.Rows, st.Closed, st.NoCoords, st.BadIdent, st.Filtered)
}

func renderBatches(w io.Writer, batches []models.ImportBatch) {
	if len(batches) == 0 {
		fmt.Fprintln(w, "No imports yet.")
		return
	}
	t := newTable(w, "ID", "IMPORTED", "SOURCE", "FILE", "ROWS", "OK", "SKIPPED", "DUP")
	for _, b := range batches {
		t.AppendRow(table.Row{
			b.ID, b.ImportedAt.Local().Format("2006-01-02 15:04"), b.Source, b.Filename,
			b.RowsProcessed, b.RowsImported, b.RowsSkipped, b.RowsDuplicate,
		})
	}
	t.Render()
}

func renderBatch(w io.Writer, b *models.ImportBatch, maxErrors int) {
	renderBatches(w, []models.ImportBatch{*b})
	for i, issue := range b.Errors {
		if i == maxErrors {
			fmt.Fprintf(w, "... and %d more errors\n", len(b.Errors)-maxErrors)
			break
		}
		fmt.Fprintf(w, "row %d: %s\n", issue.Row, issue.Message)
	}
	for _, issue := range b.Warnings {
		fmt.Fprintf(w, "row %d warning: %s\n", issue.Row, issue.Message)
	}
}
