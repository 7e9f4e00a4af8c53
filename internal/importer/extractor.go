package importer

import (
	"fmt"
	"strings"

	"github.com/balkashynov/pilotlog/internal/aircraft"
	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/parser"
)

// Record is one raw data row together with the columns it is read against
type Record struct {
	Line    int
	Cells   []string
	Columns Columns
}

// Attribute is an extra value to store alongside a flight
type Attribute struct {
	Name  string
	Value string
	Unit  string
}

// Draft is a typed flight extracted from a row, not yet stored
type Draft struct {
	Flight     models.Flight
	Attributes []Attribute
	Warnings   []string
}

// Extractor turns one raw row into a flight draft or a *RowError
type Extractor interface {
	Extract(rec Record) (*Draft, error)
}

// Format pairs a layout with the extractor that understands it
type Format struct {
	Layout    Layout
	Extractor Extractor
}

// TabularExtractor extracts flights from rows described by a Layout
type TabularExtractor struct {
	source     models.Source
	layout     Layout
	normalizer *aircraft.Normalizer
}

// NewTabularExtractor creates an extractor for a tabular layout
func NewTabularExtractor(source models.Source, layout Layout, normalizer *aircraft.Normalizer) *TabularExtractor {
	if normalizer == nil {
		normalizer = aircraft.Default()
	}
	return &TabularExtractor{source: source, layout: layout, normalizer: normalizer}
}

// Extract parses rec. Only a bad date or a missing route rejects the row;
// every other anomaly is tolerated, with a warning where it matters.
func (e *TabularExtractor) Extract(rec Record) (*Draft, error) {
	fields := e.layout.resolveFields(rec.Columns)
	cell := func(name string) string { return rec.Columns.Cell(rec.Cells, name) }

	rawDate := cell(fields.Date)
	date, err := parser.ParseDate(rawDate)
	if err != nil {
		return nil, rowError(rec.Line, ReasonInvalidDate, "invalid date %q", rawDate)
	}

	origin := parser.NormalizeCode(cell(fields.Origin))
	destination := parser.NormalizeCode(cell(fields.Destination))
	if origin == "" || destination == "" {
		return nil, rowError(rec.Line, ReasonMissingRoute, "missing origin or destination for flight on %s", date)
	}

	d := &Draft{}
	if n, want := len(rec.Cells), rec.Columns.Len(); n < want {
		d.Warnings = append(d.Warnings, fmt.Sprintf("row has %d of %d columns", n, want))
	}
	f := &d.Flight
	f.Source = e.source
	f.FlightDate = date
	f.Origin = origin
	f.Destination = destination
	f.FlightNumber = models.OptString(parser.StripCarrierPrefix(cell(fields.FlightNumber), e.layout.CarrierPrefix))
	f.IsDeadhead = parser.IsMarked(cell(fields.Deadhead), e.layout.DeadheadTokens...)

	if minutes, ok := parser.ParseClock(cell(fields.Departure)); ok {
		f.DepartureTime = &minutes
	}
	if minutes, ok := parser.ParseClock(cell(fields.Arrival)); ok {
		f.ArrivalTime = &minutes
	}

	e.extractBlock(d, cell(fields.Block))

	f.TailNumber = models.OptString(parser.NormalizeCode(cell(fields.Tail)))

	if raw := cell(fields.AircraftType); raw != "" {
		f.AircraftTypeRaw = &raw
		if normalized, ok := e.normalizer.Normalize(raw); ok {
			f.AircraftType = &normalized
		}
	}

	if crew, ok := parser.ParseCrew(cell(fields.Crew)); ok {
		f.CrewPosition = models.OptString(crew.Position)
		f.CrewName = models.OptString(crew.Name)
		f.CrewID = models.OptString(crew.ID)
	}

	f.PICTakeoff = parser.ParseFlag(cell(fields.Takeoff))
	f.PICLanding = parser.ParseFlag(cell(fields.Landing))
	f.Remarks = models.OptString(cell(fields.Remarks))

	d.Attributes = append(d.Attributes, e.extraAttributes(rec, fields)...)
	return d, nil
}

// extractBlock reads the block cell as whole minutes. A missing block on a
// flown leg is derived from the clock times across midnight if possible.
func (e *TabularExtractor) extractBlock(d *Draft, raw string) {
	f := &d.Flight
	if minutes, ok := parser.ParseBlock(raw); ok {
		f.BlockMinutes = minutes
		return
	}

	if raw != "" {
		d.Warnings = append(d.Warnings, fmt.Sprintf("unreadable block time %q", raw))
	}
	if f.IsDeadhead {
		return
	}

	if f.DepartureTime == nil || f.ArrivalTime == nil {
		d.Warnings = append(d.Warnings, "block time missing and no departure/arrival times to derive it from; stored as 0:00")
		return
	}

	f.BlockMinutes = parser.DeriveBlock(*f.DepartureTime, *f.ArrivalTime)
	d.Warnings = append(d.Warnings, fmt.Sprintf("block time missing, derived %s from %s-%s",
		metrics.FormatMinutes(f.BlockMinutes), parser.FormatClock(*f.DepartureTime), parser.FormatClock(*f.ArrivalTime)))
	d.Attributes = append(d.Attributes, Attribute{Name: "block_source", Value: "derived"})
}

// extraAttributes keeps non-empty cells of columns that are not flight fields
func (e *TabularExtractor) extraAttributes(rec Record, fields Fields) []Attribute {
	if e.layout.Columns != nil {
		return nil
	}

	known := make(map[string]bool)
	for _, name := range fields.names() {
		if name != "" {
			known[strings.ToLower(name)] = true
		}
	}

	var attrs []Attribute
	for i, header := range rec.Columns.names {
		if known[strings.ToLower(header)] || i >= len(rec.Cells) {
			continue
		}
		value := strings.TrimSpace(rec.Cells[i])
		name := attributeName(header)
		if value == "" || name == "" {
			continue
		}
		attrs = append(attrs, Attribute{Name: name, Value: value, Unit: e.layout.Units[name]})
	}
	return attrs
}
