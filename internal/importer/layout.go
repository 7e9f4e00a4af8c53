package importer

import (
	"regexp"
	"strings"
)

// Fields names the column that holds each logical flight field.
// An empty name means the layout has no such column.
type Fields struct {
	Date         string
	FlightNumber string
	Deadhead     string
	Origin       string
	Departure    string
	Destination  string
	Arrival      string
	Block        string
	Tail         string
	AircraftType string
	Takeoff      string
	Landing      string
	Crew         string
	Remarks      string
}

func (f Fields) names() []string {
	return []string{
		f.Date, f.FlightNumber, f.Deadhead, f.Origin, f.Departure, f.Destination, f.Arrival,
		f.Block, f.Tail, f.AircraftType, f.Takeoff, f.Landing, f.Crew, f.Remarks,
	}
}

// Layout describes a tabular export format
type Layout struct {
	Name string

	// Preamble is the number of lines skipped before data rows. For fixed
	// layouts it includes the export's own column header line.
	Preamble int

	// Columns is the positional column list of a fixed layout. When nil
	// the first line after the preamble names the columns.
	Columns []string

	Fields Fields

	// Header aliases used to resolve Fields when Columns is nil
	Aliases map[string][]string

	CarrierPrefix  string
	DeadheadTokens []string

	// Units for columns stored as flight attributes
	Units map[string]string
}

// Columns maps column names (case-insensitive) to cell positions
type Columns struct {
	names []string
	index map[string]int
}

// NewColumns indexes a header row
func NewColumns(names []string) Columns {
	c := Columns{names: make([]string, len(names)), index: make(map[string]int, len(names))}
	for i, name := range names {
		name = strings.TrimSpace(name)
		c.names[i] = name
		key := strings.ToLower(name)
		if _, exists := c.index[key]; !exists {
			c.index[key] = i
		}
	}
	return c
}

// Len returns the number of columns
func (c Columns) Len() int {
	return len(c.names)
}

// Has reports whether the named column exists
func (c Columns) Has(name string) bool {
	_, ok := c.index[strings.ToLower(name)]
	return ok
}

// Cell returns the trimmed value of the named column, "" when missing
func (c Columns) Cell(cells []string, name string) string {
	if name == "" {
		return ""
	}
	i, ok := c.index[strings.ToLower(name)]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// SWALayout is the airline's pilot flight record export: seven summary and
// header lines followed by thirteen positional columns.
var SWALayout = Layout{
	Name:     "swa-tabular",
	Preamble: 7,
	Columns: []string{
		"DATE", "Flight", "dhd", "From", "Depart", "To", "Arrive",
		"Block", "Tail_Number", "A_C_Type", "TakeOff", "Landing", "CoPilot",
	},
	Fields: Fields{
		Date:         "DATE",
		FlightNumber: "Flight",
		Deadhead:     "dhd",
		Origin:       "From",
		Departure:    "Depart",
		Destination:  "To",
		Arrival:      "Arrive",
		Block:        "Block",
		Tail:         "Tail_Number",
		AircraftType: "A_C_Type",
		Takeoff:      "TakeOff",
		Landing:      "Landing",
		Crew:         "CoPilot",
	},
	CarrierPrefix:  "WN",
	DeadheadTokens: []string{"DH"},
}

// LogbookLayout is a general CSV logbook whose first line names the columns.
// Columns that are not flight fields are kept as flight attributes.
var LogbookLayout = Layout{
	Name: "csv-logbook",
	Aliases: map[string][]string{
		"date":         {"date", "flight_date", "day"},
		"flight":       {"flight", "flight_number", "flight_no", "flt"},
		"deadhead":     {"deadhead", "dh", "dhd", "is_deadhead"},
		"origin":       {"origin", "from", "dep", "departure_airport"},
		"departure":    {"depart", "departure", "out", "departure_time", "off"},
		"destination":  {"destination", "to", "arr", "arrival_airport"},
		"arrival":      {"arrive", "arrival", "in", "arrival_time", "on"},
		"block":        {"block", "block_minutes", "total", "total_time"},
		"tail":         {"tail", "tail_number", "registration", "ident"},
		"aircraft":     {"type", "aircraft_type", "a_c_type", "aircraft"},
		"takeoff":      {"takeoff", "pic_takeoff", "to_pic"},
		"landing":      {"landing", "pic_landing", "ldg_pic"},
		"crew":         {"crew", "copilot", "pic_name", "sic_name"},
		"remarks":      {"remarks", "notes", "comments"},
	},
	DeadheadTokens: []string{"DH", "Y", "YES", "TRUE", "1", "X"},
	Units: map[string]string{
		"tafb":       "minutes",
		"night":      "minutes",
		"instrument": "minutes",
		"simulated":  "minutes",
		"distance":   "nm",
		"approaches": "count",
		"landings":   "count",
	},
}

// resolveFields binds the layout's aliases to the columns present in a header
func (l Layout) resolveFields(cols Columns) Fields {
	if l.Columns != nil {
		return l.Fields
	}
	pick := func(key string) string {
		for _, alias := range l.Aliases[key] {
			if cols.Has(alias) {
				return alias
			}
		}
		return ""
	}
	return Fields{
		Date:         pick("date"),
		FlightNumber: pick("flight"),
		Deadhead:     pick("deadhead"),
		Origin:       pick("origin"),
		Departure:    pick("departure"),
		Destination:  pick("destination"),
		Arrival:      pick("arrival"),
		Block:        pick("block"),
		Tail:         pick("tail"),
		AircraftType: pick("aircraft"),
		Takeoff:      pick("takeoff"),
		Landing:      pick("landing"),
		Crew:         pick("crew"),
		Remarks:      pick("remarks"),
	}
}

var attributeNameRegex = regexp.MustCompile(`[^a-z0-9]+`)

// attributeName turns a header like "TAFB (hrs)" into "tafb_hrs"
func attributeName(header string) string {
	name := attributeNameRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(header)), "_")
	return strings.Trim(name, "_")
}
