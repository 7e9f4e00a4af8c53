package logbook

import (
	"fmt"

	"github.com/balkashynov/pilotlog/internal/db"
	"github.com/balkashynov/pilotlog/internal/parser"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Query is a flight query as received from a caller. Dates are
// YYYY-MM-DD and inclusive.
type Query struct {
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
	Origin       string `json:"origin,omitempty"`
	Destination  string `json:"destination,omitempty"`
	Airport      string `json:"airport,omitempty"`
	Crew         string `json:"crew,omitempty"`
	Tail         string `json:"tail,omitempty"`
	AircraftType string `json:"aircraft_type,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// validate turns q into a store filter. Problems come back as warnings;
// ok is false when the query cannot match anything and should not run.
func (q Query) validate(paged bool) (filter db.FlightFilter, warnings []string, ok bool) {
	ok = true
	filter = db.FlightFilter{
		Origin:       parser.NormalizeCode(q.Origin),
		Destination:  parser.NormalizeCode(q.Destination),
		Airport:      parser.NormalizeCode(q.Airport),
		Crew:         q.Crew,
		Tail:         q.Tail,
		AircraftType: q.AircraftType,
	}

	if q.DateFrom != "" {
		d, err := parser.ParseDate(q.DateFrom)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid date_from %q", q.DateFrom))
			ok = false
		}
		filter.DateFrom = d
	}
	if q.DateTo != "" {
		d, err := parser.ParseDate(q.DateTo)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid date_to %q", q.DateTo))
			ok = false
		}
		filter.DateTo = d
	}
	if ok && filter.DateFrom != "" && filter.DateTo != "" && filter.DateFrom > filter.DateTo {
		warnings = append(warnings, fmt.Sprintf("date_from %s is after date_to %s", filter.DateFrom, filter.DateTo))
		ok = false
	}

	if !paged {
		return filter, warnings, ok
	}

	switch {
	case q.Limit == 0:
		filter.Limit = DefaultLimit
	case q.Limit < 1:
		warnings = append(warnings, fmt.Sprintf("limit %d raised to 1", q.Limit))
		filter.Limit = 1
	case q.Limit > MaxLimit:
		warnings = append(warnings, fmt.Sprintf("limit %d lowered to %d", q.Limit, MaxLimit))
		filter.Limit = MaxLimit
	default:
		filter.Limit = q.Limit
	}
	if q.Offset < 0 {
		warnings = append(warnings, fmt.Sprintf("offset %d raised to 0", q.Offset))
	} else {
		filter.Offset = q.Offset
	}
	return filter, warnings, ok
}
