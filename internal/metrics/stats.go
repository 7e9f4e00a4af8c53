package metrics

import (
	"sort"

	"github.com/balkashynov/pilotlog/internal/models"
)

// UnknownType buckets flights without a normalized aircraft type
const UnknownType = "Unknown"

// DateRange spans the first and last flight of a set
type DateRange struct {
	FirstFlight string `json:"first_flight"`
	LastFlight  string `json:"last_flight"`
}

// TypeStat is the flying on one aircraft type
type TypeStat struct {
	Type      string `json:"type"`
	Flights   int    `json:"flights"`
	Minutes   int    `json:"minutes"`
	Formatted string `json:"formatted"`
}

// YearStat is the flying in one calendar year
type YearStat struct {
	Year      int    `json:"year"`
	Flights   int    `json:"flights"`
	Minutes   int    `json:"minutes"`
	Formatted string `json:"formatted"`
}

// Stats summarises a set of flights
type Stats struct {
	TotalFlights        int    `json:"total_flights"`
	TotalBlockMinutes   int    `json:"total_block_minutes"`
	TotalBlockFormatted string `json:"total_block_formatted"`

	UniqueAirports int `json:"unique_airports"`
	// UniqueAircraft counts distinct tail numbers, not types
	UniqueAircraft int `json:"unique_aircraft"`

	DeadheadFlights int `json:"deadhead_flights"`
	DeadheadMinutes int `json:"deadhead_minutes"`
	PICTakeoffs     int `json:"pic_takeoffs"`
	PICLandings     int `json:"pic_landings"`

	DateRange      *DateRange `json:"date_range"`
	ByAircraftType []TypeStat `json:"by_aircraft_type"`
	ByYear         []YearStat `json:"by_year"`
}

// ComputeStats reduces flights into summary statistics. Types are grouped by
// normalized tag; flights the normalizer did not recognise share the Unknown
// bucket whatever their raw string. Types are ordered by flight count then
// name, years ascending.
func ComputeStats(flights []models.Flight) Stats {
	s := Stats{ByAircraftType: []TypeStat{}, ByYear: []YearStat{}}

	airports := make(map[string]bool)
	tails := make(map[string]bool)
	types := make(map[string]*TypeStat)
	years := make(map[int]*YearStat)

	for _, f := range flights {
		s.TotalFlights++
		s.TotalBlockMinutes += f.BlockMinutes
		airports[f.Origin] = true
		airports[f.Destination] = true
		if tail := models.Str(f.TailNumber); tail != "" {
			tails[tail] = true
		}
		if f.IsDeadhead {
			s.DeadheadFlights++
			s.DeadheadMinutes += f.BlockMinutes
		}
		if f.PICTakeoff {
			s.PICTakeoffs++
		}
		if f.PICLanding {
			s.PICLandings++
		}

		if s.DateRange == nil {
			s.DateRange = &DateRange{FirstFlight: f.FlightDate, LastFlight: f.FlightDate}
		}
		if f.FlightDate < s.DateRange.FirstFlight {
			s.DateRange.FirstFlight = f.FlightDate
		}
		if f.FlightDate > s.DateRange.LastFlight {
			s.DateRange.LastFlight = f.FlightDate
		}

		name := typeName(f)
		t, ok := types[name]
		if !ok {
			t = &TypeStat{Type: name}
			types[name] = t
		}
		t.Flights++
		t.Minutes += f.BlockMinutes

		year := f.Year()
		y, ok := years[year]
		if !ok {
			y = &YearStat{Year: year}
			years[year] = y
		}
		y.Flights++
		y.Minutes += f.BlockMinutes
	}

	s.TotalBlockFormatted = FormatMinutes(s.TotalBlockMinutes)
	s.UniqueAirports = len(airports)
	s.UniqueAircraft = len(tails)

	for _, t := range types {
		t.Formatted = FormatMinutes(t.Minutes)
		s.ByAircraftType = append(s.ByAircraftType, *t)
	}
	sort.Slice(s.ByAircraftType, func(i, j int) bool {
		a, b := s.ByAircraftType[i], s.ByAircraftType[j]
		if a.Flights != b.Flights {
			return a.Flights > b.Flights
		}
		return a.Type < b.Type
	})

	for _, y := range years {
		y.Formatted = FormatMinutes(y.Minutes)
		s.ByYear = append(s.ByYear, *y)
	}
	sort.Slice(s.ByYear, func(i, j int) bool { return s.ByYear[i].Year < s.ByYear[j].Year })

	return s
}

func typeName(f models.Flight) string {
	if t := models.Str(f.AircraftType); t != "" {
		return t
	}
	return UnknownType
}
