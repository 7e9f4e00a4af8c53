package testutil

import (
	"github.com/balkashynov/pilotlog/internal/models"
)

// FlightOption customises a flight built by NewFlight
type FlightOption func(*models.Flight)

// NewFlight builds an SWA flight with the given route and block time
func NewFlight(date, origin, destination string, block int, opts ...FlightOption) models.Flight {
	f := models.Flight{
		Source:       models.SourceSWA,
		FlightDate:   date,
		Origin:       origin,
		Destination:  destination,
		BlockMinutes: block,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// WithTail sets the tail number
func WithTail(tail string) FlightOption {
	return func(f *models.Flight) { f.TailNumber = models.OptString(tail) }
}

// WithFlightNumber sets the flight number
func WithFlightNumber(n string) FlightOption {
	return func(f *models.Flight) { f.FlightNumber = models.OptString(n) }
}

// WithType sets the raw and normalized aircraft type; an empty normalized
// value leaves the flight unnormalized
func WithType(raw, normalized string) FlightOption {
	return func(f *models.Flight) {
		f.AircraftTypeRaw = models.OptString(raw)
		f.AircraftType = models.OptString(normalized)
	}
}

// WithCrew sets the crew position and name
func WithCrew(position, name string) FlightOption {
	return func(f *models.Flight) {
		f.CrewPosition = models.OptString(position)
		f.CrewName = models.OptString(name)
	}
}

// Deadhead marks the flight as a deadhead leg
func Deadhead() FlightOption {
	return func(f *models.Flight) { f.IsDeadhead = true }
}

// InBatch assigns the flight to an import batch
func InBatch(id string) FlightOption {
	return func(f *models.Flight) { f.ImportBatchID = models.OptString(id) }
}
