package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/pilotlog/internal/models"
)

// DuplicateKey identifies a flight for idempotent re-import.
// Absent flight numbers and tails compare as empty strings.
type DuplicateKey struct {
	FlightDate   string
	FlightNumber string
	Origin       string
	Destination  string
	TailNumber   string
}

// KeyOf returns the duplicate key of a flight
func KeyOf(f *models.Flight) DuplicateKey {
	return DuplicateKey{
		FlightDate:   f.FlightDate,
		FlightNumber: models.Str(f.FlightNumber),
		Origin:       f.Origin,
		Destination:  f.Destination,
		TailNumber:   models.Str(f.TailNumber),
	}
}

// FlightFilter narrows a flight query. Zero values mean "no filter";
// Limit 0 returns every match.
type FlightFilter struct {
	DateFrom     string // inclusive, YYYY-MM-DD
	DateTo       string // inclusive, YYYY-MM-DD
	Origin       string
	Destination  string
	Airport      string // origin or destination
	Crew         string // partial, case-insensitive
	Tail         string // partial, case-insensitive
	AircraftType string // normalized or raw
	Limit        int
	Offset       int

	WithAttributes bool
}

// InsertFlight stores a new flight and returns its id
func (s *Store) InsertFlight(ctx context.Context, f *models.Flight) (uint, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error; err != nil {
		return 0, fmt.Errorf("failed to insert flight: %w", err)
	}
	return f.ID, nil
}

// InsertAttribute attaches a name/value/unit triple to a flight
func (s *Store) InsertAttribute(ctx context.Context, flightID uint, name, value string, unit *string) error {
	attr := models.FlightAttribute{FlightID: flightID, Name: name, Value: value, Unit: unit}
	if err := s.db.WithContext(ctx).Create(&attr).Error; err != nil {
		return fmt.Errorf("failed to insert attribute %s: %w", name, err)
	}
	return nil
}

// FindDuplicate returns the id of a stored flight with the same key, if any
func (s *Store) FindDuplicate(ctx context.Context, key DuplicateKey) (uint, bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Flight{}).
		Where("flight_date = ? AND origin = ? AND destination = ?", key.FlightDate, key.Origin, key.Destination).
		Where("COALESCE(flight_number, '') = ?", key.FlightNumber).
		Where("COALESCE(tail_number, '') = ?", key.TailNumber).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to check for duplicate flight: %w", err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// QueryFlights returns the flights matching filter, newest first, along
// with the total number of matches before pagination
func (s *Store) QueryFlights(ctx context.Context, filter FlightFilter) ([]models.Flight, int64, error) {
	var total int64
	countQ := applyFlightFilter(s.db.WithContext(ctx).Model(&models.Flight{}), filter)
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count flights: %w", err)
	}

	q := applyFlightFilter(s.db.WithContext(ctx).Model(&models.Flight{}), filter)
	q = q.Order("flight_date DESC").Order("departure_time DESC").Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.WithAttributes {
		q = q.Preload("Attributes")
	}

	var flights []models.Flight
	if err := q.Find(&flights).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query flights: %w", err)
	}
	return flights, total, nil
}

// GetFlight returns a single flight with its attributes
func (s *Store) GetFlight(ctx context.Context, id uint) (*models.Flight, error) {
	var f models.Flight
	err := s.db.WithContext(ctx).Preload("Attributes").First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("flight #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load flight #%d: %w", id, err)
	}
	return &f, nil
}

func applyFlightFilter(q *gorm.DB, f FlightFilter) *gorm.DB {
	if f.DateFrom != "" {
		q = q.Where("flight_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("flight_date <= ?", f.DateTo)
	}
	if f.Origin != "" {
		q = q.Where("origin = ?", strings.ToUpper(strings.TrimSpace(f.Origin)))
	}
	if f.Destination != "" {
		q = q.Where("destination = ?", strings.ToUpper(strings.TrimSpace(f.Destination)))
	}
	if f.Airport != "" {
		code := strings.ToUpper(strings.TrimSpace(f.Airport))
		q = q.Where("origin = ? OR destination = ?", code, code)
	}
	if f.Crew != "" {
		q = q.Where("LOWER(crew_name) LIKE ?", likePattern(f.Crew))
	}
	if f.Tail != "" {
		q = q.Where("LOWER(tail_number) LIKE ?", likePattern(f.Tail))
	}
	if f.AircraftType != "" {
		t := strings.TrimSpace(f.AircraftType)
		q = q.Where("aircraft_type = ? OR aircraft_type_raw = ?", t, t)
	}
	return q
}

// likePattern builds a %contains% pattern, treating the input literally
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`%`, ``, `_`, ``).Replace(s)
	return "%" + s + "%"
}
