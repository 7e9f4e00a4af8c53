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

// LookupAirport returns the airport with the given ICAO code, or nil if
// it is not in the reference table
func (s *Store) LookupAirport(ctx context.Context, icao string) (*models.Airport, error) {
	var a models.Airport
	err := s.db.WithContext(ctx).Where("icao = ?", strings.ToUpper(strings.TrimSpace(icao))).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up airport %s: %w", icao, err)
	}
	return &a, nil
}

// ListAirports returns the whole reference table ordered by ICAO code
func (s *Store) ListAirports(ctx context.Context) ([]models.Airport, error) {
	var airports []models.Airport
	if err := s.db.WithContext(ctx).Order("icao").Find(&airports).Error; err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}
	return airports, nil
}

// AirportsByCode returns the known airports among codes keyed by ICAO code
func (s *Store) AirportsByCode(ctx context.Context, codes []string) (map[string]models.Airport, error) {
	out := make(map[string]models.Airport, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	var airports []models.Airport
	if err := s.db.WithContext(ctx).Where("icao IN ?", codes).Find(&airports).Error; err != nil {
		return nil, fmt.Errorf("failed to load airports: %w", err)
	}
	for _, a := range airports {
		out[a.ICAO] = a
	}
	return out, nil
}

// UpsertAirports inserts or replaces reference airports and returns how many were written
func (s *Store) UpsertAirports(ctx context.Context, airports []models.Airport) (int, error) {
	if len(airports) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(airports, 200).Error
	if err != nil {
		return 0, fmt.Errorf("failed to store airports: %w", err)
	}
	return len(airports), nil
}

// AirportCodesInUse returns every ICAO code that appears in a flight
func (s *Store) AirportCodesInUse(ctx context.Context) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).Raw(
		"SELECT origin FROM flights UNION SELECT destination FROM flights ORDER BY 1",
	).Scan(&codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list airport codes: %w", err)
	}
	return codes, nil
}
