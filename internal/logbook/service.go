// Package logbook answers queries over the flight store and runs imports
// inside a transaction.
package logbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/balkashynov/pilotlog/internal/db"
	"github.com/balkashynov/pilotlog/internal/events"
	"github.com/balkashynov/pilotlog/internal/importer"
	"github.com/balkashynov/pilotlog/internal/logging"
	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/parser"
)

// Store is the persistence the service reads and writes through
type Store interface {
	QueryFlights(ctx context.Context, filter db.FlightFilter) ([]models.Flight, int64, error)
	GetFlight(ctx context.Context, id uint) (*models.Flight, error)
	ListBatches(ctx context.Context) ([]models.ImportBatch, error)
	GetBatch(ctx context.Context, id string) (*models.ImportBatch, error)
	DeleteBatch(ctx context.Context, id string) (int64, error)
	ListAirports(ctx context.Context) ([]models.Airport, error)
	LookupAirport(ctx context.Context, icao string) (*models.Airport, error)
	AirportsByCode(ctx context.Context, codes []string) (map[string]models.Airport, error)
	UpsertAirports(ctx context.Context, airports []models.Airport) (int, error)
	AirportCodesInUse(ctx context.Context) ([]string, error)
	Backup(ctx context.Context, dest string) error
	Path() string
	WithTx(ctx context.Context, fn func(tx *db.Store) error) error
}

// Publisher receives change notifications
type Publisher interface {
	Publish(e events.Event)
}

// ErrBatchNotFound is returned when a batch id is unknown
var ErrBatchNotFound = errors.New("batch not found")

// Options configure a Service
type Options struct {
	Windows            []int
	BackupBeforeImport bool
	Publisher          Publisher
	Logger             *slog.Logger
	Now                func() time.Time
}

// Service is the query and import facade used by the CLI, TUI and HTTP API
type Service struct {
	store     Store
	importer  *importer.Importer
	windows   []int
	backup    bool
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a service
func New(store Store, im *importer.Importer, opts Options) *Service {
	s := &Service{
		store:     store,
		importer:  im,
		windows:   opts.Windows,
		backup:    opts.BackupBeforeImport,
		publisher: opts.Publisher,
		logger:    logging.OrDiscard(opts.Logger),
		now:       opts.Now,
	}
	if len(s.windows) == 0 {
		s.windows = metrics.DefaultWindows
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ImportFile imports one file in a single transaction, backing the
// database up first when configured.
func (s *Service) ImportFile(ctx context.Context, filename string, data []byte, source models.Source) (*importer.Report, error) {
	if !s.importer.Supports(source) {
		return nil, &importer.FormatError{Source: source, Message: "unsupported source", Err: importer.ErrUnknownSource}
	}

	if s.backup {
		if err := s.backupBeforeImport(ctx); err != nil {
			return nil, err
		}
	}

	var report *importer.Report
	err := s.store.WithTx(ctx, func(tx *db.Store) error {
		var err error
		report, err = s.importer.Import(ctx, tx, filename, data, source)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.Event{
			Type:     events.BatchImported,
			BatchID:  report.BatchID,
			Filename: report.Filename,
			Imported: report.RowsImported,
			At:       s.now(),
		})
	}
	return report, nil
}

// ImportPath reads path and imports it
func (s *Service) ImportPath(ctx context.Context, path string, source models.Source) (*importer.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.ImportFile(ctx, filepath.Base(path), data, source)
}

func (s *Service) backupBeforeImport(ctx context.Context) error {
	path := s.store.Path()
	if path == "" || path == ":memory:" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	dest := db.BackupPath(path, s.now())
	if err := s.store.Backup(ctx, dest); err != nil {
		return fmt.Errorf("backup before import failed: %w", err)
	}
	return nil
}

// FlightsResult is one page of flights
type FlightsResult struct {
	Flights  []models.Flight `json:"flights"`
	Total    int64           `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Flights returns one page of flights matching q, newest first
func (s *Service) Flights(ctx context.Context, q Query, withAttributes bool) (*FlightsResult, error) {
	filter, warnings, ok := q.validate(true)
	result := &FlightsResult{Flights: []models.Flight{}, Limit: filter.Limit, Offset: filter.Offset, Warnings: warnings}
	if !ok {
		s.logWarnings("flights", warnings)
		return result, nil
	}

	filter.WithAttributes = withAttributes
	flights, total, err := s.store.QueryFlights(ctx, filter)
	if err != nil {
		return nil, err
	}
	result.Flights = flights
	result.Total = total
	return result, nil
}

// Flight returns one flight with its attributes
func (s *Service) Flight(ctx context.Context, id uint) (*models.Flight, error) {
	return s.store.GetFlight(ctx, id)
}

// all returns every flight matching q, ignoring paging
func (s *Service) all(ctx context.Context, op string, q Query) ([]models.Flight, []string, error) {
	filter, warnings, ok := q.validate(false)
	if !ok {
		s.logWarnings(op, warnings)
		return nil, warnings, nil
	}
	flights, _, err := s.store.QueryFlights(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return flights, warnings, nil
}

// StatsResult wraps statistics with query warnings
type StatsResult struct {
	metrics.Stats
	Warnings []string `json:"warnings,omitempty"`
}

// Stats summarises every flight matching q
func (s *Service) Stats(ctx context.Context, q Query) (*StatsResult, error) {
	flights, warnings, err := s.all(ctx, "stats", q)
	if err != nil {
		return nil, err
	}
	return &StatsResult{Stats: metrics.ComputeStats(flights), Warnings: warnings}, nil
}

// RollingResult holds rolling window totals
type RollingResult struct {
	AsOf     string                `json:"as_of"`
	Windows  []metrics.WindowTotal `json:"windows"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Rolling totals flying over each window ending on asOf. An empty asOf
// means today; nil windows means the configured defaults.
func (s *Service) Rolling(ctx context.Context, asOf string, windows []int) (*RollingResult, error) {
	if len(windows) == 0 {
		windows = s.windows
	}
	asOf, warnings := s.resolveAsOf(asOf)
	result := &RollingResult{AsOf: asOf, Windows: []metrics.WindowTotal{}, Warnings: warnings}
	if asOf == "" {
		s.logWarnings("rolling", warnings)
		return result, nil
	}

	var valid []int
	for _, w := range windows {
		if w <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("ignored window of %d days", w))
			continue
		}
		valid = append(valid, w)
	}
	if len(valid) == 0 {
		return result, nil
	}

	from, err := parser.DaysBefore(asOf, metrics.MaxWindow(valid)-1)
	if err != nil {
		return nil, err
	}
	flights, _, err := s.store.QueryFlights(ctx, db.FlightFilter{DateFrom: from, DateTo: asOf})
	if err != nil {
		return nil, err
	}

	totals, err := metrics.RollingTotals(asOf, valid, flights)
	if err != nil {
		return nil, err
	}
	result.Windows = totals.Sorted()
	return result, nil
}

// BurnRateResult is a burn rate projection, absent when the parameters
// were rejected
type BurnRateResult struct {
	AsOf     string            `json:"as_of,omitempty"`
	BurnRate *metrics.BurnRate `json:"burn_rate"`
	Warnings []string          `json:"warnings,omitempty"`
}

// BurnRate projects when limitMinutes will be reached in a window of
// windowDays at the pace flown over that window. A bad as-of date or a
// non-positive window gives an empty result with a warning.
func (s *Service) BurnRate(ctx context.Context, asOf string, windowDays, limitMinutes int) (*BurnRateResult, error) {
	resolved, warnings := s.resolveAsOf(asOf)
	result := &BurnRateResult{AsOf: resolved, Warnings: warnings}
	if windowDays <= 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("window must be positive, got %d", windowDays))
	}
	if len(result.Warnings) > 0 {
		s.logWarnings("burn rate", result.Warnings)
		return result, nil
	}

	rolling, err := s.Rolling(ctx, resolved, []int{windowDays})
	if err != nil {
		return nil, err
	}
	br, err := metrics.ComputeBurnRate(resolved, windowDays, rolling.Windows[0].Minutes, limitMinutes)
	if err != nil {
		return nil, err
	}
	result.BurnRate = &br
	return result, nil
}

func (s *Service) resolveAsOf(asOf string) (string, []string) {
	resolved, err := parser.ParseAsOf(asOf, s.now())
	if err != nil {
		return "", []string{fmt.Sprintf("invalid as_of %q", asOf)}
	}
	return resolved, nil
}

// RouteAirport is an airport in a route listing, located when reference
// data is available
type RouteAirport struct {
	ICAO       string   `json:"icao"`
	Name       string   `json:"name,omitempty"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Departures int      `json:"departures"`
	Arrivals   int      `json:"arrivals"`
}

// RoutesResult lists routes and airports flown
type RoutesResult struct {
	Routes   []metrics.RouteStat `json:"routes"`
	Airports []RouteAirport      `json:"airports"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Routes aggregates flights matching q by city pair and airport
func (s *Service) Routes(ctx context.Context, q Query) (*RoutesResult, error) {
	flights, warnings, err := s.all(ctx, "routes", q)
	if err != nil {
		return nil, err
	}

	routes, airports := metrics.AggregateRoutes(flights)
	reference, err := s.reference(ctx, airports)
	if err != nil {
		return nil, err
	}

	result := &RoutesResult{Routes: routes, Airports: make([]RouteAirport, 0, len(airports)), Warnings: warnings}
	for _, a := range airports {
		ra := RouteAirport{ICAO: a.ICAO, Departures: a.Departures, Arrivals: a.Arrivals}
		if ref, ok := reference[a.ICAO]; ok {
			ra.Name = models.Str(ref.Name)
			ra.Latitude = ref.Latitude
			ra.Longitude = ref.Longitude
		}
		result.Airports = append(result.Airports, ra)
	}
	return result, nil
}

// MapResult is the located route network
type MapResult struct {
	metrics.MapView
	Warnings []string `json:"warnings,omitempty"`
}

// Map returns routes and airports that have coordinates
func (s *Service) Map(ctx context.Context, q Query) (*MapResult, error) {
	flights, warnings, err := s.all(ctx, "map", q)
	if err != nil {
		return nil, err
	}

	routes, airports := metrics.AggregateRoutes(flights)
	reference, err := s.reference(ctx, airports)
	if err != nil {
		return nil, err
	}
	return &MapResult{MapView: metrics.BuildMap(routes, airports, reference), Warnings: warnings}, nil
}

func (s *Service) reference(ctx context.Context, airports []metrics.AirportStat) (map[string]models.Airport, error) {
	codes := make([]string, 0, len(airports))
	for _, a := range airports {
		codes = append(codes, a.ICAO)
	}
	return s.store.AirportsByCode(ctx, codes)
}

// Batches lists import batches, newest first
func (s *Service) Batches(ctx context.Context) ([]models.ImportBatch, error) {
	return s.store.ListBatches(ctx)
}

// Batch returns one import batch
func (s *Service) Batch(ctx context.Context, id string) (*models.ImportBatch, error) {
	b, err := s.store.GetBatch(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	return b, err
}

// DeleteBatch removes a batch with its flights and returns how many
// flights went with it
func (s *Service) DeleteBatch(ctx context.Context, id string) (int64, error) {
	deleted, err := s.store.DeleteBatch(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("batch deleted", "batch_id", id, "flights", deleted)
	if s.publisher != nil {
		s.publisher.Publish(events.Event{Type: events.BatchDeleted, BatchID: id, Deleted: deleted, At: s.now()})
	}
	return deleted, nil
}

// Airports lists the airport reference table
func (s *Service) Airports(ctx context.Context) ([]models.Airport, error) {
	return s.store.ListAirports(ctx)
}

// Airport looks one airport up; nil when unknown
func (s *Service) Airport(ctx context.Context, icao string) (*models.Airport, error) {
	return s.store.LookupAirport(ctx, parser.NormalizeCode(icao))
}

// LoadAirports upserts reference airports
func (s *Service) LoadAirports(ctx context.Context, airports []models.Airport) (int, error) {
	n, err := s.store.UpsertAirports(ctx, airports)
	if err != nil {
		return 0, err
	}
	s.logger.Info("airports loaded", "count", n)
	return n, nil
}

// AirportCodesInUse lists every code that appears on a flight
func (s *Service) AirportCodesInUse(ctx context.Context) ([]string, error) {
	return s.store.AirportCodesInUse(ctx)
}

func (s *Service) logWarnings(op string, warnings []string) {
	for _, w := range warnings {
		s.logger.Debug("query returned no rows", "op", op, "warning", w)
	}
}
