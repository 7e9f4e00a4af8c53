package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "logbook.db"), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertBatch(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.InsertBatch(context.Background(), &models.ImportBatch{
		ID:         id,
		Source:     models.SourceSWA,
		Filename:   id + ".csv",
		ImportedAt: time.Now().UTC(),
	}))
}

func insertFlight(t *testing.T, s *Store, f models.Flight) uint {
	t.Helper()
	id, err := s.InsertFlight(context.Background(), &f)
	require.NoError(t, err)
	return id
}

func TestOpenRecordsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logbook.db")
	s, err := Open(path, nil)
	require.NoError(t, err)

	v, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
	require.NoError(t, s.Close())

	// Re-opening an existing database keeps a single marker
	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	var count int64
	require.NoError(t, s.db.Model(&models.SchemaVersion{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFindDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertBatch(t, s, "b1")

	id := insertFlight(t, s, testutil.NewFlight("2025-01-10", "KHOU", "KDEN", 150,
		testutil.WithFlightNumber("1234"), testutil.WithTail("N8710M"), testutil.InBatch("b1")))
	insertFlight(t, s, testutil.NewFlight("2025-01-11", "KDEN", "KHOU", 140, testutil.InBatch("b1")))

	tests := []struct {
		name   string
		key    DuplicateKey
		wantID bool
	}{
		{"exact match", DuplicateKey{"2025-01-10", "1234", "KHOU", "KDEN", "N8710M"}, true},
		{"different tail", DuplicateKey{"2025-01-10", "1234", "KHOU", "KDEN", "N201LV"}, false},
		{"reversed route", DuplicateKey{"2025-01-10", "1234", "KDEN", "KHOU", "N8710M"}, false},
		{"absent number and tail match empty", DuplicateKey{"2025-01-11", "", "KDEN", "KHOU", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := s.FindDuplicate(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, found)
			if tt.name == "exact match" {
				assert.Equal(t, id, got)
			}
		})
	}
}

func TestQueryFlights(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertBatch(t, s, "b1")

	insertFlight(t, s, testutil.NewFlight("2025-01-01", "KHOU", "KDAL", 60,
		testutil.WithTail("N201LV"), testutil.WithCrew("CA", "EVERS ROB"), testutil.WithType("737-7H4", "B737-700"), testutil.InBatch("b1")))
	insertFlight(t, s, testutil.NewFlight("2025-01-02", "KDAL", "KHOU", 65,
		testutil.WithTail("N8710M"), testutil.WithCrew("CA", "SMITH JANE"), testutil.WithType("737-8MX", "B737-MAX8"), testutil.InBatch("b1")))
	insertFlight(t, s, testutil.NewFlight("2025-01-03", "KHOU", "KDEN", 150,
		testutil.WithTail("N201LV"), testutil.WithCrew("FO", "ZURCA JULIAN"), testutil.InBatch("b1")))

	tests := []struct {
		name      string
		filter    FlightFilter
		wantDates []string
		wantTotal int64
	}{
		{"all newest first", FlightFilter{}, []string{"2025-01-03", "2025-01-02", "2025-01-01"}, 3},
		{"date range inclusive", FlightFilter{DateFrom: "2025-01-02", DateTo: "2025-01-03"}, []string{"2025-01-03", "2025-01-02"}, 2},
		{"origin uppercased", FlightFilter{Origin: "khou"}, []string{"2025-01-03", "2025-01-01"}, 2},
		{"destination", FlightFilter{Destination: "KHOU"}, []string{"2025-01-02"}, 1},
		{"either airport", FlightFilter{Airport: "KDAL"}, []string{"2025-01-02", "2025-01-01"}, 2},
		{"crew partial match", FlightFilter{Crew: "evers"}, []string{"2025-01-01"}, 1},
		{"tail partial match", FlightFilter{Tail: "201"}, []string{"2025-01-03", "2025-01-01"}, 2},
		{"aircraft type normalized", FlightFilter{AircraftType: "B737-MAX8"}, []string{"2025-01-02"}, 1},
		{"aircraft type raw", FlightFilter{AircraftType: "737-7H4"}, []string{"2025-01-01"}, 1},
		{"paginated", FlightFilter{Limit: 1, Offset: 1}, []string{"2025-01-02"}, 3},
		{"no match", FlightFilter{DateFrom: "2030-01-01"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flights, total, err := s.QueryFlights(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			var dates []string
			for _, f := range flights {
				dates = append(dates, f.FlightDate)
			}
			assert.Equal(t, tt.wantDates, dates)
		})
	}
}

func TestAttributesAndDeleteBatchCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertBatch(t, s, "b1")
	insertBatch(t, s, "b2")

	keep := insertFlight(t, s, testutil.NewFlight("2025-01-01", "KHOU", "KDAL", 60, testutil.InBatch("b1")))
	drop := insertFlight(t, s, testutil.NewFlight("2025-01-02", "KDAL", "KHOU", 65, testutil.InBatch("b2")))

	unit := "minutes"
	require.NoError(t, s.InsertAttribute(ctx, drop, "tafb", "1234", &unit))
	require.NoError(t, s.InsertAttribute(ctx, keep, "tafb", "99", &unit))

	f, err := s.GetFlight(ctx, drop)
	require.NoError(t, err)
	require.Len(t, f.Attributes, 1)
	assert.Equal(t, "tafb", f.Attributes[0].Name)

	removed, err := s.DeleteBatch(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = s.GetFlight(ctx, drop)
	assert.ErrorIs(t, err, ErrNotFound)

	var attrs int64
	require.NoError(t, s.db.Model(&models.FlightAttribute{}).Count(&attrs).Error)
	assert.Equal(t, int64(1), attrs)

	_, err = s.GetBatch(ctx, "b2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.DeleteBatch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinalizeBatchAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := &models.ImportBatch{ID: "old", Source: models.SourceSWA, ImportedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &models.ImportBatch{ID: "new", Source: models.SourceSWA, ImportedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.InsertBatch(ctx, older))
	require.NoError(t, s.InsertBatch(ctx, newer))

	newer.RowsProcessed = 3
	newer.RowsImported = 1
	newer.RowsSkipped = 1
	newer.RowsDuplicate = 1
	newer.Errors = []models.RowIssue{{Row: 9, Message: "invalid date"}}
	require.NoError(t, s.FinalizeBatch(ctx, newer))

	batches, err := s.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "new", batches[0].ID)
	assert.Equal(t, 3, batches[0].RowsProcessed)
	assert.Equal(t, 1, batches[0].RowsDuplicate)
	require.Len(t, batches[0].Errors, 1)
	assert.Equal(t, 9, batches[0].Errors[0].Row)
}

func TestWithTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.InsertBatch(ctx, &models.ImportBatch{ID: "tx", Source: models.SourceSWA, ImportedAt: time.Now()}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = s.GetBatch(ctx, "tx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAirports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lat, lon := 29.645, -95.279
	name := "William P Hobby Airport"
	n, err := s.UpsertAirports(ctx, []models.Airport{
		{ICAO: "KHOU", Name: &name, Latitude: &lat, Longitude: &lon},
		{ICAO: "KDAL"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Upserting again replaces rather than duplicates
	newName := "Hobby"
	_, err = s.UpsertAirports(ctx, []models.Airport{{ICAO: "KHOU", Name: &newName, Latitude: &lat, Longitude: &lon}})
	require.NoError(t, err)

	a, err := s.LookupAirport(ctx, "khou")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Hobby", *a.Name)
	assert.True(t, a.HasCoordinates())

	missing, err := s.LookupAirport(ctx, "KZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := s.ListAirports(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byCode, err := s.AirportsByCode(ctx, []string{"KHOU", "KZZZ"})
	require.NoError(t, err)
	assert.Len(t, byCode, 1)
	assert.Contains(t, byCode, "KHOU")
}

func TestAirportCodesInUse(t *testing.T) {
	s := newTestStore(t)
	insertBatch(t, s, "b1")
	insertFlight(t, s, testutil.NewFlight("2025-01-01", "KHOU", "KDAL", 60, testutil.InBatch("b1")))
	insertFlight(t, s, testutil.NewFlight("2025-01-02", "KDAL", "KDEN", 60, testutil.InBatch("b1")))

	codes, err := s.AirportCodesInUse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"KDAL", "KDEN", "KHOU"}, codes)
}

func TestBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertBatch(t, s, "b1")

	dest := BackupPath(filepath.Join(t.TempDir(), "logbook.db"), time.Date(2025, 1, 24, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, "logbook-20250124-080000.000.db", filepath.Base(dest))
	require.NoError(t, s.Backup(ctx, dest))

	copied, err := Open(dest, nil)
	require.NoError(t, err)
	defer copied.Close()
	_, err = copied.GetBatch(ctx, "b1")
	assert.NoError(t, err)

	assert.Error(t, s.Backup(ctx, dest), "refuses to overwrite")
}
