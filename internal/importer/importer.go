// Package importer turns flight log exports into stored flight records.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/pilotlog/internal/aircraft"
	"github.com/balkashynov/pilotlog/internal/db"
	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
)

// Writer is the part of the flight store an import needs
type Writer interface {
	InsertBatch(ctx context.Context, batch *models.ImportBatch) error
	FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error
	InsertFlight(ctx context.Context, f *models.Flight) (uint, error)
	InsertAttribute(ctx context.Context, flightID uint, name, value string, unit *string) error
	FindDuplicate(ctx context.Context, key db.DuplicateKey) (uint, bool, error)
}

// Report is the outcome of one import
type Report struct {
	BatchID       string            `json:"batch_id"`
	Filename      string            `json:"filename"`
	Source        models.Source     `json:"source"`
	RowsProcessed int               `json:"rows_processed"`
	RowsImported  int               `json:"rows_imported"`
	RowsSkipped   int               `json:"rows_skipped"`
	RowsDuplicate int               `json:"rows_duplicate"`
	Errors        []models.RowIssue `json:"errors"`
	Warnings      []models.RowIssue `json:"warnings"`
	Summary       Summary           `json:"summary"`
}

// Summary describes what the import added
type Summary struct {
	NewBlockMinutes   int    `json:"new_block_minutes,omitempty"`
	NewBlockFormatted string `json:"new_block_formatted,omitempty"`
	FirstDate         string `json:"first_date,omitempty"`
	LastDate          string `json:"last_date,omitempty"`
	DateRange         string `json:"date_range,omitempty"`
}

// Importer runs the import pipeline for every registered source
type Importer struct {
	formats map[models.Source]Format
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// New creates an importer with the built-in formats registered
func New(normalizer *aircraft.Normalizer, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if normalizer == nil {
		normalizer = aircraft.Default()
	}

	im := &Importer{
		formats: make(map[models.Source]Format),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}

	im.Register(models.SourceSWA, SWALayout, NewTabularExtractor(models.SourceSWA, SWALayout, normalizer))
	im.Register(models.SourceCivilian, LogbookLayout, NewTabularExtractor(models.SourceCivilian, LogbookLayout, normalizer))
	im.Register(models.SourceManual, LogbookLayout, NewTabularExtractor(models.SourceManual, LogbookLayout, normalizer))
	return im
}

// Register installs or replaces the format used for a source
func (im *Importer) Register(source models.Source, layout Layout, extractor Extractor) {
	im.formats[source] = Format{Layout: layout, Extractor: extractor}
}

// Supports reports whether a format is registered for source
func (im *Importer) Supports(source models.Source) bool {
	_, ok := im.formats[source]
	return ok
}

// ImportPath reads a file from disk and imports it
func (im *Importer) ImportPath(ctx context.Context, w Writer, path string, source models.Source) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return im.Import(ctx, w, filepath.Base(path), data, source)
}

// Import runs the pipeline over the raw bytes of one file. Bad rows are
// skipped and reported; a FormatError or StoreError aborts the import and
// the caller's transaction should be rolled back.
func (im *Importer) Import(ctx context.Context, w Writer, filename string, data []byte, source models.Source) (*Report, error) {
	format, ok := im.formats[source]
	if !ok {
		return nil, &FormatError{Source: source, Message: "unsupported source", Err: ErrUnknownSource}
	}

	records, err := readRecords(format.Layout, source, data)
	if err != nil {
		return nil, err
	}

	batch := &models.ImportBatch{
		ID:         im.newID(),
		Source:     source,
		Filename:   filename,
		ImportedAt: im.now(),
	}
	if err := w.InsertBatch(ctx, batch); err != nil {
		return nil, &StoreError{Op: "insert batch", Err: err}
	}

	report := &Report{
		BatchID:  batch.ID,
		Filename: filename,
		Source:   source,
		Errors:   []models.RowIssue{},
		Warnings: []models.RowIssue{},
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := im.importRecord(ctx, w, format.Extractor, batch.ID, rec, report); err != nil {
			return nil, err
		}
	}

	batch.RowsProcessed = report.RowsProcessed
	batch.RowsImported = report.RowsImported
	batch.RowsSkipped = report.RowsSkipped
	batch.RowsDuplicate = report.RowsDuplicate
	batch.Errors = report.Errors
	batch.Warnings = report.Warnings
	if err := w.FinalizeBatch(ctx, batch); err != nil {
		return nil, &StoreError{Op: "finalize batch", Err: err}
	}

	if report.RowsImported > 0 {
		report.Summary.NewBlockFormatted = metrics.FormatMinutes(report.Summary.NewBlockMinutes)
		report.Summary.DateRange = report.Summary.FirstDate + " to " + report.Summary.LastDate
	}

	im.logger.Info("import finished",
		"batch_id", batch.ID,
		"file", filename,
		"source", source,
		"processed", report.RowsProcessed,
		"imported", report.RowsImported,
		"skipped", report.RowsSkipped,
		"duplicate", report.RowsDuplicate,
		"warnings", len(report.Warnings),
	)
	return report, nil
}

func (im *Importer) importRecord(ctx context.Context, w Writer, ex Extractor, batchID string, rec Record, report *Report) error {
	report.RowsProcessed++

	draft, err := ex.Extract(rec)
	if err != nil {
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			return im.skip(report, rowErr)
		}
		return err
	}

	for _, warning := range draft.Warnings {
		report.Warnings = append(report.Warnings, models.RowIssue{Row: rec.Line, Message: warning})
		im.logger.Debug("row warning", "row", rec.Line, "warning", warning)
	}

	flight := draft.Flight
	if _, found, err := w.FindDuplicate(ctx, db.KeyOf(&flight)); err != nil {
		return &StoreError{Op: "duplicate check", Err: err}
	} else if found {
		report.RowsDuplicate++
		return nil
	}

	flight.ImportBatchID = &batchID
	id, err := w.InsertFlight(ctx, &flight)
	if err != nil {
		return &StoreError{Op: "insert flight", Err: err}
	}
	for _, attr := range draft.Attributes {
		if err := w.InsertAttribute(ctx, id, attr.Name, attr.Value, models.OptString(attr.Unit)); err != nil {
			return &StoreError{Op: "insert attribute", Err: err}
		}
	}

	report.RowsImported++
	report.Summary.NewBlockMinutes += flight.BlockMinutes
	if report.Summary.FirstDate == "" || flight.FlightDate < report.Summary.FirstDate {
		report.Summary.FirstDate = flight.FlightDate
	}
	if flight.FlightDate > report.Summary.LastDate {
		report.Summary.LastDate = flight.FlightDate
	}
	return nil
}

func (im *Importer) skip(report *Report, rowErr *RowError) error {
	report.RowsSkipped++
	report.Errors = append(report.Errors, models.RowIssue{Row: rowErr.Row, Message: rowErr.Detail})
	im.logger.Debug("row skipped", "row", rowErr.Row, "reason", rowErr.Reason, "detail", rowErr.Detail)
	return nil
}

// readRecords strips the preamble and splits the rest of the file into data
// rows, numbered by their line in the file
func readRecords(layout Layout, source models.Source, data []byte) ([]Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	body, skipped := skipLines(data, layout.Preamble)

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var cols Columns
	if layout.Columns != nil {
		cols = NewColumns(layout.Columns)
	}

	var records []Record
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Source: source, Message: "file is not readable as CSV", Err: err}
		}
		line, _ := r.FieldPos(0)
		line += skipped

		if layout.Columns == nil && cols.Len() == 0 {
			cols = NewColumns(cells)
			if err := checkHeader(layout, cols); err != nil {
				return nil, &FormatError{Source: source, Message: err.Error()}
			}
			continue
		}
		if isFiller(cells, layout.resolveFields(cols), cols) {
			continue
		}
		records = append(records, Record{Line: line, Cells: cells, Columns: cols})
	}

	// Short rows still import; every row short means the wrong file
	if len(records) > 0 {
		complete := 0
		for _, rec := range records {
			if len(rec.Cells) >= cols.Len() {
				complete++
			}
		}
		if complete == 0 {
			return nil, &FormatError{
				Source:  source,
				Message: fmt.Sprintf("no row has the expected %d columns", cols.Len()),
			}
		}
	}
	return records, nil
}

// skipLines drops the first n lines and returns the remainder with the
// number of lines removed
func skipLines(data []byte, n int) ([]byte, int) {
	skipped := 0
	for skipped < n && len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return nil, skipped + 1
		}
		data = data[i+1:]
		skipped++
	}
	return data, skipped
}

// checkHeader verifies a header row names the fields a flight cannot do without
func checkHeader(layout Layout, cols Columns) error {
	fields := layout.resolveFields(cols)
	var missing []string
	if fields.Date == "" {
		missing = append(missing, "date")
	}
	if fields.Origin == "" {
		missing = append(missing, "origin")
	}
	if fields.Destination == "" {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return fmt.Errorf("header row has no %s column", strings.Join(missing, ", "))
	}
	return nil
}

// isFiller reports rows that carry no flight: blank lines and any row whose
// date cell is empty, such as page footers and total lines
func isFiller(cells []string, fields Fields, cols Columns) bool {
	return cols.Cell(cells, fields.Date) == ""
}
