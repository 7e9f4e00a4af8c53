package importer

import (
	"errors"
	"fmt"

	"github.com/balkashynov/pilotlog/internal/models"
)

// Reason classifies why a row was rejected
type Reason string

const (
	ReasonInvalidDate  Reason = "InvalidDate"
	ReasonMissingRoute Reason = "MissingRoute"
)

// ErrUnknownSource is returned for a source tag with no registered format
var ErrUnknownSource = errors.New("no import format registered for source")

// RowError rejects a single row. The import carries on without it.
type RowError struct {
	Row    int
	Reason Reason
	Detail string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Detail)
}

// FormatError means the file does not have the structure expected for its
// source. Nothing from the file is kept.
type FormatError struct {
	Source  models.Source
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s file not recognised: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("%s file not recognised: %s", e.Source, e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failure reported by the flight store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func rowError(row int, reason Reason, format string, args ...any) *RowError {
	return &RowError{Row: row, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
