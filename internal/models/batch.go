package models

import (
	"time"

	"gorm.io/datatypes"
)

// RowIssue is a row level problem reported by an import
type RowIssue struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportBatch records one import of one file and its outcome
type ImportBatch struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Source     Source    `gorm:"size:20;not null" json:"source"`
	Filename   string    `gorm:"size:255" json:"filename"`
	ImportedAt time.Time `gorm:"not null" json:"imported_at"`

	RowsProcessed int `json:"rows_processed"`
	RowsImported  int `json:"rows_imported"`
	RowsSkipped   int `json:"rows_skipped"`
	RowsDuplicate int `json:"rows_duplicate"`

	Errors   datatypes.JSONSlice[RowIssue] `json:"errors"`
	Warnings datatypes.JSONSlice[RowIssue] `json:"warnings"`
}

// SchemaVersion marks the schema revision a database was created with
type SchemaVersion struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false" json:"version"`
	AppliedAt time.Time `gorm:"not null" json:"applied_at"`
}

// TableName keeps the singular table name
func (SchemaVersion) TableName() string {
	return "schema_version"
}
