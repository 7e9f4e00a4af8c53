package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/pilotlog/internal/models"
)

// SchemaVersion is bumped whenever the models change shape
const SchemaVersion = 1

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Store is the relational flight store backed by a SQLite file
type Store struct {
	db     *gorm.DB
	path   string
	logger *slog.Logger
}

// Open connects to the database at path, creating it and its directory if
// needed, and brings the schema up to date
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	// Ensure the directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Foreign keys are per connection in SQLite, so they go in the DSN
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: gdb, path: path, logger: log}

	// Run auto-migrations
	if err := s.runMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Debug("database ready", "path", path, "schema_version", SchemaVersion)
	return s, nil
}

// runMigrations creates/updates the database schema and records the version marker
func (s *Store) runMigrations() error {
	if err := s.db.AutoMigrate(
		&models.ImportBatch{},
		&models.Flight{},
		&models.FlightAttribute{},
		&models.Airport{},
		&models.SchemaVersion{},
	); err != nil {
		return err
	}

	marker := models.SchemaVersion{Version: SchemaVersion, AppliedAt: time.Now().UTC()}
	return s.db.Where(models.SchemaVersion{Version: SchemaVersion}).FirstOrCreate(&marker).Error
}

// Version returns the highest schema version recorded in the database
func (s *Store) Version(ctx context.Context) (int, error) {
	var v models.SchemaVersion
	err := s.db.WithContext(ctx).Order("version DESC").Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v.Version, nil
}

// WithTx runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, path: s.path, logger: s.logger})
	})
}

// Backup writes a consistent copy of the database to dest
func (s *Store) Backup(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %s already exists", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	s.logger.Info("database backed up", "dest", dest)
	return nil
}

// BackupPath returns a timestamped backup file name next to dbPath
func BackupPath(dbPath string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	return filepath.Join(filepath.Dir(dbPath), "backups", fmt.Sprintf("%s-%s.db", base, at.UTC().Format("20060102-150405.000")))
}

// Path is the database file the store was opened on
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
