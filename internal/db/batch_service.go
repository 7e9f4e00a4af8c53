package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/balkashynov/pilotlog/internal/models"
)

// InsertBatch records the start of an import
func (s *Store) InsertBatch(ctx context.Context, batch *models.ImportBatch) error {
	if err := s.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("failed to insert import batch: %w", err)
	}
	return nil
}

// FinalizeBatch persists the final counters and issues of a batch
func (s *Store) FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error {
	err := s.db.WithContext(ctx).Model(batch).Select(
		"rows_processed", "rows_imported", "rows_skipped", "rows_duplicate", "errors", "warnings",
	).Updates(batch).Error
	if err != nil {
		return fmt.Errorf("failed to finalize import batch: %w", err)
	}
	return nil
}

// ListBatches returns every import batch, newest first
func (s *Store) ListBatches(ctx context.Context) ([]models.ImportBatch, error) {
	var batches []models.ImportBatch
	if err := s.db.WithContext(ctx).Order("imported_at DESC").Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	return batches, nil
}

// GetBatch returns a batch by id
func (s *Store) GetBatch(ctx context.Context, id string) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("import batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import batch %s: %w", id, err)
	}
	return &batch, nil
}

// DeleteBatch removes a batch together with its flights and their
// attributes. Returns the number of flights removed.
func (s *Store) DeleteBatch(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ImportBatch{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("import batch %s: %w", id, ErrNotFound)
		}

		flightIDs := tx.Model(&models.Flight{}).Select("id").Where("import_batch_id = ?", id)
		if err := tx.Where("flight_id IN (?)", flightIDs).Delete(&models.FlightAttribute{}).Error; err != nil {
			return err
		}

		res := tx.Where("import_batch_id = ?", id).Delete(&models.Flight{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		return tx.Where("id = ?", id).Delete(&models.ImportBatch{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to delete import batch %s: %w", id, err)
	}

	s.logger.Info("import batch deleted", "batch_id", id, "flights", removed)
	return removed, nil
}
