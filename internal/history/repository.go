package history

import (
	"context"
	"errors"
	"fmt"

	"podsync/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("sync run not found")

// Repository stores the audit trail of reconciliation passes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the run together with its product results.
func (r *Repository) Save(ctx context.Context, run *models.SyncRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}
	return nil
}

// List returns runs newest first, without product results.
func (r *Repository) List(ctx context.Context, page, limit int) ([]models.SyncRun, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.SyncRun{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sync runs: %w", err)
	}

	var runs []models.SyncRun
	err := r.db.WithContext(ctx).Order("started_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sync runs: %w", err)
	}

	return runs, total, nil
}

// Get loads one run with its product results in pass order.
func (r *Repository) Get(ctx context.Context, id string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch sync run: %w", err)
	}
	return &run, nil
}
