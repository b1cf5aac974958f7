package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tinylink/internal/model"
)

// LinkRepository is the durable code -> link mapping.
type LinkRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLinkRepository uses now for last_clicked; nil means time.Now.
func NewLinkRepository(db *gorm.DB, now func() time.Time) *LinkRepository {
	if now == nil {
		now = time.Now
	}
	return &LinkRepository{db: db, now: now}
}

func (r *LinkRepository) Find(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find link %q: %w", code, err)
	}
	return &link, nil
}

// Create inserts a new link. An existing code yields ErrConflict and is left untouched.
func (r *LinkRepository) Create(ctx context.Context, code, url string) (*model.Link, error) {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Link{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check link %q: %w", code, err)
	}
	if count > 0 {
		return nil, ErrConflict
	}

	link := &model.Link{Code: code, URL: url}
	if err := db.Create(link).Error; err != nil {
		// lost a race with a concurrent create of the same code
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create link %q: %w", code, err)
	}
	return link, nil
}

// Increment adds one click and moves last_clicked forward in a single statement, then
// returns the updated row.
func (r *LinkRepository) Increment(ctx context.Context, code string) (*model.Link, error) {
	now := r.now()
	var link model.Link

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Link{}).
			Where("code = ?", code).
			Updates(map[string]interface{}{
				"clicks":       gorm.Expr("COALESCE(clicks, 0) + ?", 1),
				"last_clicked": gorm.Expr("CASE WHEN last_clicked IS NULL OR last_clicked < ? THEN ? ELSE last_clicked END", now, now),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("code = ?", code).Take(&link).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("increment link %q: %w", code, err)
	}
	return &link, nil
}

// Delete removes the link and its daily stats.
func (r *LinkRepository) Delete(ctx context.Context, code string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("code = ?", code).Delete(&model.Link{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("code = ?", code).Delete(&model.DailyStat{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete link %q: %w", code, err)
	}
	return nil
}

// List returns every link, newest created_at first.
func (r *LinkRepository) List(ctx context.Context) ([]model.Link, error) {
	links := make([]model.Link, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// Ping checks database connectivity.
func (r *LinkRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
