package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tinylink/internal/model"
)

// StatsRepository persists per-day click totals flushed from Redis.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Upsert writes the totals for (code, date), replacing any earlier flush of the same day.
// Rows are only written for codes that still have a link.
func (r *StatsRepository) Upsert(ctx context.Context, stat model.DailyStat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Link{}).Where("code = ?", stat.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("check link %q: %w", stat.Code, err)
		}
		if count == 0 {
			return nil
		}

		var row model.DailyStat
		err := tx.Where(model.DailyStat{Code: stat.Code, Date: stat.Date}).
			Assign(map[string]interface{}{"clicks": stat.Clicks, "visitors": stat.Visitors}).
			FirstOrCreate(&row).Error
		if err != nil {
			return fmt.Errorf("upsert daily stat %s/%s: %w", stat.Code, stat.Date, err)
		}
		return nil
	})
}

// ListByCode returns the stored days for code, newest first.
func (r *StatsRepository) ListByCode(ctx context.Context, code string) ([]model.DailyStat, error) {
	days := make([]model.DailyStat, 0)
	if err := r.db.WithContext(ctx).Where("code = ?", code).Order("date DESC").Find(&days).Error; err != nil {
		return nil, fmt.Errorf("list daily stats %q: %w", code, err)
	}
	return days, nil
}
