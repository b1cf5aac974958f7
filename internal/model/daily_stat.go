package model

// DailyStat holds one day of click totals for a code.
type DailyStat struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	Code     string `gorm:"size:64;not null;uniqueIndex:idx_daily_stats_code_date" json:"-"`
	Date     string `gorm:"size:10;not null;uniqueIndex:idx_daily_stats_code_date" json:"date"` // YYYY-MM-DD
	Clicks   int64  `gorm:"not null;default:0" json:"clicks"`
	Visitors int64  `gorm:"not null;default:0" json:"visitors"`
}

func (DailyStat) TableName() string {
	return "daily_stats"
}
