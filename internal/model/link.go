package model

import "time"

const (
	MaxCodeLength = 64
	MaxURLLength  = 2048
)

// Link maps a short code to its target URL plus click analytics.
type Link struct {
	Code        string     `gorm:"primaryKey;size:64" json:"code"`
	URL         string     `gorm:"size:2048;not null" json:"url"`
	Clicks      int64      `gorm:"not null;default:0" json:"clicks"`
	LastClicked *time.Time `json:"last_clicked"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Link) TableName() string {
	return "links"
}
