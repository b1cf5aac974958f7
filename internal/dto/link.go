package dto

import "tinylink/internal/model"

// CreateLinkRequest is the body of POST /api/links.
// The msg tag names the message reported when the field fails validation.
type CreateLinkRequest struct {
	Code string `json:"code" binding:"required,max=64" msg:"CodeTooLong"`
	URL  string `json:"url" binding:"required,max=2048" msg:"URLTooLong"`
}

// DailyStatsResponse is the body of GET /api/links/:code/stats.
type DailyStatsResponse struct {
	Code string            `json:"code"`
	Days []model.DailyStat `json:"days"`
}
