package models

import "time"

// Budget is a per-month expense limit. Month uses the "2006-01" layout.
// Months without a row fall back to the configured default limit.
type Budget struct {
	ID          uint   `gorm:"primaryKey"`
	Month       string `gorm:"size:7;uniqueIndex;not null"`
	LimitAmount int64  `gorm:"not null"` // VND
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
