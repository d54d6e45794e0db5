package models

import "time"

// SentNotice records a delivered notification by dedupe key, so threshold
// warnings fire at most once per key (e.g. once per budget threshold per
// calendar month) no matter how often the background checks run.
type SentNotice struct {
	ID        uint   `gorm:"primaryKey"`
	DedupeKey string `gorm:"size:128;uniqueIndex;not null"`
	Channel   string `gorm:"size:32;not null"`
	SentAt    time.Time
}

// AuditLog records API operations for troubleshooting.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Method    string `gorm:"size:16"`
	Path      string `gorm:"size:255"`
	Status    int
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
