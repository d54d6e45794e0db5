package models

import "time"

// PlannedExpenseItem is an anticipated future expense grouped under a
// user-defined label.
//
// IsCompleted implies TransactionID references an existing transaction;
// un-completing the item deletes that transaction and clears the reference.
type PlannedExpenseItem struct {
	ID            uint      `gorm:"primaryKey"`
	GroupName     string    `gorm:"size:64;index;not null"`
	Title         string    `gorm:"size:64;not null"`
	Amount        int64     `gorm:"not null"` // VND
	Category      string    `gorm:"size:32;not null"`
	WalletID      uint      `gorm:"index;not null"`
	Note          string    `gorm:"size:255"`
	DueDate       time.Time `gorm:"index"`
	IsCompleted   bool      `gorm:"index;not null"`
	TransactionID *uint     `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
