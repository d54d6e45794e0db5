package models

import "time"

// DefaultWalletID is the wallet created at first run; it can never be
// archived or deleted.
const DefaultWalletID uint = 1

// Wallet is a named money container.
//
// InitialBalance is a fixed anchor set at creation and never mutated
// afterwards; the current balance is always derived by summing the signed
// effects of the wallet's transactions on top of it.
type Wallet struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:64;not null"`
	InitialBalance int64  `gorm:"not null"` // VND
	Icon           string `gorm:"size:32"`
	Color          string `gorm:"size:16"`
	IsArchived     bool   `gorm:"index;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
