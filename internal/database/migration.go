package database

import (
	"fmt"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models and seeds the
// default wallet if it is missing.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Wallet{},
		&models.Transaction{},
		&models.RecurringObligation{},
		&models.PlannedExpenseItem{},
		&models.Budget{},
		&models.SentNotice{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// default wallet (id 1) always exists and cannot be removed
	var count int64
	if err := db.Model(&models.Wallet{}).
		Where("id = ?", models.DefaultWalletID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check default wallet: %w", err)
	}
	if count == 0 {
		w := models.Wallet{
			ID:   models.DefaultWalletID,
			Name: "Cash",
			Icon: "wallet",
		}
		if err := db.Create(&w).Error; err != nil {
			return fmt.Errorf("seed default wallet: %w", err)
		}
	}
	return nil
}
