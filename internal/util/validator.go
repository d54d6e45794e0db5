package util

import (
	"fmt"
	"time"
)

// maximum single amount, 100 billion VND
const maxAmount = 100_000_000_000

// ValidateAmount checks an amount in đồng: positive and below the cap.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	if amount >= maxAmount {
		return fmt.Errorf("amount too large, got %d", amount)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD date string.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateCategory checks a category name: non-empty with a sane length.
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("category is empty")
	}
	if len(category) > 32 {
		return fmt.Errorf("category too long, max 32 characters")
	}
	return nil
}

// ParseDateTime accepts the date layouts the clients send.
func ParseDateTime(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,          // 2025-12-03T00:00:00+07:00
		"2006-01-02T15:04:05", // 2025-12-03T00:00:00
		"2006-01-02",          // 2025-12-03
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
