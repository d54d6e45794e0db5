// Package logging configures the application-wide structured logger.
package logging

import (
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/config"

	"github.com/sirupsen/logrus"
)

// Standardized field names for structured logging.
const (
	FieldRunID      = "run_id"
	FieldObligation = "obligation_id"
	FieldWallet     = "wallet_id"
	FieldCount      = "count"
	FieldChannel    = "channel"
	FieldDedupeKey  = "dedupe_key"
	FieldError      = "error"
)

// New builds a logrus logger from config. Unknown levels fall back to info.
func New(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
