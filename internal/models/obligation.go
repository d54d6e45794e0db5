package models

import "time"

// RecurrencePeriod is how often a recurring obligation fires.
type RecurrencePeriod string

const (
	PeriodDaily   RecurrencePeriod = "daily"
	PeriodWeekly  RecurrencePeriod = "weekly"
	PeriodMonthly RecurrencePeriod = "monthly"
	PeriodYearly  RecurrencePeriod = "yearly"
)

// Valid reports whether p is one of the closed set of periods.
func (p RecurrencePeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Next returns the run date one period after t. Monthly and yearly use
// calendar arithmetic, not fixed day counts.
func (p RecurrencePeriod) Next(t time.Time) time.Time {
	switch p {
	case PeriodDaily:
		return t.AddDate(0, 0, 1)
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	case PeriodYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// LoanSource classifies where a recurring loan payment goes. It is a label
// only; it has no effect on scheduling or balances.
type LoanSource string

const (
	LoanSourcePersonal LoanSource = "personal"
	LoanSourceBank     LoanSource = "bank"
)

// Valid reports whether s is a known loan source. Empty is allowed for
// non-loan obligations.
func (s LoanSource) Valid() bool {
	return s == "" || s == LoanSourcePersonal || s == LoanSourceBank
}

// RecurringObligation is a template from which concrete transactions are
// materialized once per period.
//
// TotalInstallments == 0 means unlimited. When capped, the obligation turns
// inactive once CompletedInstallments reaches the cap; that state is terminal.
type RecurringObligation struct {
	ID                    uint             `gorm:"primaryKey"`
	WalletID              uint             `gorm:"index;not null"`
	Type                  TxType           `gorm:"size:16;not null"`
	Category              string           `gorm:"size:32;not null"`
	Amount                int64            `gorm:"not null"` // VND
	Note                  string           `gorm:"size:255"`
	Period                RecurrencePeriod `gorm:"size:16;not null"`
	NextRunDate           time.Time        `gorm:"index;not null"`
	IsActive              bool             `gorm:"index;not null"`
	LoanSource            LoanSource       `gorm:"size:16"`
	TotalInstallments     int              `gorm:"not null;default:0"`
	CompletedInstallments int              `gorm:"not null;default:0"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Capped reports whether the obligation has an installment cap.
func (o *RecurringObligation) Capped() bool {
	return o.TotalInstallments > 0
}

// CapReached reports whether no further occurrences may fire.
func (o *RecurringObligation) CapReached() bool {
	return o.Capped() && o.CompletedInstallments >= o.TotalInstallments
}
