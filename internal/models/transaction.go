package models

import "time"

// TxType classifies how a transaction moves money. The signed effect on a
// wallet balance is always derived from the type; amounts are stored unsigned.
type TxType string

const (
	TypeIncome   TxType = "income"
	TypeExpense  TxType = "expense"
	TypeLoanGive TxType = "loan_give" // money lent out, owed to the user
	TypeLoanTake TxType = "loan_take" // money borrowed, owed by the user
	TypeTransfer TxType = "transfer"  // wallet-to-wallet, net neutral
)

// Valid reports whether t is one of the closed set of transaction types.
func (t TxType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeLoanGive, TypeLoanTake, TypeTransfer:
		return true
	}
	return false
}

// Debt position categories. A lending/borrowing transaction is an open debt
// until settlement replaces it with a collection/repayment record.
const (
	CategoryLending    = "lending"
	CategoryBorrowing  = "borrowing"
	CategoryCollection = "collection"
	CategoryRepayment  = "repayment"
)

// IsOpenDebtCategory reports whether category marks an unsettled debt position.
func IsOpenDebtCategory(category string) bool {
	return category == CategoryLending || category == CategoryBorrowing
}

// Transaction is a single financial event.
// Amounts are whole VND (no fractional subunit), stored as int64 to avoid float drift.
type Transaction struct {
	ID            uint       `gorm:"primaryKey"`
	WalletID      uint       `gorm:"index;not null"`
	Type          TxType     `gorm:"size:16;index;not null"`
	Category      string     `gorm:"size:32;index;not null"`
	Amount        int64      `gorm:"not null"` // always >= 0, sign derived from Type
	Note          string     `gorm:"size:255"`
	OccurredAt    time.Time  `gorm:"index;not null"`
	DueDate       *time.Time `gorm:"index"` // loan positions only
	IsRecurring   bool       `gorm:"index;not null"`
	ObligationID  *uint      `gorm:"index"` // set when materialized by the recurrence engine
	PlannedItemID *uint      `gorm:"index"` // set when created by completing a planned expense
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
