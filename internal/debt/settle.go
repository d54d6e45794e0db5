// Package debt closes open debt positions. A lending or borrowing
// transaction stays in the ledger until settlement replaces it with a single
// counter-transaction; the original is removed in the same unit of work.
// Delete-and-replace is applied uniformly, so totals never count a position
// as both open and settled.
package debt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
)

// ErrNotOpenDebt is returned when settlement is requested for a transaction
// that is not an open lending/borrowing position. No mutation is performed.
var ErrNotOpenDebt = errors.New("debt: transaction is not an open debt position")

// Store is the ledger surface settlement needs. ReplaceTransaction must be
// atomic: counter-transaction inserted and original removed together.
type Store interface {
	ReplaceTransaction(insert, remove *models.Transaction) error
}

// Result describes a completed settlement.
type Result struct {
	CounterID       uint
	CounterType     models.TxType
	CounterCategory string
}

type Settler struct {
	store Store
}

func NewSettler(store Store) *Settler {
	return &Settler{store: store}
}

// Settle closes origin by recording its resolution: lending collects as
// income, borrowing repays as expense. The counter-transaction carries the
// same amount, is dated now, and its note references the original.
func (s *Settler) Settle(origin models.Transaction, now time.Time) (Result, error) {
	var (
		counterType     models.TxType
		counterCategory string
		prefix          string
	)
	switch origin.Category {
	case models.CategoryLending:
		counterType = models.TypeIncome
		counterCategory = models.CategoryCollection
		prefix = "Collected"
	case models.CategoryBorrowing:
		counterType = models.TypeExpense
		counterCategory = models.CategoryRepayment
		prefix = "Repaid"
	default:
		return Result{}, fmt.Errorf("%w: category %q", ErrNotOpenDebt, origin.Category)
	}

	note := fmt.Sprintf("%s %s: %s", prefix, origin.OccurredAt.Format("2006-01-02"), origin.Note)
	note = strings.TrimSuffix(strings.TrimSpace(note), ":")

	counter := models.Transaction{
		WalletID:   origin.WalletID,
		Type:       counterType,
		Category:   counterCategory,
		Amount:     origin.Amount,
		Note:       note,
		OccurredAt: now,
	}

	if err := s.store.ReplaceTransaction(&counter, &origin); err != nil {
		return Result{}, fmt.Errorf("settle debt %d: %w", origin.ID, err)
	}

	return Result{
		CounterID:       counter.ID,
		CounterType:     counterType,
		CounterCategory: counterCategory,
	}, nil
}
