package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/database"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return NewStore(db)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInsertTransactionRejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	bad := []models.Transaction{
		{WalletID: 1, Type: "refund", Category: "misc", Amount: 100, OccurredAt: date(2024, 7, 1)},
		{WalletID: 1, Type: models.TypeExpense, Category: "food", Amount: -1, OccurredAt: date(2024, 7, 1)},
		{WalletID: 0, Type: models.TypeExpense, Category: "food", Amount: 100, OccurredAt: date(2024, 7, 1)},
		{WalletID: 1, Type: models.TypeExpense, Category: "", Amount: 100, OccurredAt: date(2024, 7, 1)},
	}
	for _, tx := range bad {
		err := s.InsertTransaction(&tx)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	}
}

func TestTransactionsInRangeHalfOpen(t *testing.T) {
	s := newTestStore(t)

	for _, d := range []time.Time{date(2024, 6, 30), date(2024, 7, 1), date(2024, 7, 31), date(2024, 8, 1)} {
		tx := models.Transaction{WalletID: 1, Type: models.TypeExpense, Category: "food", Amount: 100, OccurredAt: d}
		require.NoError(t, s.InsertTransaction(&tx))
	}

	txns, err := s.TransactionsInRange(date(2024, 7, 1), date(2024, 8, 1))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.True(t, txns[0].OccurredAt.Equal(date(2024, 7, 1)))
	assert.True(t, txns[1].OccurredAt.Equal(date(2024, 7, 31)))
}

func TestMonthlyExpenseTotalOnlyCountsExpenses(t *testing.T) {
	s := newTestStore(t)

	insert := func(typ models.TxType, amount int64, d time.Time) {
		tx := models.Transaction{WalletID: 1, Type: typ, Category: "misc", Amount: amount, OccurredAt: d}
		require.NoError(t, s.InsertTransaction(&tx))
	}
	insert(models.TypeExpense, 200_000, date(2024, 7, 5))
	insert(models.TypeExpense, 300_000, date(2024, 7, 20))
	insert(models.TypeIncome, 1_000_000, date(2024, 7, 10))
	insert(models.TypeExpense, 999_999, date(2024, 6, 30))

	total, err := s.MonthlyExpenseTotal(date(2024, 7, 15))
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), total)
}

func TestOpenDebtTransactionsFilter(t *testing.T) {
	s := newTestStore(t)

	for _, cat := range []string{
		models.CategoryLending,
		models.CategoryBorrowing,
		models.CategoryCollection,
		models.CategoryRepayment,
		"food",
	} {
		typ := models.TypeExpense
		if cat == models.CategoryLending {
			typ = models.TypeLoanGive
		}
		if cat == models.CategoryBorrowing {
			typ = models.TypeLoanTake
		}
		tx := models.Transaction{WalletID: 1, Type: typ, Category: cat, Amount: 100, OccurredAt: date(2024, 7, 1)}
		require.NoError(t, s.InsertTransaction(&tx))
	}

	open, err := s.OpenDebtTransactions()
	require.NoError(t, err)
	require.Len(t, open, 2)
	for _, tx := range open {
		assert.True(t, models.IsOpenDebtCategory(tx.Category))
	}
}

func TestReplaceTransactionIsAtomic(t *testing.T) {
	s := newTestStore(t)

	origin := models.Transaction{WalletID: 1, Type: models.TypeLoanGive, Category: models.CategoryLending, Amount: 500_000, OccurredAt: date(2024, 7, 1)}
	require.NoError(t, s.InsertTransaction(&origin))

	counter := models.Transaction{WalletID: 1, Type: models.TypeIncome, Category: models.CategoryCollection, Amount: 500_000, OccurredAt: date(2024, 8, 1)}
	require.NoError(t, s.ReplaceTransaction(&counter, &origin))

	_, err := s.Transaction(origin.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Transaction(counter.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCollection, got.Category)

	open, err := s.OpenDebtTransactions()
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestReplaceTransactionRejectsInvalidCounter(t *testing.T) {
	s := newTestStore(t)

	origin := models.Transaction{WalletID: 1, Type: models.TypeLoanGive, Category: models.CategoryLending, Amount: 500_000, OccurredAt: date(2024, 7, 1)}
	require.NoError(t, s.InsertTransaction(&origin))

	counter := models.Transaction{WalletID: 1, Type: "settlement", Category: models.CategoryCollection, Amount: 500_000, OccurredAt: date(2024, 8, 1)}
	err := s.ReplaceTransaction(&counter, &origin)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	// original must still be there
	_, err = s.Transaction(origin.ID)
	assert.NoError(t, err)
}

func TestSaveWalletProtectsDefault(t *testing.T) {
	s := newTestStore(t)

	w, err := s.Wallet(models.DefaultWalletID)
	require.NoError(t, err)

	w.IsArchived = true
	err = s.SaveWallet(&w)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestWalletNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Wallet(42)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestActiveObligationsDueByOrdering(t *testing.T) {
	s := newTestStore(t)

	save := func(next time.Time, active bool) {
		ob := models.RecurringObligation{
			WalletID: 1, Type: models.TypeExpense, Category: "rent",
			Amount: 100, Period: models.PeriodMonthly,
			NextRunDate: next, IsActive: active,
		}
		require.NoError(t, s.SaveObligation(&ob))
	}
	save(date(2024, 7, 10), true)
	save(date(2024, 7, 1), true)
	save(date(2024, 6, 1), false)  // inactive, excluded
	save(date(2024, 7, 20), true)  // after now, excluded
	save(date(2024, 7, 15), true)  // due exactly now, included

	due, err := s.ActiveObligationsDueBy(date(2024, 7, 15))
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.True(t, due[0].NextRunDate.Equal(date(2024, 7, 1)))
	assert.True(t, due[1].NextRunDate.Equal(date(2024, 7, 10)))
	assert.True(t, due[2].NextRunDate.Equal(date(2024, 7, 15)))
}

func TestSaveObligationRejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	ob := models.RecurringObligation{
		WalletID: 1, Type: models.TypeExpense, Category: "rent",
		Amount: 100, Period: "fortnightly",
		NextRunDate: date(2024, 7, 1), IsActive: true,
	}
	assert.ErrorIs(t, s.SaveObligation(&ob), ErrInvalidRecord)

	ob.Period = models.PeriodMonthly
	ob.LoanSource = "friend"
	assert.ErrorIs(t, s.SaveObligation(&ob), ErrInvalidRecord)
}

func TestCommitObligationRunPersistsUnit(t *testing.T) {
	s := newTestStore(t)

	ob := models.RecurringObligation{
		WalletID: 1, Type: models.TypeExpense, Category: "rent",
		Amount: 2_000_000, Period: models.PeriodMonthly,
		NextRunDate: date(2024, 5, 1), IsActive: true,
	}
	require.NoError(t, s.SaveObligation(&ob))

	created := []models.Transaction{
		{WalletID: 1, Type: models.TypeExpense, Category: "rent", Amount: 2_000_000, OccurredAt: date(2024, 5, 1), IsRecurring: true, ObligationID: &ob.ID},
		{WalletID: 1, Type: models.TypeExpense, Category: "rent", Amount: 2_000_000, OccurredAt: date(2024, 6, 1), IsRecurring: true, ObligationID: &ob.ID},
	}
	ob.NextRunDate = date(2024, 7, 1)
	require.NoError(t, s.CommitObligationRun(&ob, created))

	txns, err := s.TransactionsByWallet(1)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	reloaded, err := s.Obligation(ob.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.NextRunDate.Equal(date(2024, 7, 1)))
}

func TestPlannedItemCompleteToggle(t *testing.T) {
	s := newTestStore(t)

	item := models.PlannedExpenseItem{
		GroupName: "trip", Title: "hotel", Amount: 1_500_000,
		Category: "travel", WalletID: 1, DueDate: date(2024, 9, 1),
	}
	require.NoError(t, s.SavePlannedItem(&item))

	tx := models.Transaction{
		WalletID: 1, Type: models.TypeExpense, Category: "travel",
		Amount: 1_500_000, OccurredAt: date(2024, 8, 20), PlannedItemID: &item.ID,
	}
	require.NoError(t, s.CompletePlannedItem(&item, &tx))
	assert.True(t, item.IsCompleted)
	require.NotNil(t, item.TransactionID)

	got, err := s.Transaction(*item.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), got.Amount)

	require.NoError(t, s.UncompletePlannedItem(&item))
	assert.False(t, item.IsCompleted)
	assert.Nil(t, item.TransactionID)

	_, err = s.Transaction(tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePlannedItemRemovesBackingTransaction(t *testing.T) {
	s := newTestStore(t)

	item := models.PlannedExpenseItem{
		GroupName: "trip", Title: "flight", Amount: 3_000_000,
		Category: "travel", WalletID: 1, DueDate: date(2024, 9, 1),
	}
	require.NoError(t, s.SavePlannedItem(&item))

	tx := models.Transaction{
		WalletID: 1, Type: models.TypeExpense, Category: "travel",
		Amount: 3_000_000, OccurredAt: date(2024, 8, 20), PlannedItemID: &item.ID,
	}
	require.NoError(t, s.CompletePlannedItem(&item, &tx))
	require.NoError(t, s.DeletePlannedItem(&item))

	_, err := s.PlannedItem(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Transaction(tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveBudgetUpserts(t *testing.T) {
	s := newTestStore(t)

	b := models.Budget{Month: "2024-07", LimitAmount: 5_000_000}
	require.NoError(t, s.SaveBudget(&b))

	b2 := models.Budget{Month: "2024-07", LimitAmount: 8_000_000}
	require.NoError(t, s.SaveBudget(&b2))
	assert.Equal(t, b.ID, b2.ID)

	got, err := s.BudgetForMonth("2024-07")
	require.NoError(t, err)
	assert.Equal(t, int64(8_000_000), got.LimitAmount)

	_, err = s.BudgetForMonth("2024-08")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoticeDedupe(t *testing.T) {
	s := newTestStore(t)

	sent, err := s.NoticeAlreadySent("budget:2024-07:80")
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, s.MarkNoticeSent("budget:2024-07:80", "budget", date(2024, 7, 20)))

	sent, err = s.NoticeAlreadySent("budget:2024-07:80")
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = s.NoticeAlreadySent("budget:2024-08:80")
	require.NoError(t, err)
	assert.False(t, sent)
}
