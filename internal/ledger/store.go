// Package ledger is the durable store for wallets, transactions, recurring
// obligations, planned expenses, budgets and notification marks. It is the
// only component that touches gorm; everything above it works with models
// and typed errors.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrWalletNotFound is returned when a referenced wallet does not exist.
	ErrWalletNotFound = errors.New("ledger: wallet not found")
	// ErrNotFound is returned for missing records other than wallets.
	ErrNotFound = errors.New("ledger: record not found")
	// ErrInvalidRecord marks validation failures at the store boundary.
	// It is terminal: retrying the same write can never succeed.
	ErrInvalidRecord = errors.New("ledger: invalid record")
)

// Store wraps a gorm handle. It is constructed once in main and injected
// into the engines and handlers; there is no package-level instance.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ---------- transactions ----------

func validateTransaction(tx *models.Transaction) error {
	if !tx.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidRecord, tx.Type)
	}
	if tx.Amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidRecord, tx.Amount)
	}
	if tx.WalletID == 0 {
		return fmt.Errorf("%w: missing wallet reference", ErrInvalidRecord)
	}
	if tx.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidRecord)
	}
	return nil
}

// InsertTransaction validates and stores a new transaction.
func (s *Store) InsertTransaction(tx *models.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	if err := s.db.Create(tx).Error; err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) Transaction(id uint) (models.Transaction, error) {
	var tx models.Transaction
	err := s.db.First(&tx, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Transaction{}, ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	return tx, nil
}

func (s *Store) SaveTransaction(tx *models.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	if err := s.db.Save(tx).Error; err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(tx *models.Transaction) error {
	if err := s.db.Delete(tx).Error; err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// TransactionsInRange returns transactions with start <= occurred_at < end.
func (s *Store) TransactionsInRange(start, end time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.
		Where("occurred_at >= ? AND occurred_at < ?", start, end).
		Order("occurred_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("transactions in range: %w", err)
	}
	return txns, nil
}

func (s *Store) TransactionsByWallet(walletID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.
		Where("wallet_id = ?", walletID).
		Order("occurred_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("transactions by wallet: %w", err)
	}
	return txns, nil
}

// OpenDebtTransactions returns unsettled lending/borrowing positions.
func (s *Store) OpenDebtTransactions() ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.
		Where("category IN ?", []string{models.CategoryLending, models.CategoryBorrowing}).
		Order("occurred_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("open debt transactions: %w", err)
	}
	return txns, nil
}

// ReplaceTransaction inserts a counter-transaction and removes the original
// in a single database transaction, so no observer ever sees both the open
// position and its settlement, or neither.
func (s *Store) ReplaceTransaction(insert, remove *models.Transaction) error {
	if err := validateTransaction(insert); err != nil {
		return err
	}
	err := s.db.Transaction(func(db *gorm.DB) error {
		if err := db.Create(insert).Error; err != nil {
			return err
		}
		return db.Delete(remove).Error
	})
	if err != nil {
		return fmt.Errorf("replace transaction: %w", err)
	}
	return nil
}

// MonthlyExpenseTotal sums expense amounts for the calendar month containing t.
func (s *Store) MonthlyExpenseTotal(t time.Time) (int64, error) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0)

	var total int64
	err := s.db.Model(&models.Transaction{}).
		Where("type = ? AND occurred_at >= ? AND occurred_at < ?", models.TypeExpense, start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("monthly expense total: %w", err)
	}
	return total, nil
}

// ---------- wallets ----------

func (s *Store) Wallet(id uint) (models.Wallet, error) {
	var w models.Wallet
	err := s.db.First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		return models.Wallet{}, fmt.Errorf("load wallet: %w", err)
	}
	return w, nil
}

func (s *Store) SaveWallet(w *models.Wallet) error {
	if w.Name == "" {
		return fmt.Errorf("%w: wallet name is empty", ErrInvalidRecord)
	}
	if w.ID == models.DefaultWalletID && w.IsArchived {
		return fmt.Errorf("%w: default wallet cannot be archived", ErrInvalidRecord)
	}
	if err := s.db.Save(w).Error; err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

func (s *Store) ListWallets(includeArchived bool) ([]models.Wallet, error) {
	q := s.db.Order("id ASC")
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var wallets []models.Wallet
	if err := q.Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// ---------- recurring obligations ----------

func validateObligation(ob *models.RecurringObligation) error {
	if !ob.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidRecord, ob.Type)
	}
	if !ob.Period.Valid() {
		return fmt.Errorf("%w: unknown recurrence period %q", ErrInvalidRecord, ob.Period)
	}
	if !ob.LoanSource.Valid() {
		return fmt.Errorf("%w: unknown loan source %q", ErrInvalidRecord, ob.LoanSource)
	}
	if ob.Amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidRecord, ob.Amount)
	}
	if ob.TotalInstallments < 0 || ob.CompletedInstallments < 0 {
		return fmt.Errorf("%w: negative installment count", ErrInvalidRecord)
	}
	return nil
}

// SaveObligation upserts an obligation, replacing its schedule fields.
func (s *Store) SaveObligation(ob *models.RecurringObligation) error {
	if err := validateObligation(ob); err != nil {
		return err
	}
	if err := s.db.Save(ob).Error; err != nil {
		return fmt.Errorf("save obligation: %w", err)
	}
	return nil
}

func (s *Store) Obligation(id uint) (models.RecurringObligation, error) {
	var ob models.RecurringObligation
	err := s.db.First(&ob, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RecurringObligation{}, ErrNotFound
	}
	if err != nil {
		return models.RecurringObligation{}, fmt.Errorf("load obligation: %w", err)
	}
	return ob, nil
}

func (s *Store) ListObligations() ([]models.RecurringObligation, error) {
	var obs []models.RecurringObligation
	if err := s.db.Order("next_run_date ASC, id ASC").Find(&obs).Error; err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	return obs, nil
}

func (s *Store) DeleteObligation(id uint) error {
	if err := s.db.Delete(&models.RecurringObligation{}, id).Error; err != nil {
		return fmt.Errorf("delete obligation: %w", err)
	}
	return nil
}

// ActiveObligationsDueBy returns active obligations with next_run_date <= now,
// soonest first, so a truncated run still makes forward progress on the most
// overdue obligations.
func (s *Store) ActiveObligationsDueBy(now time.Time) ([]models.RecurringObligation, error) {
	var obs []models.RecurringObligation
	err := s.db.
		Where("is_active = ? AND next_run_date <= ?", true, now).
		Order("next_run_date ASC, id ASC").
		Find(&obs).Error
	if err != nil {
		return nil, fmt.Errorf("due obligations: %w", err)
	}
	return obs, nil
}

// UpcomingObligations returns active obligations due in (now, until].
func (s *Store) UpcomingObligations(now, until time.Time) ([]models.RecurringObligation, error) {
	var obs []models.RecurringObligation
	err := s.db.
		Where("is_active = ? AND next_run_date > ? AND next_run_date <= ?", true, now, until).
		Order("next_run_date ASC, id ASC").
		Find(&obs).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming obligations: %w", err)
	}
	return obs, nil
}

// CommitObligationRun persists one obligation's catch-up result as a unit:
// all transactions materialized this run plus the advanced schedule fields.
// Either everything lands or nothing does, which is what keeps ProcessDue
// retryable.
func (s *Store) CommitObligationRun(ob *models.RecurringObligation, created []models.Transaction) error {
	if err := validateObligation(ob); err != nil {
		return err
	}
	for i := range created {
		if err := validateTransaction(&created[i]); err != nil {
			return err
		}
	}
	err := s.db.Transaction(func(db *gorm.DB) error {
		for i := range created {
			if err := db.Create(&created[i]).Error; err != nil {
				return err
			}
		}
		return db.Save(ob).Error
	})
	if err != nil {
		return fmt.Errorf("commit obligation run: %w", err)
	}
	return nil
}

// ---------- planned expenses ----------

func (s *Store) SavePlannedItem(item *models.PlannedExpenseItem) error {
	if item.Title == "" {
		return fmt.Errorf("%w: planned item title is empty", ErrInvalidRecord)
	}
	if item.Amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidRecord, item.Amount)
	}
	if err := s.db.Save(item).Error; err != nil {
		return fmt.Errorf("save planned item: %w", err)
	}
	return nil
}

func (s *Store) PlannedItem(id uint) (models.PlannedExpenseItem, error) {
	var item models.PlannedExpenseItem
	err := s.db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PlannedExpenseItem{}, ErrNotFound
	}
	if err != nil {
		return models.PlannedExpenseItem{}, fmt.Errorf("load planned item: %w", err)
	}
	return item, nil
}

// ListPlannedItems returns planned items, optionally filtered by group name.
func (s *Store) ListPlannedItems(group string) ([]models.PlannedExpenseItem, error) {
	q := s.db.Order("due_date ASC, id ASC")
	if group != "" {
		q = q.Where("group_name = ?", group)
	}
	var items []models.PlannedExpenseItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list planned items: %w", err)
	}
	return items, nil
}

func (s *Store) DeletePlannedItem(item *models.PlannedExpenseItem) error {
	err := s.db.Transaction(func(db *gorm.DB) error {
		if item.TransactionID != nil {
			if err := db.Delete(&models.Transaction{}, *item.TransactionID).Error; err != nil {
				return err
			}
		}
		return db.Delete(item).Error
	})
	if err != nil {
		return fmt.Errorf("delete planned item: %w", err)
	}
	return nil
}

// CompletePlannedItem marks the item done and records the backing expense
// transaction atomically.
func (s *Store) CompletePlannedItem(item *models.PlannedExpenseItem, tx *models.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	err := s.db.Transaction(func(db *gorm.DB) error {
		if err := db.Create(tx).Error; err != nil {
			return err
		}
		item.IsCompleted = true
		item.TransactionID = &tx.ID
		return db.Save(item).Error
	})
	if err != nil {
		return fmt.Errorf("complete planned item: %w", err)
	}
	return nil
}

// UncompletePlannedItem reverts a completed item: the backing transaction is
// deleted and the reference cleared, atomically.
func (s *Store) UncompletePlannedItem(item *models.PlannedExpenseItem) error {
	err := s.db.Transaction(func(db *gorm.DB) error {
		if item.TransactionID != nil {
			if err := db.Delete(&models.Transaction{}, *item.TransactionID).Error; err != nil {
				return err
			}
		}
		item.IsCompleted = false
		item.TransactionID = nil
		return db.Save(item).Error
	})
	if err != nil {
		return fmt.Errorf("uncomplete planned item: %w", err)
	}
	return nil
}

// ---------- budgets ----------

// BudgetForMonth returns the budget row for month ("2006-01" layout).
func (s *Store) BudgetForMonth(month string) (models.Budget, error) {
	var b models.Budget
	err := s.db.Where("month = ?", month).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Budget{}, ErrNotFound
	}
	if err != nil {
		return models.Budget{}, fmt.Errorf("load budget: %w", err)
	}
	return b, nil
}

func (s *Store) SaveBudget(b *models.Budget) error {
	if b.LimitAmount < 0 {
		return fmt.Errorf("%w: negative budget limit", ErrInvalidRecord)
	}
	var existing models.Budget
	err := s.db.Where("month = ?", b.Month).First(&existing).Error
	switch {
	case err == nil:
		existing.LimitAmount = b.LimitAmount
		*b = existing
		err = s.db.Save(b).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.db.Create(b).Error
	}
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// ---------- notification dedupe ----------

func (s *Store) NoticeAlreadySent(dedupeKey string) (bool, error) {
	var count int64
	err := s.db.Model(&models.SentNotice{}).
		Where("dedupe_key = ?", dedupeKey).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check notice: %w", err)
	}
	return count > 0, nil
}

func (s *Store) MarkNoticeSent(dedupeKey, channel string, at time.Time) error {
	n := models.SentNotice{DedupeKey: dedupeKey, Channel: channel, SentAt: at}
	if err := s.db.Create(&n).Error; err != nil {
		return fmt.Errorf("mark notice sent: %w", err)
	}
	return nil
}

// ---------- audit ----------

func (s *Store) AppendAuditLog(entry *models.AuditLog) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
