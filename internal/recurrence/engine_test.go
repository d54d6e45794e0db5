package recurrence

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	obligations map[uint]models.RecurringObligation
	wallets     map[uint]models.Wallet
	txns        []models.Transaction

	failCommitFor map[uint]error // obligation ID -> error to return
	commits       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		obligations:   map[uint]models.RecurringObligation{},
		wallets:       map[uint]models.Wallet{},
		failCommitFor: map[uint]error{},
	}
}

func (f *fakeStore) ActiveObligationsDueBy(now time.Time) ([]models.RecurringObligation, error) {
	var due []models.RecurringObligation
	for _, ob := range f.obligations {
		if ob.IsActive && !ob.NextRunDate.After(now) {
			due = append(due, ob)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextRunDate.Equal(due[j].NextRunDate) {
			return due[i].NextRunDate.Before(due[j].NextRunDate)
		}
		return due[i].ID < due[j].ID
	})
	return due, nil
}

func (f *fakeStore) UpcomingObligations(now, until time.Time) ([]models.RecurringObligation, error) {
	var obs []models.RecurringObligation
	for _, ob := range f.obligations {
		if ob.IsActive && ob.NextRunDate.After(now) && !ob.NextRunDate.After(until) {
			obs = append(obs, ob)
		}
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].ID < obs[j].ID })
	return obs, nil
}

func (f *fakeStore) CommitObligationRun(ob *models.RecurringObligation, created []models.Transaction) error {
	if err, ok := f.failCommitFor[ob.ID]; ok {
		return err
	}
	f.txns = append(f.txns, created...)
	f.obligations[ob.ID] = *ob
	f.commits++
	return nil
}

func (f *fakeStore) Wallet(id uint) (models.Wallet, error) {
	w, ok := f.wallets[id]
	if !ok {
		return models.Wallet{}, ledger.ErrWalletNotFound
	}
	return w, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProcessDueCatchesUpMissedMonths(t *testing.T) {
	store := newFakeStore()
	store.wallets[1] = models.Wallet{ID: 1, Name: "Cash"}
	store.obligations[10] = models.RecurringObligation{
		ID:          10,
		WalletID:    1,
		Type:        models.TypeExpense,
		Category:    "rent",
		Amount:      5_000_000,
		Period:      models.PeriodMonthly,
		NextRunDate: date(2024, time.January, 1),
		IsActive:    true,
	}

	engine := NewEngine(store, quietLogger())
	report, err := engine.ProcessDue(date(2024, time.April, 15))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Created)
	assert.Empty(t, report.Failures)
	assert.Empty(t, report.Completed)

	require.Len(t, store.txns, 4)
	wantDates := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.February, 1),
		date(2024, time.March, 1),
		date(2024, time.April, 1),
	}
	for i, tx := range store.txns {
		assert.True(t, tx.OccurredAt.Equal(wantDates[i]), "occurrence %d dated %s, want %s", i, tx.OccurredAt, wantDates[i])
		assert.True(t, tx.IsRecurring)
		assert.Equal(t, models.TypeExpense, tx.Type)
		assert.Equal(t, int64(5_000_000), tx.Amount)
		require.NotNil(t, tx.ObligationID)
		assert.Equal(t, uint(10), *tx.ObligationID)
	}

	ob := store.obligations[10]
	assert.True(t, ob.NextRunDate.Equal(date(2024, time.May, 1)))
	assert.Equal(t, 4, ob.CompletedInstallments)
	assert.True(t, ob.IsActive)
}

func TestProcessDueIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.wallets[1] = models.Wallet{ID: 1, Name: "Cash"}
	store.obligations[1] = models.RecurringObligation{
		ID:          1,
		WalletID:    1,
		Type:        models.TypeIncome,
		Category:    "salary",
		Amount:      12_000_000,
		Period:      models.PeriodWeekly,
		NextRunDate: date(2024, time.June, 3),
		IsActive:    true,
	}

	engine := NewEngine(store, quietLogger())
	now := date(2024, time.June, 20)

	first, err := engine.ProcessDue(now)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created) // Jun 3, 10, 17

	second, err := engine.ProcessDue(now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, store.txns, 3)
}

func TestProcessDueHonorsInstallmentCap(t *testing.T) {
	store := newFakeStore()
	store.wallets[1] = models.Wallet{ID: 1, Name: "Cash"}
	store.obligations[5] = models.RecurringObligation{
		ID:                    5,
		WalletID:              1,
		Type:                  models.TypeExpense,
		Category:              "installment",
		Amount:                2_500_000,
		Period:                models.PeriodMonthly,
		NextRunDate:           date(2024, time.March, 1),
		IsActive:              true,
		LoanSource:            models.LoanSourceBank,
		TotalInstallments:     3,
		CompletedInstallments: 2,
	}

	engine := NewEngine(store, quietLogger())

	// several months overdue, but only one installment remains
	report, err := engine.ProcessDue(date(2024, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Completed, 1)
	assert.Equal(t, uint(5), report.Completed[0].ID)

	ob := store.obligations[5]
	assert.Equal(t, 3, ob.CompletedInstallments)
	assert.False(t, ob.IsActive)

	// reactivating with a past next run date must not fire again
	ob.IsActive = true
	ob.NextRunDate = date(2024, time.April, 1)
	store.obligations[5] = ob

	report, err = engine.ProcessDue(date(2024, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Len(t, store.txns, 1)
	assert.False(t, store.obligations[5].IsActive)
}

func TestProcessDueSkipsInconsistentObligation(t *testing.T) {
	store := newFakeStore()
	store.wallets[1] = models.Wallet{ID: 1, Name: "Cash"}
	store.obligations[2] = models.RecurringObligation{
		ID:                    2,
		WalletID:              1,
		Type:                  models.TypeExpense,
		Category:              "broken",
		Amount:                1000,
		Period:                models.PeriodDaily,
		NextRunDate:           date(2024, time.January, 1),
		IsActive:              true,
		TotalInstallments:     2,
		CompletedInstallments: 5,
	}

	engine := NewEngine(store, quietLogger())
	report, err := engine.ProcessDue(date(2024, time.January, 10))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Created)
	assert.Equal(t, []uint{2}, report.SkippedInvalid)
	assert.Empty(t, store.txns)
}

func TestProcessDueIsolatesPerObligationFailures(t *testing.T) {
	store := newFakeStore()
	store.wallets[1] = models.Wallet{ID: 1, Name: "Cash"}
	for id := uint(1); id <= 3; id++ {
		store.obligations[id] = models.RecurringObligation{
			ID:          id,
			WalletID:    1,
			Type:        models.TypeExpense,
			Category:    "bills",
			Amount:      100_000,
			Period:      models.PeriodDaily,
			NextRunDate: date(2024, time.May, 1),
			IsActive:    true,
		}
	}
	commitErr := errors.New("disk full")
	store.failCommitFor[2] = commitErr

	engine := NewEngine(store, quietLogger())
	report, err := engine.ProcessDue(date(2024, time.May, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, uint(2), report.Failures[0].ObligationID)
	assert.ErrorIs(t, report.Failures[0].Err, commitErr)

	// the failed obligation kept its old schedule, so a retry catches it up
	assert.True(t, store.obligations[2].NextRunDate.Equal(date(2024, time.May, 1)))

	store.failCommitFor = map[uint]error{}
	report, err = engine.ProcessDue(date(2024, time.May, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Len(t, store.txns, 3)
}

func TestProcessDueMaterializesDespiteMissingWallet(t *testing.T) {
	store := newFakeStore()
	store.obligations[9] = models.RecurringObligation{
		ID:          9,
		WalletID:    42, // no such wallet
		Type:        models.TypeExpense,
		Category:    "subscription",
		Amount:      99_000,
		Period:      models.PeriodMonthly,
		NextRunDate: date(2024, time.August, 1),
		IsActive:    true,
	}

	engine := NewEngine(store, quietLogger())
	report, err := engine.ProcessDue(date(2024, time.August, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, []uint{42}, report.MissingWallets)
	assert.Empty(t, report.Failures)
	require.Len(t, store.txns, 1)
}

func TestUpcomingRemindersBoundary(t *testing.T) {
	now := date(2024, time.September, 10)
	horizon := 72 * time.Hour

	store := newFakeStore()
	store.obligations[1] = models.RecurringObligation{
		ID: 1, WalletID: 1, Type: models.TypeExpense, Category: "rent",
		Amount: 1, Period: models.PeriodMonthly, IsActive: true,
		NextRunDate: now.Add(72 * time.Hour), // exactly on the boundary
	}
	store.obligations[2] = models.RecurringObligation{
		ID: 2, WalletID: 1, Type: models.TypeExpense, Category: "rent",
		Amount: 1, Period: models.PeriodMonthly, IsActive: true,
		NextRunDate: now.Add(72*time.Hour + time.Millisecond), // just past it
	}
	store.obligations[3] = models.RecurringObligation{
		ID: 3, WalletID: 1, Type: models.TypeExpense, Category: "rent",
		Amount: 1, Period: models.PeriodMonthly, IsActive: true,
		NextRunDate: now, // already due, not "upcoming"
	}

	engine := NewEngine(store, quietLogger())
	obs, err := engine.UpcomingReminders(now, horizon)
	require.NoError(t, err)

	require.Len(t, obs, 1)
	assert.Equal(t, uint(1), obs[0].ID)
}
