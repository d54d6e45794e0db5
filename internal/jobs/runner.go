// Package jobs wires the engines to the notification layer as periodic
// background cycles. Every cycle is safe to re-invoke at any cadence: the
// recurrence engine is idempotent and notifications are de-duplicated
// through durable dedupe keys.
package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/config"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/logging"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/notify"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/recurrence"

	"github.com/sirupsen/logrus"
)

// Store is the ledger surface the cycles need beyond the recurrence engine.
type Store interface {
	BudgetForMonth(month string) (models.Budget, error)
	MonthlyExpenseTotal(t time.Time) (int64, error)
	OpenDebtTransactions() ([]models.Transaction, error)
	NoticeAlreadySent(dedupeKey string) (bool, error)
	MarkNoticeSent(dedupeKey, channel string, at time.Time) error
}

type Runner struct {
	engine *recurrence.Engine
	store  Store
	sink   notify.Sink
	log    *logrus.Logger

	defaultLimit   int64
	reminderWindow time.Duration
	debtWindowDays int
}

func NewRunner(engine *recurrence.Engine, store Store, sink notify.Sink, log *logrus.Logger, cfg *config.Config) *Runner {
	return &Runner{
		engine:         engine,
		store:          store,
		sink:           sink,
		log:            log,
		defaultLimit:   cfg.Budget.DefaultLimit,
		reminderWindow: time.Duration(cfg.App.ReminderHorizonDays) * 24 * time.Hour,
		debtWindowDays: cfg.App.DebtWindowDays,
	}
}

// IsRetryable reports whether a cycle error is worth retrying. Validation
// errors are terminal; everything else is treated as transient store I/O,
// which the next scheduled run will retry safely.
func IsRetryable(err error) bool {
	return err != nil && !errors.Is(err, ledger.ErrInvalidRecord)
}

// sendOnce delivers n unless its dedupe key has already been used. An empty
// key always sends.
func (r *Runner) sendOnce(n notify.Notification, now time.Time) error {
	if n.DedupeKey != "" {
		sent, err := r.store.NoticeAlreadySent(n.DedupeKey)
		if err != nil {
			return err
		}
		if sent {
			return nil
		}
	}
	r.sink.Send(n)
	if n.DedupeKey != "" {
		if err := r.store.MarkNoticeSent(n.DedupeKey, n.Channel, now); err != nil {
			return err
		}
	}
	return nil
}

// RunRecurrenceCycle materializes due obligations, then emits the created
// summary, installment completions, and upcoming reminders.
func (r *Runner) RunRecurrenceCycle(now time.Time) (recurrence.Report, error) {
	report, err := r.engine.ProcessDue(now)
	if err != nil {
		return report, fmt.Errorf("recurrence cycle: %w", err)
	}

	rlog := r.log.WithField(logging.FieldRunID, report.RunID)
	if len(report.Failures) > 0 {
		rlog.WithField(logging.FieldCount, len(report.Failures)).
			Warn("some obligations failed this cycle and will be retried")
	}

	if n, ok := notify.RecurringCreatedSummary(report.Created); ok {
		r.sink.Send(n)
	}
	for _, ob := range report.Completed {
		if err := r.sendOnce(notify.InstallmentCompletedNotice(ob), now); err != nil {
			rlog.WithError(err).Warn("installment completion notice not sent")
		}
	}

	upcoming, err := r.engine.UpcomingReminders(now, r.reminderWindow)
	if err != nil {
		return report, fmt.Errorf("recurrence cycle: %w", err)
	}
	for _, ob := range upcoming {
		if err := r.sendOnce(notify.UpcomingObligationNotice(ob), now); err != nil {
			rlog.WithError(err).Warn("upcoming obligation notice not sent")
		}
	}

	return report, nil
}

// RunBudgetCheck compares this month's expenses to its limit and emits
// threshold notices, each at most once per calendar month.
func (r *Runner) RunBudgetCheck(now time.Time) (notify.BudgetStatus, error) {
	month := now.Format("2006-01")

	limit := r.defaultLimit
	b, err := r.store.BudgetForMonth(month)
	switch {
	case err == nil:
		limit = b.LimitAmount
	case !errors.Is(err, ledger.ErrNotFound):
		return notify.BudgetStatus{}, fmt.Errorf("budget check: %w", err)
	}

	spent, err := r.store.MonthlyExpenseTotal(now)
	if err != nil {
		return notify.BudgetStatus{}, fmt.Errorf("budget check: %w", err)
	}

	status := notify.EvaluateBudget(spent, limit)
	for _, n := range notify.BudgetNotices(status, month) {
		if err := r.sendOnce(n, now); err != nil {
			return status, fmt.Errorf("budget check: %w", err)
		}
	}
	return status, nil
}

// RunDebtReminderCheck emits reminders for open debts due within the window,
// once per debt per due date.
func (r *Runner) RunDebtReminderCheck(now time.Time) (int, error) {
	debts, err := r.store.OpenDebtTransactions()
	if err != nil {
		return 0, fmt.Errorf("debt reminder check: %w", err)
	}

	due := notify.DebtsDueWithin(debts, now, r.debtWindowDays)
	for _, tx := range due {
		if err := r.sendOnce(notify.DebtDueNotice(tx), now); err != nil {
			return len(due), fmt.Errorf("debt reminder check: %w", err)
		}
	}
	return len(due), nil
}
