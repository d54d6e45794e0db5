// Package notify decides which notifications to emit. The functions here
// are pure: delivery goes through a Sink, and de-duplication across runs is
// the caller's concern (keyed by each notification's DedupeKey).
package notify

import (
	"fmt"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/money"

	"github.com/shopspring/decimal"
)

// Notification channels.
const (
	ChannelRecurring = "recurring"
	ChannelBudget    = "budget"
	ChannelDebt      = "debt"
)

// Budget thresholds, in percent of the monthly limit.
const (
	WarnThreshold  = 80
	AlertThreshold = 100
)

// BudgetStatus is the outcome of comparing month-to-date expenses against
// the monthly limit. Both flags may be set in the same run.
type BudgetStatus struct {
	Spent       int64
	Limit       int64
	Percent     decimal.Decimal
	ShouldWarn  bool // spent >= 80% of limit
	ShouldAlert bool // spent >= 100% of limit
}

// EvaluateBudget computes the budget position. A limit of zero disables the
// check entirely. The threshold comparisons use exact integer arithmetic;
// Percent is informational, rounded to two decimal places.
func EvaluateBudget(spent, limit int64) BudgetStatus {
	status := BudgetStatus{Spent: spent, Limit: limit, Percent: decimal.Zero}
	if limit <= 0 {
		return status
	}
	status.Percent = decimal.NewFromInt(spent).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(limit), 2)
	status.ShouldWarn = spent*100 >= limit*WarnThreshold
	status.ShouldAlert = spent*100 >= limit*AlertThreshold
	return status
}

// BudgetNotices converts a status into zero, one or two notifications for
// the given month ("2006-01"). Dedupe keys carry the month and threshold, so
// a durable dedupe layer fires each at most once per calendar month.
func BudgetNotices(status BudgetStatus, month string) []Notification {
	var notices []Notification
	if status.ShouldWarn {
		notices = append(notices, Notification{
			Channel: ChannelBudget,
			Title:   "Budget warning",
			Body: fmt.Sprintf("You have spent %s of your %s monthly budget (%s%%)",
				money.Format(status.Spent), money.Format(status.Limit), status.Percent),
			DedupeKey: fmt.Sprintf("budget:%s:%d", month, WarnThreshold),
		})
	}
	if status.ShouldAlert {
		notices = append(notices, Notification{
			Channel: ChannelBudget,
			Title:   "Budget exceeded",
			Body: fmt.Sprintf("Spending reached %s, over your %s monthly budget",
				money.Format(status.Spent), money.Format(status.Limit)),
			DedupeKey: fmt.Sprintf("budget:%s:%d", month, AlertThreshold),
		})
	}
	return notices
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DebtsDueWithin selects open debts whose due date falls inside
// [today, today+windowDays], comparing calendar dates with the time of day
// stripped. Debts without a due date are never selected.
func DebtsDueWithin(debts []models.Transaction, today time.Time, windowDays int) []models.Transaction {
	from := midnight(today)
	to := from.AddDate(0, 0, windowDays)

	var due []models.Transaction
	for i := range debts {
		if debts[i].DueDate == nil {
			continue
		}
		d := midnight(*debts[i].DueDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		due = append(due, debts[i])
	}
	return due
}

// DebtDueNotice builds the reminder for one open debt position.
func DebtDueNotice(tx models.Transaction) Notification {
	direction := "you owe"
	if tx.Category == models.CategoryLending {
		direction = "owed to you"
	}
	return Notification{
		Channel: ChannelDebt,
		Title:   "Debt due soon",
		Body: fmt.Sprintf("%s₫ (%s) is due on %s",
			money.Format(tx.Amount), direction, tx.DueDate.Format("2006-01-02")),
		DedupeKey: fmt.Sprintf("debt:%d:%s", tx.ID, tx.DueDate.Format("2006-01-02")),
	}
}

// RecurringCreatedSummary announces how many transactions a recurrence cycle
// materialized. Nothing is emitted for an empty cycle.
func RecurringCreatedSummary(count int) (Notification, bool) {
	if count <= 0 {
		return Notification{}, false
	}
	return Notification{
		Channel:   ChannelRecurring,
		Title:     "Recurring transactions added",
		Body:      fmt.Sprintf("%d recurring transaction(s) were added to your ledger", count),
		DedupeKey: "", // one-shot per cycle, no cross-run dedupe
	}, true
}

// InstallmentCompletedNotice announces that an obligation just reached its
// installment cap.
func InstallmentCompletedNotice(ob models.RecurringObligation) Notification {
	return Notification{
		Channel: ChannelRecurring,
		Title:   "Installment plan completed",
		Body: fmt.Sprintf("%s: all %d installments of %s₫ are paid",
			ob.Note, ob.TotalInstallments, money.Format(ob.Amount)),
		DedupeKey: fmt.Sprintf("obligation-complete:%d", ob.ID),
	}
}

// UpcomingObligationNotice reminds about an obligation due within the
// reminder horizon, including installment progress when capped.
func UpcomingObligationNotice(ob models.RecurringObligation) Notification {
	body := fmt.Sprintf("%s of %s₫ is due on %s",
		ob.Category, money.Format(ob.Amount), ob.NextRunDate.Format("2006-01-02"))
	if ob.Capped() {
		body += fmt.Sprintf(" (installment %d/%d)", ob.CompletedInstallments+1, ob.TotalInstallments)
	}
	return Notification{
		Channel:   ChannelRecurring,
		Title:     "Upcoming recurring transaction",
		Body:      body,
		DedupeKey: fmt.Sprintf("obligation:%d:%s", ob.ID, ob.NextRunDate.Format("2006-01-02")),
	}
}
