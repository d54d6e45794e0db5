package notify

import (
	"testing"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBudgetThresholds(t *testing.T) {
	tests := []struct {
		name        string
		spent       int64
		limit       int64
		shouldWarn  bool
		shouldAlert bool
	}{
		{"Exactly 80 percent", 800_000, 1_000_000, true, false},
		{"Just under 80 percent", 799_999, 1_000_000, false, false},
		{"Exactly at limit", 1_000_000, 1_000_000, true, true},
		{"Over limit", 1_200_000, 1_000_000, true, true},
		{"Nothing spent", 0, 1_000_000, false, false},
		{"No limit configured", 5_000_000, 0, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status := EvaluateBudget(tc.spent, tc.limit)
			assert.Equal(t, tc.shouldWarn, status.ShouldWarn)
			assert.Equal(t, tc.shouldAlert, status.ShouldAlert)
		})
	}
}

func TestEvaluateBudgetPercent(t *testing.T) {
	status := EvaluateBudget(799_999, 1_000_000)
	assert.Equal(t, "80", status.Percent.String()) // 79.9999 rounds to 80.00, flags stay exact
	assert.False(t, status.ShouldWarn)

	status = EvaluateBudget(500_000, 1_000_000)
	assert.Equal(t, "50", status.Percent.String())
}

func TestBudgetNoticesBothThresholdsSameRun(t *testing.T) {
	status := EvaluateBudget(1_100_000, 1_000_000)
	notices := BudgetNotices(status, "2024-07")

	require.Len(t, notices, 2)
	assert.Equal(t, "budget:2024-07:80", notices[0].DedupeKey)
	assert.Equal(t, "budget:2024-07:100", notices[1].DedupeKey)
	for _, n := range notices {
		assert.Equal(t, ChannelBudget, n.Channel)
	}
}

func TestBudgetNoticesNoneBelowWarn(t *testing.T) {
	notices := BudgetNotices(EvaluateBudget(100_000, 1_000_000), "2024-07")
	assert.Empty(t, notices)
}

func TestDebtsDueWithinWindow(t *testing.T) {
	today := time.Date(2024, time.May, 10, 15, 30, 0, 0, time.UTC)
	mk := func(id uint, due time.Time) models.Transaction {
		return models.Transaction{
			ID:       id,
			Category: models.CategoryLending,
			DueDate:  &due,
		}
	}

	debts := []models.Transaction{
		mk(1, time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)),  // today
		mk(2, time.Date(2024, time.May, 13, 23, 0, 0, 0, time.UTC)), // last day of window, late in the day
		mk(3, time.Date(2024, time.May, 14, 0, 0, 0, 0, time.UTC)),  // one day past
		mk(4, time.Date(2024, time.May, 9, 0, 0, 0, 0, time.UTC)),   // already overdue
		{ID: 5, Category: models.CategoryBorrowing},                 // no due date
	}

	due := DebtsDueWithin(debts, today, 3)
	require.Len(t, due, 2)
	assert.Equal(t, uint(1), due[0].ID)
	assert.Equal(t, uint(2), due[1].ID)
}

func TestRecurringCreatedSummary(t *testing.T) {
	_, ok := RecurringCreatedSummary(0)
	assert.False(t, ok)

	n, ok := RecurringCreatedSummary(3)
	require.True(t, ok)
	assert.Equal(t, ChannelRecurring, n.Channel)
	assert.Contains(t, n.Body, "3")
}

func TestInstallmentCompletedNotice(t *testing.T) {
	ob := models.RecurringObligation{
		ID:                    4,
		Note:                  "Motorbike loan",
		Amount:                2_500_000,
		TotalInstallments:     12,
		CompletedInstallments: 12,
	}
	n := InstallmentCompletedNotice(ob)
	assert.Equal(t, "obligation-complete:4", n.DedupeKey)
	assert.Contains(t, n.Body, "12 installments")
	assert.Contains(t, n.Body, "2.500.000")
}

func TestUpcomingObligationNoticeProgress(t *testing.T) {
	ob := models.RecurringObligation{
		ID:                    9,
		Category:              "installment",
		Amount:                1_000_000,
		NextRunDate:           time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		TotalInstallments:     6,
		CompletedInstallments: 2,
	}
	n := UpcomingObligationNotice(ob)
	assert.Contains(t, n.Body, "installment 3/6")
	assert.Equal(t, "obligation:9:2024-10-01", n.DedupeKey)
}
