// Package scheduler runs the background cycles on their configured cadences.
// All scheduling stays here, outside the testable core: the cycles are plain
// functions of the current time and can be invoked directly in tests or from
// an admin endpoint.
package scheduler

import (
	"fmt"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/config"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/jobs"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/logging"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New registers the three cycles with their cron expressions. A failed cycle
// is only logged: the next tick retries it, which is safe because every
// cycle is idempotent.
func New(runner *jobs.Runner, cfg config.SchedulerConfig, log *logrus.Logger) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(cfg.RecurrenceSpec, func() {
		report, err := runner.RunRecurrenceCycle(time.Now())
		if err != nil {
			logRetry(log, "recurrence", err)
			return
		}
		log.WithFields(logrus.Fields{
			logging.FieldRunID: report.RunID,
			logging.FieldCount: report.Created,
		}).Debug("recurrence cycle finished")
	}); err != nil {
		return nil, fmt.Errorf("schedule recurrence cycle: %w", err)
	}

	if _, err := c.AddFunc(cfg.BudgetSpec, func() {
		if _, err := runner.RunBudgetCheck(time.Now()); err != nil {
			logRetry(log, "budget", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule budget check: %w", err)
	}

	if _, err := c.AddFunc(cfg.DebtReminderSpec, func() {
		if _, err := runner.RunDebtReminderCheck(time.Now()); err != nil {
			logRetry(log, "debt reminder", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule debt reminder check: %w", err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

func logRetry(log *logrus.Logger, cycle string, err error) {
	entry := log.WithError(err)
	if jobs.IsRetryable(err) {
		entry.Warnf("%s cycle failed, retrying on next tick", cycle)
	} else {
		entry.Errorf("%s cycle failed with a non-retryable error", cycle)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("background scheduler started")
}

// Stop waits for a running cycle to finish, then stops.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("background scheduler stopped")
}
