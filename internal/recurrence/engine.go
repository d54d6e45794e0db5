// Package recurrence materializes recurring obligations into concrete
// transactions: exactly one per elapsed period, never past an installment
// cap, and safe to re-run at any cadence.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/logging"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrScheduleStuck reports an obligation whose next run date failed to
// advance; committing it would loop forever.
var ErrScheduleStuck = errors.New("recurrence: next run date did not advance")

// Store is the ledger surface the engine needs. Wallet must return
// ledger.ErrWalletNotFound for missing wallets.
type Store interface {
	ActiveObligationsDueBy(now time.Time) ([]models.RecurringObligation, error)
	UpcomingObligations(now, until time.Time) ([]models.RecurringObligation, error)
	CommitObligationRun(ob *models.RecurringObligation, created []models.Transaction) error
	Wallet(id uint) (models.Wallet, error)
}

// Failure records one obligation that could not be processed this run.
type Failure struct {
	ObligationID uint
	Err          error
}

// Report aggregates the outcome of one ProcessDue run. Per-obligation
// failures land here instead of aborting the run; only an unreachable store
// fails the run as a whole.
type Report struct {
	RunID          string
	Created        int                          // transactions materialized across all obligations
	Completed      []models.RecurringObligation // obligations whose cap was reached this run
	SkippedInvalid []uint                       // obligations with inconsistent installment state
	MissingWallets []uint                       // wallet IDs referenced but not found
	Failures       []Failure
}

// Engine drives the catch-up loop. It never mutates wallet rows: balances
// are derived, so inserting the transactions is the whole balance effect.
type Engine struct {
	store Store
	log   *logrus.Logger
}

func NewEngine(store Store, log *logrus.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// ProcessDue materializes every occurrence of every active obligation due by
// now. Each obligation is an independent unit of work: its missed occurrences
// are computed in memory and committed together with the advanced schedule,
// so a retry after any failure can never double-materialize a period.
//
// Calling ProcessDue twice with the same now is a no-op the second time: the
// first run advances every due obligation's next run date past now.
func (e *Engine) ProcessDue(now time.Time) (Report, error) {
	report := Report{RunID: uuid.NewString()}

	due, err := e.store.ActiveObligationsDueBy(now)
	if err != nil {
		return report, fmt.Errorf("recurrence: load due obligations: %w", err)
	}

	for i := range due {
		ob := due[i]
		olog := e.log.WithFields(logrus.Fields{
			logging.FieldRunID:      report.RunID,
			logging.FieldObligation: ob.ID,
		})

		if ob.Capped() && ob.CompletedInstallments > ob.TotalInstallments {
			olog.WithField(logging.FieldCount, ob.CompletedInstallments).
				Warn("completed installments exceed cap, skipping obligation")
			report.SkippedInvalid = append(report.SkippedInvalid, ob.ID)
			continue
		}

		if _, err := e.store.Wallet(ob.WalletID); err != nil {
			if !errors.Is(err, ledger.ErrWalletNotFound) {
				report.Failures = append(report.Failures, Failure{ObligationID: ob.ID, Err: err})
				continue
			}
			// the transactions are still created; balance is derived, so a
			// later reconciliation picks them up once the wallet reappears
			olog.WithField(logging.FieldWallet, ob.WalletID).
				Warn("obligation references a missing wallet")
			report.MissingWallets = append(report.MissingWallets, ob.WalletID)
		}

		created, capReached, err := catchUp(&ob, now)
		if err != nil {
			olog.WithError(err).Error("catch-up failed")
			report.Failures = append(report.Failures, Failure{ObligationID: ob.ID, Err: err})
			continue
		}
		if capReached {
			// terminal: the obligation never fires again, even if its next
			// run date is later edited into the past
			ob.IsActive = false
		}

		if err := e.store.CommitObligationRun(&ob, created); err != nil {
			olog.WithError(err).Error("commit failed, will retry next cycle")
			report.Failures = append(report.Failures, Failure{ObligationID: ob.ID, Err: err})
			continue
		}

		report.Created += len(created)
		if capReached {
			report.Completed = append(report.Completed, ob)
		}
		if len(created) > 0 {
			olog.WithField(logging.FieldCount, len(created)).Info("materialized recurring transactions")
		}
	}

	return report, nil
}

// catchUp computes all occurrences of ob due by now, advancing the schedule
// in memory. Occurrences are dated at the period they belong to, not at now,
// so back-filled history stays accurate.
func catchUp(ob *models.RecurringObligation, now time.Time) ([]models.Transaction, bool, error) {
	var created []models.Transaction

	for !ob.NextRunDate.After(now) {
		if ob.CapReached() {
			break
		}

		created = append(created, models.Transaction{
			WalletID:     ob.WalletID,
			Type:         ob.Type,
			Category:     ob.Category,
			Amount:       ob.Amount,
			Note:         ob.Note,
			OccurredAt:   ob.NextRunDate,
			IsRecurring:  true,
			ObligationID: &ob.ID,
		})
		ob.CompletedInstallments++

		next := ob.Period.Next(ob.NextRunDate)
		if !next.After(ob.NextRunDate) {
			return nil, false, fmt.Errorf("%w: obligation %d period %q", ErrScheduleStuck, ob.ID, ob.Period)
		}
		ob.NextRunDate = next
	}

	return created, ob.CapReached(), nil
}

// UpcomingReminders returns active obligations due in (now, now+horizon],
// upper bound inclusive. Read-only; used to build reminder notifications.
func (e *Engine) UpcomingReminders(now time.Time, horizon time.Duration) ([]models.RecurringObligation, error) {
	obs, err := e.store.UpcomingObligations(now, now.Add(horizon))
	if err != nil {
		return nil, fmt.Errorf("recurrence: upcoming obligations: %w", err)
	}
	return obs, nil
}
