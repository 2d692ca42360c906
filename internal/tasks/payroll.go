package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/autohof/settlement-bot/internal/auditlog"
	"github.com/autohof/settlement-bot/internal/domain/paycheck"
)

const (
	payrollCategory = "Paycheck Payment"
	salaryCategory  = "Gehalt"
)

// PayrollTask disburses the weekly paychecks: one outbound transfer per
// computed payroll row, paced to avoid overwhelming the transfer endpoint,
// with each successful transfer recorded as a spending entry.
type PayrollTask struct {
	store       paycheck.Store
	transferer  Transferer
	audit       *auditlog.Recorder
	logger      *slog.Logger
	application string
	fromAccount string
	pace        time.Duration
	dryRun      bool
	now         func() time.Time
}

// PayrollTaskParams bundles the collaborators of a PayrollTask.
type PayrollTaskParams struct {
	Store       paycheck.Store
	Transferer  Transferer
	Audit       *auditlog.Recorder
	Logger      *slog.Logger
	Application string // Identity recorded as the issuer of spendings
	FromAccount string // Account paychecks are disbursed from
	Pace        time.Duration
	DryRun      bool
}

// NewPayrollTask creates the weekly paycheck disbursement task.
func NewPayrollTask(p PayrollTaskParams) *PayrollTask {
	return &PayrollTask{
		store:       p.Store,
		transferer:  p.Transferer,
		audit:       p.Audit,
		logger:      p.Logger,
		application: p.Application,
		fromAccount: p.FromAccount,
		pace:        p.Pace,
		dryRun:      p.DryRun,
		now:         time.Now,
	}
}

// Name implements scheduler.Task.
func (t *PayrollTask) Name() string { return "weekly-paycheck" }

// Run disburses all due paychecks. Disbursements are sequential with a pacing
// delay between them; the failure of one transfer is reported for that row
// alone and never cancels the remaining rows. Spending entries are recorded
// asynchronously but their outcomes are awaited and logged before the run
// finishes.
func (t *PayrollTask) Run(ctx context.Context) error {
	weekEnd := t.now()
	weekStart := weekEnd.AddDate(0, 0, -6)
	t.audit.Record(ctx, auditlog.LevelLog, payrollCategory,
		fmt.Sprintf("selecting paychecks for the week of '%s' through '%s'",
			weekStart.Format("02.01"), weekEnd.Format("02.01")))

	paychecks, err := t.store.Paychecks(ctx)
	if err != nil {
		t.audit.Record(ctx, auditlog.LevelError, payrollCategory,
			fmt.Sprintf("fetching paychecks failed: %v", err))
		return fmt.Errorf("fetching paychecks: %w", err)
	}
	t.audit.Record(ctx, auditlog.LevelLog, payrollCategory,
		fmt.Sprintf("%d paychecks found", len(paychecks)))

	var spendings sync.WaitGroup
	defer spendings.Wait()

	failed := 0
	for i, pc := range paychecks {
		// Pacing between consecutive transfers, not a rate limiter
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.pace):
			}
		}

		memo := fmt.Sprintf("Gehalt %s (%s) - %s", pc.Employee, pc.BankAccount, t.application)

		if t.dryRun {
			t.logger.Info("dry run, skipping paycheck transfer",
				"employee", pc.Employee,
				"bank_account", pc.BankAccount,
				"amount", pc.Amount.String(),
				"memo", memo,
			)
			continue
		}

		if err := t.transferer.Transfer(ctx, t.fromAccount, pc.BankAccount, pc.Amount, memo); err != nil {
			failed++
			t.audit.Record(ctx, auditlog.LevelError, payrollCategory,
				fmt.Sprintf("paycheck transfer to '%s' (%s) failed: %v", pc.Employee, pc.BankAccount, err))
			continue
		}
		t.audit.Record(ctx, auditlog.LevelLog, payrollCategory,
			fmt.Sprintf("paycheck of %s transferred to '%s' (%s)", pc.Amount, pc.Employee, pc.BankAccount))

		entry := paycheck.SpendingEntry{
			Employee: t.application,
			Receiver: pc.Employee,
			Category: salaryCategory,
			Info:     memo,
			Amount:   pc.Amount,
		}
		spendings.Add(1)
		go func() {
			defer spendings.Done()
			if err := t.store.AppendSpending(ctx, entry); err != nil {
				t.audit.Record(ctx, auditlog.LevelError, payrollCategory,
					fmt.Sprintf("recording spending for '%s' failed: %v", entry.Receiver, err))
			}
		}()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d paycheck transfers failed", failed, len(paychecks))
	}
	return nil
}
