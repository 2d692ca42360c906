package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autohof/settlement-bot/internal/auditlog"
	"github.com/autohof/settlement-bot/internal/domain/obligation"
	"github.com/autohof/settlement-bot/internal/reconcile"
)

const repaymentCategory = "Loan Repayment"

// RepaymentTask reconciles the day's incoming payments against open loans and
// writes the new cumulative-paid totals back to the ledger store.
type RepaymentTask struct {
	source       TransactionSource
	store        obligation.Store
	applier      *UpdateApplier
	audit        *auditlog.Recorder
	logger       *slog.Logger
	account      string
	sourceOffset time.Duration
	dryRun       bool
	now          func() time.Time
}

// RepaymentTaskParams bundles the collaborators of a RepaymentTask.
type RepaymentTaskParams struct {
	Source       TransactionSource
	Store        obligation.Store
	Applier      *UpdateApplier
	Audit        *auditlog.Recorder
	Logger       *slog.Logger
	Account      string // Account monitored for incoming repayments
	SourceOffset time.Duration
	DryRun       bool
}

// NewRepaymentTask creates the daily loan repayment task.
func NewRepaymentTask(p RepaymentTaskParams) *RepaymentTask {
	return &RepaymentTask{
		source:       p.Source,
		store:        p.Store,
		applier:      p.Applier,
		audit:        p.Audit,
		logger:       p.Logger,
		account:      p.Account,
		sourceOffset: p.SourceOffset,
		dryRun:       p.DryRun,
		now:          time.Now,
	}
}

// Name implements scheduler.Task.
func (t *RepaymentTask) Name() string { return "loan-repayment" }

// Run executes one reconciliation pass. A fetch failure aborts the run before
// anything is written; the next scheduled tick is the retry mechanism. A
// failure of an individual update is reported and does not roll back or block
// the other updates.
func (t *RepaymentTask) Run(ctx context.Context) error {
	t.audit.Record(ctx, auditlog.LevelLog, repaymentCategory, "selecting todays income from the payment account")

	reference := reconcile.Reference(t.now(), t.sourceOffset)
	income, err := t.source.IncomingSettlements(ctx, t.account, reference)
	if err != nil {
		t.audit.Record(ctx, auditlog.LevelError, repaymentCategory,
			fmt.Sprintf("fetching todays income failed: %v", err))
		return fmt.Errorf("fetching todays income: %w", err)
	}
	t.audit.Record(ctx, auditlog.LevelInformation, repaymentCategory,
		fmt.Sprintf("received %d payments from our customers", len(income)))

	// No settlement activity: nothing to update, skip all further I/O
	if len(income) == 0 {
		return nil
	}

	t.audit.Record(ctx, auditlog.LevelLog, repaymentCategory, "selecting open loans")
	openLoans, err := t.store.OpenObligations(ctx)
	if err != nil {
		t.audit.Record(ctx, auditlog.LevelError, repaymentCategory,
			fmt.Sprintf("fetching open loans failed: %v", err))
		return fmt.Errorf("fetching open loans: %w", err)
	}
	t.audit.Record(ctx, auditlog.LevelInformation, repaymentCategory,
		fmt.Sprintf("received %d open loans from our customers", len(openLoans)))

	if len(openLoans) == 0 {
		return nil
	}

	updates := reconcile.Reconcile(openLoans, income)
	t.audit.Record(ctx, auditlog.LevelInformation, repaymentCategory,
		fmt.Sprintf("today %d loans have received a payment", len(updates)))

	if len(updates) == 0 {
		return nil
	}

	if t.dryRun {
		for _, update := range updates {
			t.logger.Info("dry run, skipping loan update",
				"locator", update.Locator,
				"new_already_paid", update.NewAlreadyPaid.String(),
				"matched_transactions", update.MatchedCount,
			)
		}
		return nil
	}

	failed := 0
	for _, result := range t.applier.Apply(ctx, updates) {
		if result.Err != nil {
			failed++
			t.audit.Record(ctx, auditlog.LevelError, repaymentCategory,
				fmt.Sprintf("updating loan '%s' failed: %v", result.Instruction.Locator, result.Err))
			continue
		}
		t.audit.Record(ctx, auditlog.LevelLog, repaymentCategory,
			fmt.Sprintf("updated loan '%s' to %s already paid",
				result.Instruction.Locator, result.Instruction.NewAlreadyPaid))
	}
	t.audit.Record(ctx, auditlog.LevelInformation, repaymentCategory, "processing done")

	if failed > 0 {
		return fmt.Errorf("%d of %d loan updates failed", failed, len(updates))
	}
	return nil
}
