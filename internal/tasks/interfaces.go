// Package tasks contains the scheduled units of work: the daily loan
// repayment reconciliation and the weekly payroll disbursement. Each run is an
// independent logical transaction; no state is shared between runs.
package tasks

import (
	"context"
	"time"

	"github.com/autohof/settlement-bot/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// TransactionSource fetches windowed settlement activity for an account.
type TransactionSource interface {
	IncomingSettlements(ctx context.Context, account string, reference time.Time) ([]transaction.Transaction, error)
}

// Transferer initiates outbound transfers.
type Transferer interface {
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal, memo string) error
}
