package obligation

import (
	"context"

	"github.com/shopspring/decimal"
)

// Obligation is one ledger row representing money owed to the business: an
// open loan that customers settle through incoming bank transfers. The row is
// owned by the external store; the bot only reads it and proposes a new
// cumulative-paid value.
type Obligation struct {
	// Locator is an opaque reference back to the storage row. It is carried
	// through reconciliation untouched and only interpreted by the store.
	Locator string

	Date                string
	Employee            string
	Customer            string
	CounterpartyAccount string // Account identifier used to match transactions
	StartDate           string
	EndDate             string
	FundingLevel        decimal.Decimal
	Downpayment         decimal.Decimal
	Interest            string
	RemainingPayment    decimal.Decimal
	Profit              decimal.Decimal

	// AlreadyPaid is the cumulative amount settled so far. The engine only
	// ever increases it.
	AlreadyPaid decimal.Decimal

	// Settled is true once the loan is fully paid. Settled obligations are
	// filtered out before they reach the reconciliation engine.
	Settled bool
}

// UpdateInstruction is the reconciliation engine's output for one obligation:
// the absolute new cumulative-paid value to be written back. The store applies
// it as an overwrite, not an increment.
type UpdateInstruction struct {
	Locator        string
	NewAlreadyPaid decimal.Decimal
	MatchedCount   int // Number of transactions summed into the new total
}

// Store reads open obligations and applies update instructions. Implementations
// must apply each instruction independently; a failed write must not affect
// other instructions in the same batch.
type Store interface {
	OpenObligations(ctx context.Context) ([]Obligation, error)
	ApplyUpdate(ctx context.Context, instruction UpdateInstruction) error
}
