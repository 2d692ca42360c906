package paycheck

import (
	"context"

	"github.com/shopspring/decimal"
)

// Paycheck is one computed payroll row: an employee owed a weekly salary
// transfer. Rows with a zero amount or no bank account never leave the store.
type Paycheck struct {
	Locator        string // Opaque reference back to the storage row
	Employee       string
	BankAccount    string
	TotalSales     decimal.Decimal
	PastWeekProfit decimal.Decimal
	Amount         decimal.Decimal
}

// SpendingEntry records one outgoing payment in the spending ledger.
type SpendingEntry struct {
	Employee string // Issuing identity, the application itself for payroll
	Receiver string
	Category string
	Info     string
	Amount   decimal.Decimal
}

// Store reads paycheck rows and appends spending entries.
type Store interface {
	Paychecks(ctx context.Context) ([]Paycheck, error)
	AppendSpending(ctx context.Context, entry SpendingEntry) error
}
