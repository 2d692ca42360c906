package sheets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/autohof/settlement-bot/internal/domain/obligation"
	"github.com/autohof/settlement-bot/internal/domain/paycheck"
	"github.com/shopspring/decimal"
)

// First data row of each sheet; the rows above hold headers.
const (
	financeRowOffset  = 3
	paycheckRowOffset = 3
)

// Column counts each row type must carry to be parseable.
const (
	financeRowColumns  = 15 // A through O
	paycheckRowColumns = 5  // F through J
)

var (
	errRowBlank     = errors.New("row is blank")
	errRowTooShort  = errors.New("row has too few columns")
	errEmptyAmount  = errors.New("empty currency cell")
	errInvalidCents = errors.New("unparseable currency cell")
)

// ParseCurrency converts a spreadsheet currency cell like "1.234.567 €" into a
// decimal. The currency symbol and thousands separators are stripped and the
// value is truncated at the decimal comma, matching how the sheet formats
// whole-unit amounts.
func ParseCurrency(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, errEmptyAmount
	}

	intPart, _, _ := strings.Cut(trimmed, ",")
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', '€', ' ', ' ':
			return -1
		}
		return r
	}, intPart)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", errInvalidCents, raw)
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", errInvalidCents, raw)
	}
	return value, nil
}

// cellString reads a cell from an untyped spreadsheet row.
func cellString(row []interface{}, index int) string {
	if index >= len(row) {
		return ""
	}
	s, _ := row[index].(string)
	return s
}

// parseObligationRow converts one untyped finance sheet row into a typed
// obligation. Rows that are effectively blank report errRowBlank; rows that
// are present but malformed report what failed so callers can warn and skip.
func parseObligationRow(sheet string, index int, row []interface{}) (obligation.Obligation, error) {
	if len(row) == 0 || cellString(row, 2) == "" {
		return obligation.Obligation{}, errRowBlank
	}
	if len(row) < financeRowColumns {
		return obligation.Obligation{}, fmt.Errorf("%w: got %d, need %d", errRowTooShort, len(row), financeRowColumns)
	}

	fundingLevel, err := ParseCurrency(cellString(row, 8))
	if err != nil {
		return obligation.Obligation{}, fmt.Errorf("funding level: %w", err)
	}
	downpayment, err := ParseCurrency(cellString(row, 9))
	if err != nil {
		return obligation.Obligation{}, fmt.Errorf("downpayment: %w", err)
	}
	remainingPayment, err := ParseCurrency(cellString(row, 12))
	if err != nil {
		return obligation.Obligation{}, fmt.Errorf("remaining payment: %w", err)
	}
	profit, err := ParseCurrency(cellString(row, 13))
	if err != nil {
		return obligation.Obligation{}, fmt.Errorf("profit: %w", err)
	}
	alreadyPaid, err := ParseCurrency(cellString(row, 14))
	if err != nil {
		return obligation.Obligation{}, fmt.Errorf("already paid: %w", err)
	}

	return obligation.Obligation{
		// The locator addresses the single cell the update instruction will
		// overwrite: the cumulative-paid column of this row.
		Locator:             fmt.Sprintf("%s!O%d", sheet, financeRowOffset+index),
		Settled:             cellString(row, 1) == "TRUE",
		Date:                cellString(row, 2),
		Employee:            cellString(row, 3),
		Customer:            cellString(row, 4),
		CounterpartyAccount: cellString(row, 5),
		StartDate:           cellString(row, 6),
		EndDate:             cellString(row, 7),
		FundingLevel:        fundingLevel,
		Downpayment:         downpayment,
		Interest:            cellString(row, 11),
		RemainingPayment:    remainingPayment,
		Profit:              profit,
		AlreadyPaid:         alreadyPaid,
	}, nil
}

// parsePaycheckRow converts one untyped payroll sheet row into a typed
// paycheck. Rows without a bank account are blank filler; rows with a zero or
// negative paycheck are valid but carry nothing to disburse.
func parsePaycheckRow(sheet string, index int, row []interface{}) (paycheck.Paycheck, error) {
	if len(row) == 0 || cellString(row, 1) == "" {
		return paycheck.Paycheck{}, errRowBlank
	}
	if len(row) < paycheckRowColumns {
		return paycheck.Paycheck{}, fmt.Errorf("%w: got %d, need %d", errRowTooShort, len(row), paycheckRowColumns)
	}

	totalSales, err := ParseCurrency(cellString(row, 2))
	if err != nil {
		return paycheck.Paycheck{}, fmt.Errorf("total sales: %w", err)
	}
	pastWeekProfit, err := ParseCurrency(cellString(row, 3))
	if err != nil {
		return paycheck.Paycheck{}, fmt.Errorf("past week profit: %w", err)
	}
	amount, err := ParseCurrency(cellString(row, 4))
	if err != nil {
		return paycheck.Paycheck{}, fmt.Errorf("paycheck: %w", err)
	}

	return paycheck.Paycheck{
		Locator:        fmt.Sprintf("%s!F%d:J%d", sheet, paycheckRowOffset+index, paycheckRowOffset+index),
		Employee:       cellString(row, 0),
		BankAccount:    cellString(row, 1),
		TotalSales:     totalSales,
		PastWeekProfit: pastWeekProfit,
		Amount:         amount,
	}, nil
}
