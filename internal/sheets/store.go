// Package sheets implements the spreadsheet-backed ledger store: open loans,
// computed paychecks and the spending ledger all live in one Google Sheets
// document. Untyped rows are parsed into typed records once, at this boundary;
// a malformed row is skipped with a warning, never a crash.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/autohof/settlement-bot/internal/config"
	"github.com/autohof/settlement-bot/internal/domain/obligation"
	"github.com/autohof/settlement-bot/internal/domain/paycheck"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Read ranges. The finance range is deliberately generous; trailing blank rows
// are filtered during parsing.
const (
	financeRange  = "%s!A3:O1000"
	paycheckRange = "%s!F3:J19"
	spendingRange = "%s!A4:F"
)

// Store reads and writes ledger rows through the Google Sheets API.
type Store struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	cfg           config.SpreadsheetConfig
	logger        *slog.Logger
	now           func() time.Time
}

var _ obligation.Store = (*Store)(nil)
var _ paycheck.Store = (*Store)(nil)

// NewStore creates a spreadsheet store authenticated through the configured
// service account credentials.
func NewStore(ctx context.Context, logger *slog.Logger, cfg config.SpreadsheetConfig) (*Store, error) {
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	logger.Info("Connected to spreadsheet store", "spreadsheet_id", cfg.ID)

	return &Store{
		values:        service.Spreadsheets.Values,
		spreadsheetID: cfg.ID,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// OpenObligations reads the finance sheet and returns all loans not yet fully
// settled. Blank filler rows are skipped silently; malformed rows are skipped
// with a warning. Row order is preserved.
func (s *Store) OpenObligations(ctx context.Context) ([]obligation.Obligation, error) {
	readRange := fmt.Sprintf(financeRange, s.cfg.FinanceSheet)
	resp, err := s.values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading finance sheet %q: %w", readRange, err)
	}

	var open []obligation.Obligation
	for i, row := range resp.Values {
		ob, err := parseObligationRow(s.cfg.FinanceSheet, i, row)
		if err != nil {
			if !errors.Is(err, errRowBlank) {
				s.logger.Warn("skipping unparseable finance row",
					"row", financeRowOffset+i, "error", err)
			}
			continue
		}
		if ob.Settled {
			continue
		}
		open = append(open, ob)
	}
	return open, nil
}

// ApplyUpdate overwrites the located cumulative-paid cell with the absolute
// new total. One call per instruction; callers decide how failures of
// individual instructions are handled.
func (s *Store) ApplyUpdate(ctx context.Context, instruction obligation.UpdateInstruction) error {
	body := &sheetsapi.ValueRange{
		Values: [][]interface{}{{instruction.NewAlreadyPaid.String()}},
	}
	_, err := s.values.Update(s.spreadsheetID, instruction.Locator, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("updating cell %q: %w", instruction.Locator, err)
	}
	return nil
}

// Paychecks reads the payroll sheet and returns the rows carrying a positive
// paycheck for an employee with a bank account.
func (s *Store) Paychecks(ctx context.Context) ([]paycheck.Paycheck, error) {
	readRange := fmt.Sprintf(paycheckRange, s.cfg.PaycheckSheet)
	resp, err := s.values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading paycheck sheet %q: %w", readRange, err)
	}

	var due []paycheck.Paycheck
	for i, row := range resp.Values {
		pc, err := parsePaycheckRow(s.cfg.PaycheckSheet, i, row)
		if err != nil {
			if !errors.Is(err, errRowBlank) {
				s.logger.Warn("skipping unparseable paycheck row",
					"row", paycheckRowOffset+i, "error", err)
			}
			continue
		}
		if !pc.Amount.IsPositive() {
			continue
		}
		due = append(due, pc)
	}
	return due, nil
}

// AppendSpending appends one dated spending entry after the last row of the
// spending table.
func (s *Store) AppendSpending(ctx context.Context, entry paycheck.SpendingEntry) error {
	body := &sheetsapi.ValueRange{
		Values: [][]interface{}{{
			s.now().Format("02.01.2006"),
			entry.Employee,
			entry.Receiver,
			entry.Category,
			entry.Info,
			entry.Amount.String(),
		}},
	}
	appendRange := fmt.Sprintf(spendingRange, s.cfg.SpendingSheet)
	_, err := s.values.Append(s.spreadsheetID, appendRange, body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending spending entry to %q: %w", appendRange, err)
	}
	return nil
}
