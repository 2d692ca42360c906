package tasks

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/autohof/settlement-bot/internal/auditlog"
	"github.com/autohof/settlement-bot/internal/domain/obligation"
	"github.com/autohof/settlement-bot/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations of the dependencies

type MockTransactionSource struct {
	mock.Mock
}

func (m *MockTransactionSource) IncomingSettlements(ctx context.Context, account string, reference time.Time) ([]transaction.Transaction, error) {
	args := m.Called(ctx, account, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transaction.Transaction), args.Error(1)
}

type MockObligationStore struct {
	mock.Mock
}

func (m *MockObligationStore) OpenObligations(ctx context.Context) ([]obligation.Obligation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]obligation.Obligation), args.Error(1)
}

func (m *MockObligationStore) ApplyUpdate(ctx context.Context, instruction obligation.UpdateInstruction) error {
	args := m.Called(ctx, instruction)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestRecorder() *auditlog.Recorder {
	return auditlog.NewRecorder(newTestLogger(), "settlement-bot-test", nil)
}

func newRepaymentTask(t *testing.T, source *MockTransactionSource, store *MockObligationStore, dryRun bool) *RepaymentTask {
	t.Helper()
	applier, err := NewUpdateApplier(newTestLogger(), store, 2)
	require.NoError(t, err)
	t.Cleanup(applier.Shutdown)

	return NewRepaymentTask(RepaymentTaskParams{
		Source:       source,
		Store:        store,
		Applier:      applier,
		Audit:        newTestRecorder(),
		Logger:       newTestLogger(),
		Account:      "DE11111111",
		SourceOffset: 2 * time.Hour,
		DryRun:       dryRun,
	})
}

func settlement(source string, amount int64) transaction.Transaction {
	return transaction.Transaction{
		Source:      source,
		Destination: "DE11111111",
		Amount:      decimal.NewFromInt(amount),
	}
}

func TestRepaymentTask_FetchFailureIsFatalToRun(t *testing.T) {
	source := new(MockTransactionSource)
	store := new(MockObligationStore)
	task := newRepaymentTask(t, source, store, false)

	source.On("IncomingSettlements", mock.Anything, "DE11111111", mock.Anything).
		Return(nil, errors.New("unauthorized"))

	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching todays income")

	// Nothing may be read or written after a fetch failure
	store.AssertNotCalled(t, "OpenObligations", mock.Anything)
	store.AssertNotCalled(t, "ApplyUpdate", mock.Anything, mock.Anything)
}

func TestRepaymentTask_NoIncomeShortCircuits(t *testing.T) {
	source := new(MockTransactionSource)
	store := new(MockObligationStore)
	task := newRepaymentTask(t, source, store, false)

	source.On("IncomingSettlements", mock.Anything, "DE11111111", mock.Anything).
		Return([]transaction.Transaction{}, nil)

	err := task.Run(context.Background())
	require.NoError(t, err)

	store.AssertNotCalled(t, "OpenObligations", mock.Anything)
}

func TestRepaymentTask_AppliesUpdates(t *testing.T) {
	source := new(MockTransactionSource)
	store := new(MockObligationStore)
	task := newRepaymentTask(t, source, store, false)

	source.On("IncomingSettlements", mock.Anything, "DE11111111", mock.Anything).
		Return([]transaction.Transaction{
			settlement("DE22222222", 50),
			settlement("DE22222222", 25),
			settlement("DE99999999", 999),
		}, nil)

	store.On("OpenObligations", mock.Anything).Return([]obligation.Obligation{
		{
			Locator:             "Finance!O3",
			CounterpartyAccount: "DE22222222",
			AlreadyPaid:         decimal.NewFromInt(100),
		},
	}, nil)

	store.On("ApplyUpdate", mock.Anything, mock.MatchedBy(func(instr obligation.UpdateInstruction) bool {
		return instr.Locator == "Finance!O3" && instr.NewAlreadyPaid.Equal(decimal.NewFromInt(175))
	})).Return(nil).Once()

	err := task.Run(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRepaymentTask_PartialUpdateFailure(t *testing.T) {
	source := new(MockTransactionSource)
	store := new(MockObligationStore)
	task := newRepaymentTask(t, source, store, false)

	source.On("IncomingSettlements", mock.Anything, "DE11111111", mock.Anything).
		Return([]transaction.Transaction{
			settlement("DE22222222", 50),
			settlement("DE33333333", 75),
		}, nil)

	store.On("OpenObligations", mock.Anything).Return([]obligation.Obligation{
		{Locator: "Finance!O3", CounterpartyAccount: "DE22222222"},
		{Locator: "Finance!O4", CounterpartyAccount: "DE33333333"},
	}, nil)

	store.On("ApplyUpdate", mock.Anything, mock.MatchedBy(func(instr obligation.UpdateInstruction) bool {
		return instr.Locator == "Finance!O3"
	})).Return(errors.New("quota exceeded")).Once()

	// The second update must still be attempted despite the first failing
	store.On("ApplyUpdate", mock.Anything, mock.MatchedBy(func(instr obligation.UpdateInstruction) bool {
		return instr.Locator == "Finance!O4"
	})).Return(nil).Once()

	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 loan updates failed")
	store.AssertExpectations(t)
}

func TestRepaymentTask_DryRunWritesNothing(t *testing.T) {
	source := new(MockTransactionSource)
	store := new(MockObligationStore)
	task := newRepaymentTask(t, source, store, true)

	source.On("IncomingSettlements", mock.Anything, "DE11111111", mock.Anything).
		Return([]transaction.Transaction{settlement("DE22222222", 50)}, nil)

	store.On("OpenObligations", mock.Anything).Return([]obligation.Obligation{
		{Locator: "Finance!O3", CounterpartyAccount: "DE22222222"},
	}, nil)

	err := task.Run(context.Background())
	require.NoError(t, err)

	store.AssertNotCalled(t, "ApplyUpdate", mock.Anything, mock.Anything)
}

func TestRepaymentTask_ReferenceWindowPassedToSource(t *testing.T) {
	source := new(MockTransactionSource)
	store := new(MockObligationStore)
	task := newRepaymentTask(t, source, store, false)
	task.now = func() time.Time { return time.Date(2024, 3, 15, 1, 30, 0, 0, time.UTC) }

	expectedReference := time.Date(2024, 3, 14, 3, 30, 0, 0, time.UTC)
	source.On("IncomingSettlements", mock.Anything, "DE11111111", expectedReference).
		Return([]transaction.Transaction{}, nil)

	require.NoError(t, task.Run(context.Background()))
	source.AssertExpectations(t)
}
