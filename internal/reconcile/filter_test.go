package reconcile

import (
	"testing"
	"time"

	"github.com/autohof/settlement-bot/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monitoredAccount = "DE11111111"

func incomingTx(id, source, occurredAt string) transaction.Transaction {
	return transaction.Transaction{
		ID:          id,
		Source:      source,
		Destination: monitoredAccount,
		Kind:        transaction.KindTransfer,
		Amount:      decimal.NewFromInt(100),
		OccurredAt:  occurredAt,
	}
}

func TestReference(t *testing.T) {
	now := time.Date(2024, 3, 15, 1, 30, 0, 0, time.UTC)

	// Source clock runs two hours ahead: 01:30 UTC is 03:30 there, so the
	// most recently completed day from the source's view is the 14th.
	ref := Reference(now, 2*time.Hour)
	assert.Equal(t, time.Date(2024, 3, 14, 3, 30, 0, 0, time.UTC), ref)

	// Shortly before the source's midnight the reference still lands on the
	// previous day's date.
	ref = Reference(time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC), 2*time.Hour)
	assert.Equal(t, time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC), ref)
}

func TestIncoming_DestinationFilter(t *testing.T) {
	reference := time.Date(2024, 3, 14, 3, 30, 0, 0, time.UTC)

	other := incomingTx("t1", "DE22222222", "14.03.24-12:00")
	other.Destination = "DE99999999"

	// Wrong destination is excluded regardless of timestamp
	got := Incoming(reference, monitoredAccount, []transaction.Transaction{other})
	assert.Empty(t, got)
}

func TestIncoming_DateWindow(t *testing.T) {
	reference := time.Date(2024, 3, 14, 3, 30, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		occurredAt string
		included   bool
	}{
		{"SameDay", "14.03.24-00:15", true},
		{"SameDayEvening", "14.03.24-23:59", true},
		{"NextDay", "15.03.24-00:01", true},
		{"FarFuture", "20.03.24-12:00", true},
		{"DayBefore", "13.03.24-23:59", false},
		{"FarPast", "01.01.24-12:00", false},
		{"MalformedDate", "not-a-date", false},
		{"Empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Incoming(reference, monitoredAccount, []transaction.Transaction{
				incomingTx("t1", "DE22222222", tc.occurredAt),
			})
			if tc.included {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestIncoming_PreservesOrder(t *testing.T) {
	reference := time.Date(2024, 3, 14, 3, 30, 0, 0, time.UTC)

	txns := []transaction.Transaction{
		incomingTx("first", "DE22222222", "14.03.24-08:00"),
		incomingTx("skipped", "DE22222222", "10.03.24-08:00"),
		incomingTx("second", "DE33333333", "15.03.24-08:00"),
		incomingTx("third", "DE22222222", "14.03.24-20:00"),
	}

	got := Incoming(reference, monitoredAccount, txns)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, "third", got[2].ID)
}

func TestIncoming_EmptyInput(t *testing.T) {
	reference := time.Date(2024, 3, 14, 3, 30, 0, 0, time.UTC)
	assert.Empty(t, Incoming(reference, monitoredAccount, nil))
}
