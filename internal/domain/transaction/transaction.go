package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind describes the direction of a money movement as reported by the bank.
type Kind string

const (
	KindDeposit    Kind = "add"
	KindWithdrawal Kind = "remove"
	KindTransfer   Kind = "transfer"
)

// ErrInvalidTimestamp indicates a bank timestamp that does not follow the
// DD.MM.YY-HH:mm wire format.
var ErrInvalidTimestamp = errors.New("invalid bank timestamp")

// Transaction is one observed money movement on a bank account. Transactions
// are ephemeral: fetched fresh on every run and never persisted by the bot.
type Transaction struct {
	ID          string
	Source      string // Account the money came from
	Destination string // Account the money went to
	Initiator   string
	Info        string
	Kind        Kind
	Amount      decimal.Decimal
	OccurredAt  string // Raw bank timestamp, DD.MM.YY-HH:mm
}

// Day returns the calendar day the transaction occurred on.
func (t Transaction) Day() (time.Time, error) {
	return ParseOccurredAt(t.OccurredAt)
}

// ParseOccurredAt reconstructs the calendar day encoded in a bank timestamp.
// The wire format is DD.MM.YY-HH:mm with a two-digit year; the four-digit year
// is rebuilt by prefixing "20". The time-of-day portion is discarded, so the
// result is midnight UTC of the encoded day.
func ParseOccurredAt(raw string) (time.Time, error) {
	datePart, _, _ := strings.Cut(raw, "-")
	parts := strings.Split(datePart, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}
	if len(parts[2]) < 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}

	day, err := time.Parse("2006-01-02", fmt.Sprintf("20%s-%s-%s", parts[2][:2], parts[1], parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}
	return day, nil
}
