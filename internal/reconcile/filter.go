// Package reconcile contains the pure core of the bot: selecting the
// transactions that count as settlement activity and matching them against
// open obligations. Nothing in this package performs I/O.
package reconcile

import (
	"time"

	"github.com/autohof/settlement-bot/internal/domain/transaction"
)

// Reference computes the reference instant for the settlement window: the
// current instant shifted by the source system's clock offset, rolled back one
// day. Transactions on the resulting calendar day or later are "today's
// activity" from the source's point of view.
func Reference(now time.Time, sourceOffset time.Duration) time.Time {
	return now.UTC().Add(sourceOffset).AddDate(0, 0, -1)
}

// Incoming selects the transactions that count as settlement activity for the
// given account: destination must equal the account, and the transaction's
// calendar day must be the reference's day or later. The later-than-reference
// case deliberately tolerates clock skew between the scheduler and the source;
// the window is "same day or later", not a fixed 24-hour span.
//
// A transaction whose timestamp fails to parse is excluded, never fatal.
// Input order is preserved.
func Incoming(reference time.Time, account string, txns []transaction.Transaction) []transaction.Transaction {
	var matched []transaction.Transaction
	for _, tx := range txns {
		if tx.Destination != account {
			continue
		}
		day, err := tx.Day()
		if err != nil {
			continue
		}
		if sameDay(day, reference) || day.After(reference) {
			matched = append(matched, tx)
		}
	}
	return matched
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
