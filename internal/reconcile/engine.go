package reconcile

import (
	"github.com/autohof/settlement-bot/internal/domain/obligation"
	"github.com/autohof/settlement-bot/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Reconcile matches settlement transactions to open obligations and computes
// the update set. For each obligation, every transaction whose source equals
// the obligation's counterparty account is summed into a single instruction
// carrying the absolute new cumulative-paid total; obligations with no
// matching transaction produce no instruction at all.
//
// Matching is keyed purely on account identity. If two open obligations share
// a counterparty account, a payment is attributed to each of them; there is no
// invoice or reference code to disambiguate. Callers must pass only unsettled
// obligations and must re-fetch them fresh before every run, otherwise
// already-applied amounts would be counted twice.
//
// The function is pure: no I/O, no side effects, and output order follows the
// obligation input order.
func Reconcile(obligations []obligation.Obligation, txns []transaction.Transaction) []obligation.UpdateInstruction {
	var updates []obligation.UpdateInstruction
	for _, ob := range obligations {
		sum := decimal.Zero
		matched := 0
		for _, tx := range txns {
			if tx.Source != ob.CounterpartyAccount {
				continue
			}
			sum = sum.Add(tx.Amount)
			matched++
		}
		if matched == 0 {
			continue
		}
		updates = append(updates, obligation.UpdateInstruction{
			Locator:        ob.Locator,
			NewAlreadyPaid: ob.AlreadyPaid.Add(sum),
			MatchedCount:   matched,
		})
	}
	return updates
}
