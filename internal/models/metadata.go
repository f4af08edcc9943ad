package models

import (
	"github.com/shopspring/decimal"
)

// DateRange is an inclusive span of ISO dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// StatementMetadata is derived from the final transaction list.
type StatementMetadata struct {
	TotalTransactions int       `json:"totalTransactions"`
	TotalCredits      float64   `json:"totalCredits"`
	TotalDebits       float64   `json:"totalDebits"`
	DateRange         DateRange `json:"dateRange"`
	ExtractedBy       string    `json:"extractedBy,omitempty"`
}

// ComputeMetadata derives totals and the date span from txns. Dates are
// compared lexically, which is correct for the 2006-01-02 form.
func ComputeMetadata(txns []BankTransaction) StatementMetadata {
	credits := decimal.Zero
	debits := decimal.Zero
	var rng DateRange

	for _, txn := range txns {
		amt := decimal.NewFromFloat(txn.Amount)
		if txn.Type == Credit {
			credits = credits.Add(amt)
		} else {
			debits = debits.Add(amt)
		}
		if txn.Date == "" {
			continue
		}
		if rng.Start == "" || txn.Date < rng.Start {
			rng.Start = txn.Date
		}
		if rng.End == "" || txn.Date > rng.End {
			rng.End = txn.Date
		}
	}

	return StatementMetadata{
		TotalTransactions: len(txns),
		TotalCredits:      credits.Round(2).InexactFloat64(),
		TotalDebits:       debits.Round(2).InexactFloat64(),
		DateRange:         rng,
	}
}
