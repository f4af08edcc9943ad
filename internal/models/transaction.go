package models

import "time"

// TransactionType is the direction of money movement on the account.
type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// BankTransaction is a single ledger row as extracted from a statement.
//
// Amount is always the positive side of Deposits/Withdrawals and Type says
// which one it was. Date is normalized to 2006-01-02.
type BankTransaction struct {
	Date        string          `json:"date"`
	Particulars string          `json:"particulars"`
	Mode        string          `json:"mode,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Deposits    float64         `json:"deposits,omitempty"`
	Withdrawals float64         `json:"withdrawals,omitempty"`
	Balance     float64         `json:"balance,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
}

// NewBankTransaction applies the deposit/withdrawal rule. The second return
// value is false when neither side is positive; such rows must not be kept.
func NewBankTransaction(date, particulars string, deposits, withdrawals, balance float64) (BankTransaction, bool) {
	txn := BankTransaction{
		Date:        date,
		Particulars: particulars,
		Deposits:    deposits,
		Withdrawals: withdrawals,
		Balance:     balance,
	}
	switch {
	case deposits > 0:
		txn.Amount = deposits
		txn.Type = Credit
	case withdrawals > 0:
		txn.Amount = withdrawals
		txn.Type = Debit
	default:
		return BankTransaction{}, false
	}
	return txn, true
}

// ParsedTransaction is the flattened cross-bank form handed to consumers.
type ParsedTransaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"` // never negative; sign lives in Type
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Account     string          `json:"account"`
	Merchant    string          `json:"merchant,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Balance     *float64        `json:"balance,omitempty"`
}

// Uncategorized is the category assigned when nothing better is known.
const Uncategorized = "uncategorized"
