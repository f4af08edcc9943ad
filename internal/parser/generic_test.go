package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func TestGenericStrategies(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		strategy string
		want     []models.BankTransaction
	}{
		{
			name: "standard columns with signed amounts",
			content: "Date,Description,Amount\n" +
				"01/01/2024,Coffee,-4.50\n" +
				"02/01/2024,Refund,10.00\n" +
				"Total,,5.50\n",
			strategy: StrategyStandardColumns,
			want: []models.BankTransaction{
				{Date: "2024-01-01", Particulars: "Coffee", Withdrawals: 4.5, Type: models.Debit, Amount: 4.5},
				{Date: "2024-01-02", Particulars: "Refund", Deposits: 10, Type: models.Credit, Amount: 10},
			},
		},
		{
			name: "standard columns with a type column",
			content: "Posting Date,Details,Amount,Type,Reference\n" +
				"03/01/2024,Shop,20.00,DR,R1\n" +
				"04/01/2024,Interest,1.25,CR,R2\n",
			strategy: StrategyStandardColumns,
			want: []models.BankTransaction{
				{Date: "2024-01-03", Particulars: "Shop", Reference: "R1", Withdrawals: 20, Type: models.Debit, Amount: 20},
				{Date: "2024-01-04", Particulars: "Interest", Reference: "R2", Deposits: 1.25, Type: models.Credit, Amount: 1.25},
			},
		},
		{
			name: "labeled columns below a preamble",
			content: "Account statement\n" +
				"Customer: Someone\n" +
				"Txn Date,Narration,Withdrawals,Deposits,Balance\n" +
				"05/01/2024,ATM,500.00,,1500.00\n" +
				"06/01/2024,Salary,,2000.00,3500.00\n",
			strategy: StrategyLabeledColumns,
			want: []models.BankTransaction{
				{Date: "2024-01-05", Particulars: "ATM", Withdrawals: 500, Balance: 1500, Type: models.Debit, Amount: 500},
				{Date: "2024-01-06", Particulars: "Salary", Deposits: 2000, Balance: 3500, Type: models.Credit, Amount: 2000},
			},
		},
		{
			name: "pattern matching free text",
			content: "Some export\n" +
				"Paid 01/02/2024 groceries 45.60\n" +
				"Received credit 03/02/2024 500.00\n",
			strategy: StrategyPatternMatching,
			want: []models.BankTransaction{
				{Date: "2024-02-01", Particulars: "Paid groceries", Withdrawals: 45.6, Type: models.Debit, Amount: 45.6},
				{Date: "2024-02-03", Particulars: "Received credit", Deposits: 500, Type: models.Credit, Amount: 500},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Generic{}.Extract(tt.content)
			require.True(t, res.Success, "errors: %v", res.Errors)
			assert.Equal(t, GenericBankName, res.Data.Bank)
			assert.Equal(t, tt.strategy, res.Data.Metadata.ExtractedBy)
			assert.Equal(t, tt.want, res.Data.Transactions)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestGenericAmountScan(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	g := Generic{Now: func() time.Time { return now }}

	res := g.Extract("Total due 1,234.56 and fee 10.00")
	require.True(t, res.Success)
	assert.Equal(t, StrategyAmountScan, res.Data.Metadata.ExtractedBy)

	require.Len(t, res.Data.Transactions, 2)
	for _, txn := range res.Data.Transactions {
		assert.Equal(t, "2024-03-01", txn.Date)
		assert.Equal(t, models.Debit, txn.Type)
	}
	assert.Equal(t, 1234.56, res.Data.Transactions[0].Amount)
	assert.Equal(t, 10.0, res.Data.Transactions[1].Amount)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "low confidence")
}

func TestGenericPatternMatchingGroupedAmounts(t *testing.T) {
	content := "Account export\n" +
		"Paid on 01/02/2024 rent 12,500.00\n" +
		"Got 03/02/2024 refund 1,00,000.00\n" +
		"04/02/2024,\"Deposit, cash\",\"2,000.00\"\n"

	res := Generic{}.Extract(content)
	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Equal(t, StrategyPatternMatching, res.Data.Metadata.ExtractedBy)
	assert.Equal(t, []models.BankTransaction{
		{Date: "2024-02-01", Particulars: "Paid on rent", Withdrawals: 12500, Type: models.Debit, Amount: 12500},
		{Date: "2024-02-03", Particulars: "Got refund", Withdrawals: 100000, Type: models.Debit, Amount: 100000},
		{Date: "2024-02-04", Particulars: "Deposit cash", Deposits: 2000, Type: models.Credit, Amount: 2000},
	}, res.Data.Transactions)
}

func TestGenericDropsBadDates(t *testing.T) {
	content := "Date,Description,Amount\n" +
		"soon,Thing,5.00\n" +
		"01/01/2024,Ok,1.00\n"

	res := Generic{}.Extract(content)
	require.True(t, res.Success)
	require.Len(t, res.Data.Transactions, 1)
	assert.Equal(t, "Ok", res.Data.Transactions[0].Particulars)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "validation failure")
}

func TestGenericNoTransactions(t *testing.T) {
	for _, content := range []string{"hello world\nnothing here", ""} {
		res := Generic{}.Extract(content)
		assert.False(t, res.Success)
		assert.Nil(t, res.Data)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "detection failure")
	}
}
