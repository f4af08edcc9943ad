package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func extractFixture(t *testing.T, p BankParser, file string) (*models.ParsedBankStatement, models.CSVParserResult) {
	t.Helper()
	res := p.Extract(fixture(t, file))
	require.True(t, res.Success, "errors: %v", res.Errors)
	require.NotNil(t, res.Data)
	return res.Data, res
}

func TestICICIExtract(t *testing.T) {
	stmt, res := extractFixture(t, ICICI(), "icici.csv")

	assert.Equal(t, "ICICI", stmt.Bank)
	assert.Equal(t, models.CustomerInfo{
		Name:       "MR. RAVI KUMAR",
		CustomerID: "512345678",
		Address:    "12 MG Road, Bengaluru",
		Email:      "ravi@example.com",
	}, stmt.CustomerInfo)

	sum := stmt.AccountSummary
	assert.Equal(t, "000401234567", sum.AccountNumber)
	assert.Equal(t, "ICIC0000004", sum.IFSC)
	assert.Equal(t, "Savings", sum.AccountType)
	assert.Equal(t, "01/01/2024 - 31/01/2024", sum.StatementPeriod)
	assert.Equal(t, 50000.0, sum.OpeningBalance)
	assert.Equal(t, 72549.5, sum.ClosingBalance)
	assert.Equal(t, 25100.0, sum.TotalDeposits)
	assert.Equal(t, 2450.5, sum.TotalWithdrawals)

	require.Len(t, stmt.AccountDetails, 1)
	assert.Equal(t, models.AccountDetail{
		AccountType:   "Savings",
		AccountNumber: "000401234567",
		Currency:      "INR",
		Balance:       72549.5,
		Nominee:       "Registered",
	}, stmt.AccountDetails[0])

	assert.Equal(t, []models.FixedDeposit{{
		DepositNumber:  "FD0001",
		OpenDate:       "2023-06-15",
		Principal:      100000,
		InterestRate:   7.1,
		MaturityDate:   "2024-06-15",
		MaturityAmount: 107100,
	}}, stmt.FixedDeposits)

	assert.Equal(t, []models.RewardPoint{{Program: "PAYBACK", Opening: 120, Earned: 45, Redeemed: 0, Closing: 165}}, stmt.RewardPoints)

	require.Len(t, stmt.Transactions, 3)
	assert.Equal(t, models.BankTransaction{
		Date:        "2024-01-02",
		Particulars: "Salary Credit ACME CORP",
		Mode:        "NEFT",
		Deposits:    25000,
		Balance:     75000,
		Type:        models.Credit,
		Amount:      25000,
	}, stmt.Transactions[0])
	assert.Equal(t, models.Debit, stmt.Transactions[1].Type)
	assert.Equal(t, 450.5, stmt.Transactions[1].Amount)
	assert.Equal(t, "ATM CASH WDL MG ROAD", stmt.Transactions[2].Particulars)

	assert.Equal(t, models.StatementMetadata{
		TotalTransactions: 3,
		TotalCredits:      25000,
		TotalDebits:       2450.5,
		DateRange:         models.DateRange{Start: "2024-01-02", End: "2024-01-08"},
		ExtractedBy:       "ICICI",
	}, stmt.Metadata)

	// The garbled date row is dropped with a validation warning.
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "validation failure")
	assert.Contains(t, res.Warnings[0], "xx/01/2024")
}

func TestHDFCExtract(t *testing.T) {
	stmt, res := extractFixture(t, HDFC(), "hdfc.csv")

	assert.Empty(t, res.Warnings)
	assert.Equal(t, "MR. ANIL SHARMA", stmt.CustomerInfo.Name)
	assert.Equal(t, "12345678", stmt.CustomerInfo.CustomerID)
	assert.Equal(t, "12 BRIGADE ROAD", stmt.CustomerInfo.Address)
	assert.Equal(t, "080-12345678", stmt.CustomerInfo.Phone)
	assert.Equal(t, "anil@example.com", stmt.CustomerInfo.Email)

	sum := stmt.AccountSummary
	assert.Equal(t, "50100012345678", sum.AccountNumber)
	assert.Equal(t, "MG ROAD", sum.Branch)
	assert.Equal(t, "HDFC0001234", sum.IFSC)
	assert.Equal(t, "560240002", sum.MICR)
	assert.Contains(t, sum.StatementPeriod, "01/01/2024")
	assert.Equal(t, 50000.0, sum.OpeningBalance)
	assert.Equal(t, 94100.0, sum.ClosingBalance)
	assert.Equal(t, 45000.0, sum.TotalDeposits)
	assert.Equal(t, 900.0, sum.TotalWithdrawals)

	assert.Contains(t, stmt.AccountInfo, models.AccountInfo{Label: "A/C OPEN DATE", Value: "01/04/2019"})

	require.Len(t, stmt.Transactions, 3)
	first := stmt.Transactions[0]
	assert.Equal(t, "2024-01-01", first.Date)
	assert.Equal(t, models.Credit, first.Type)
	assert.Equal(t, 45000.0, first.Amount)
	assert.Equal(t, "0000012345", first.Reference)
	assert.Equal(t, 94100.0, stmt.Transactions[2].Balance)

	assert.Equal(t, 45000.0, stmt.Metadata.TotalCredits)
	assert.Equal(t, 900.0, stmt.Metadata.TotalDebits)
}

func TestIDFCFirstExtract(t *testing.T) {
	stmt, _ := extractFixture(t, IDFCFirst(), "idfc.csv")

	assert.Equal(t, "IDFC FIRST", stmt.Bank)
	assert.Equal(t, "PRIYA NAIR", stmt.CustomerInfo.Name)
	assert.Equal(t, "7012345678", stmt.CustomerInfo.CustomerID)

	sum := stmt.AccountSummary
	assert.Equal(t, "10012345678", sum.AccountNumber)
	assert.Equal(t, "IDFB0080151", sum.IFSC)
	assert.Equal(t, "400751002", sum.MICR)
	assert.Equal(t, "BKC MUMBAI", sum.Branch)
	assert.Equal(t, "01-Jan-2024 to 31-Jan-2024", sum.StatementPeriod)
	assert.Equal(t, 20000.0, sum.OpeningBalance)
	assert.Equal(t, 23500.0, sum.ClosingBalance)
	assert.Equal(t, 5000.0, sum.TotalDeposits)
	assert.Equal(t, 1500.0, sum.TotalWithdrawals)

	assert.Equal(t, []models.AccountInfo{{Label: "ACCOUNT OPENING DATE", Value: "12-Mar-2020"}}, stmt.AccountInfo)

	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "2024-01-05", stmt.Transactions[0].Date)
	assert.Equal(t, models.Credit, stmt.Transactions[0].Type)
	assert.Equal(t, 5000.0, stmt.Transactions[0].Amount)
	assert.Equal(t, "2024-01-10", stmt.Transactions[1].Date)
	assert.Equal(t, "POS 4111XXXX1234 BIGBAZAAR MUMBAI", stmt.Transactions[1].Particulars)
	assert.Equal(t, models.Debit, stmt.Transactions[1].Type)
}

func TestSBIExtract(t *testing.T) {
	stmt, _ := extractFixture(t, SBI(), "sbi.csv")

	assert.Equal(t, "Mr. SURESH PATEL", stmt.CustomerInfo.Name)
	assert.Equal(t, "45 PARK STREET KOLKATA", stmt.CustomerInfo.Address)
	assert.Equal(t, "85012345678", stmt.CustomerInfo.CustomerID)

	sum := stmt.AccountSummary
	assert.Equal(t, "00000012345678901", sum.AccountNumber)
	assert.Equal(t, "SAVINGS ACCOUNT", sum.AccountType)
	assert.Equal(t, "PARK STREET", sum.Branch)
	assert.Equal(t, "SBIN0001234", sum.IFSC)
	assert.Equal(t, "700002021", sum.MICR)
	assert.Equal(t, 50000.0, sum.OpeningBalance, "balance as on is the opening balance")
	assert.Equal(t, 78750.0, sum.ClosingBalance)

	assert.Equal(t, []models.AccountInfo{
		{Label: "DRAWING POWER", Value: "0.00"},
		{Label: "INTEREST RATE(% P.A.)", Value: "2.7"},
		{Label: "NOMINATION REGISTERED", Value: "Yes"},
	}, stmt.AccountInfo)

	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "2024-01-05", stmt.Transactions[0].Date)
	assert.Equal(t, 30000.0, stmt.Transactions[0].Amount)
	assert.Equal(t, "TRANSFER FROM 1234", stmt.Transactions[0].Reference)
	assert.Equal(t, "2024-01-12", stmt.Transactions[1].Date)
	assert.Equal(t, models.Debit, stmt.Transactions[1].Type)
	assert.Equal(t, 1250.0, stmt.Transactions[1].Amount)
}

func TestAxisExtract(t *testing.T) {
	stmt, _ := extractFixture(t, Axis(), "axis.csv")

	assert.Equal(t, "VIKRAM SINGH", stmt.CustomerInfo.Name)
	assert.Equal(t, "876543210", stmt.CustomerInfo.CustomerID)

	sum := stmt.AccountSummary
	assert.Equal(t, "917010012345678", sum.AccountNumber)
	assert.Equal(t, "01-01-2024 to 31-01-2024", sum.StatementPeriod)
	assert.Equal(t, "UTIB0000123", sum.IFSC)
	assert.Equal(t, "110211002", sum.MICR)
	assert.Equal(t, 50000.0, sum.OpeningBalance)
	assert.Equal(t, 108701.0, sum.ClosingBalance)
	assert.Equal(t, 60000.0, sum.TotalDeposits)
	assert.Equal(t, 1299.0, sum.TotalWithdrawals)

	assert.Equal(t, []models.AccountInfo{{Label: "SCHEME", Value: "EASY ACCESS SAVINGS"}}, stmt.AccountInfo)

	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, models.BankTransaction{
		Date:        "2024-01-02",
		Particulars: "UPI/P2M/401234567890/AMAZON PAY",
		Withdrawals: 1299,
		Balance:     48701,
		Type:        models.Debit,
		Amount:      1299,
	}, stmt.Transactions[0])
	assert.Equal(t, "2024-01-15", stmt.Transactions[1].Date)
	assert.Equal(t, models.Credit, stmt.Transactions[1].Type)
}

func TestExtractMinimalLedger(t *testing.T) {
	content := "ICICI Bank\n" +
		"Account Number,000401234567\n" +
		"DATE,MODE,PARTICULARS,DEPOSITS,WITHDRAWALS,BALANCE\n" +
		"01/01/2024,B/F,,0,0,50000\n" +
		"02/01/2024,NEFT,Salary,25000,0,75000\n"

	res := ICICI().Extract(content)
	require.True(t, res.Success)
	require.Len(t, res.Data.Transactions, 1)

	txn := res.Data.Transactions[0]
	assert.Equal(t, "2024-01-02", txn.Date)
	assert.Equal(t, models.Credit, txn.Type)
	assert.Equal(t, 25000.0, txn.Amount)
	assert.Equal(t, 50000.0, res.Data.AccountSummary.OpeningBalance)
	assert.Equal(t, 75000.0, res.Data.AccountSummary.ClosingBalance)
}

func TestExtractRowRules(t *testing.T) {
	t.Run("zero amount rows are dropped silently", func(t *testing.T) {
		content := "ICICI Bank\n" +
			"DATE,MODE,PARTICULARS,DEPOSITS,WITHDRAWALS,BALANCE\n" +
			"01/01/2024,INT,Interest,0,0,100\n" +
			"02/01/2024,NEFT,Salary,25000,0,25100\n"

		res := ICICI().Extract(content)
		require.True(t, res.Success)
		assert.Len(t, res.Data.Transactions, 1)
		assert.Empty(t, res.Warnings)
	})

	t.Run("first scalar wins", func(t *testing.T) {
		content := "ICICI Bank\n" +
			"Account Number,111122223333\n" +
			"Account Number,999988887777\n" +
			"Name,MR. FIRST\n" +
			"Name,MR. SECOND\n"

		res := ICICI().Extract(content)
		require.True(t, res.Success)
		assert.Equal(t, "111122223333", res.Data.AccountSummary.AccountNumber)
		assert.Equal(t, "MR. FIRST", res.Data.CustomerInfo.Name)
		assert.Empty(t, res.Data.Transactions)
	})

	t.Run("recorded zero balance wins", func(t *testing.T) {
		content := "ICICI Bank\n" +
			"Account Number,000401234567\n" +
			"Opening Balance,0.00\n" +
			"Total Deposits,\n" +
			"DATE,MODE,PARTICULARS,DEPOSITS,WITHDRAWALS,BALANCE\n" +
			"01/01/2024,B/F,Balance Forward,0,0,500.00\n" +
			"02/01/2024,NEFT,Salary,25000,0,25500\n" +
			"Total,,,25000,0,\n"

		res := ICICI().Extract(content)
		require.True(t, res.Success)
		sum := res.Data.AccountSummary
		assert.Equal(t, 0.0, sum.OpeningBalance)
		assert.Equal(t, 25000.0, sum.TotalDeposits, "an empty value is not a match")
		assert.Equal(t, 0.0, sum.TotalWithdrawals)
	})

	t.Run("wrapped narration joins the previous row", func(t *testing.T) {
		content := "ICICI Bank\n" +
			"DATE,MODE,PARTICULARS,DEPOSITS,WITHDRAWALS,BALANCE\n" +
			"02/01/2024,UPI,UPI/P2M/401234567890/SWIGGY,0,450.00,49550\n" +
			",,BANGALORE,,,\n" +
			"03/01/2024,INT,Zero interest,0,0,49550\n" +
			",,ORPHAN LINE,,,\n" +
			"04/01/2024,ATM,ATM WDL,0,2000,47550\n"

		res := ICICI().Extract(content)
		require.True(t, res.Success)
		require.Len(t, res.Data.Transactions, 2)
		assert.Equal(t, "UPI/P2M/401234567890/SWIGGY BANGALORE", res.Data.Transactions[0].Particulars)
		assert.Equal(t, "ATM WDL", res.Data.Transactions[1].Particulars)
		assert.Empty(t, res.Warnings)
	})

	t.Run("blank row closes the ledger", func(t *testing.T) {
		content := "ICICI Bank\n" +
			"DATE,MODE,PARTICULARS,DEPOSITS,WITHDRAWALS,BALANCE\n" +
			"02/01/2024,NEFT,Salary,25000,0,25000\n" +
			"\n" +
			"03/01/2024,NEFT,Outside the table,100,0,25100\n"

		res := ICICI().Extract(content)
		require.True(t, res.Success)
		assert.Len(t, res.Data.Transactions, 1)
	})
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too short", "ICICI Bank\nAccount Number,0001"},
		{"nothing identifying", "ICICI Bank\nsome words\nmore words\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ICICI().Extract(tt.content)
			assert.False(t, res.Success)
			assert.Nil(t, res.Data)
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], models.ErrExtraction.Error())
		})
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	for file, bank := range bankFixtures {
		p, ok := DefaultRegistry().GetParserByBankName(bank)
		require.True(t, ok)
		content := fixture(t, file)
		assert.Equal(t, p.Extract(content), p.Extract(content), file)
	}
}

func TestSectionStateString(t *testing.T) {
	assert.Equal(t, "transactions", stateTransactions.String())
	assert.Equal(t, "section(42)", sectionState(42).String())
	assert.True(t, stateRewards.isTable())
	assert.False(t, stateCustomer.isTable())
}
