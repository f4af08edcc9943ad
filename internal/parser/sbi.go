package parser

import "github.com/insightdelivered/statement-extractor/internal/models"

// SBI statements downloaded from OnlineSBI:
//
//	Account Name       :Mr. SURESH PATEL
//	Account Number     :00000012345678901
//	IFS Code           :SBIN0001234
//	Balance as on 1 Jan 2024 :"50,000.00"
//	Txn Date,Value Date,Description,Ref No./Cheque No.,Branch Code,Debit,Credit,Balance
//	5 Jan 2024,5 Jan 2024,BY TRANSFER-NEFT*HDFC0000001*N123*EMPLOYER,TRANSFER FROM 1234,1234,,"30,000.00","80,000.00"
//
// "Balance as on" carries the date the statement opens with, so it is the
// opening balance.
var sbiLayout = &layout{
	bank:     "SBI",
	dayFirst: true,
	headers: []sectionHeader{
		{state: stateTransactions, required: []string{"TXN DATE", "DESCRIPTION", "DEBIT", "CREDIT"}},
	},
	blocks:     []blockMarker{customerBlock},
	endMarkers: []string{"**THIS IS A COMPUTER GENERATED STATEMENT", "THIS IS A COMPUTER GENERATED STATEMENT"},
	scalars: withCommon(
		scalarRule{labels: []string{"BALANCE AS ON"}, prefix: true,
			amount: func(a *models.AccountSummary) *float64 { return &a.OpeningBalance }},
		scalarRule{labels: []string{"ACCOUNT DESCRIPTION"},
			set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.AccountType, v) }},
	),
	infoLabels: append([]string{"DRAWING POWER", "INTEREST RATE(% P.A.)", "MOD BALANCE", "NOMINATION REGISTERED"}, commonInfoLabels...),
	ledger: ledgerColumns{
		date:        []string{"TXN DATE", "VALUE DATE"},
		particulars: []string{"DESCRIPTION"},
		reference:   []string{"REF NO./CHEQUE NO", "REF NO/CHEQUE NO", "CHEQUE NO"},
		deposits:    []string{"CREDIT"},
		withdrawals: []string{"DEBIT"},
		balance:     []string{"BALANCE"},
	},
}

var sbiSignature = signature{
	identifiers: sbiIdentifiers,
	ifscPrefix:  "SBIN",
	micrCode:    "002",
	layouts:     [][]string{{"TXN DATE", "DESCRIPTION", "REF NO./CHEQUE NO"}},
	excludes:    others(sbiIdentifiers),
}

// SBI returns the State Bank of India parser.
func SBI() BankParser {
	return fromLayout(sbiSignature, sbiLayout)
}
