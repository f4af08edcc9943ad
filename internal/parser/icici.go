package parser

import "github.com/insightdelivered/statement-extractor/internal/models"

// ICICI detailed statements are CSV exports with several tables one after
// another:
//
//	CUSTOMER DETAILS
//	Name,MR. RAVI KUMAR
//	Customer ID,512345678
//	ACCOUNT TYPE,ACCOUNT NUMBER,CURRENCY,BALANCE,NOMINEE
//	Savings,000401234567,INR,"75,000.00",Registered
//	DEPOSIT NO,OPEN DATE,PRINCIPAL,ROI (%),MATURITY DATE,MATURITY AMOUNT
//	DATE,MODE,PARTICULARS,DEPOSITS,WITHDRAWALS,BALANCE
//	02/01/2024,NEFT,Salary Credit,25000,0,75000.00
//	PROGRAM,OPENING,EARNED,REDEEMED,CLOSING
//
// Dates are DD/MM/YYYY.
var iciciLayout = &layout{
	bank:     "ICICI",
	dayFirst: true,
	headers: []sectionHeader{
		{state: stateTransactions, required: []string{"DATE", "MODE", "PARTICULARS", "DEPOSITS", "WITHDRAWALS"}},
		{state: stateAccountDetails, required: []string{"ACCOUNT TYPE", "ACCOUNT NUMBER", "BALANCE"}},
		{state: stateFixedDeposits, required: []string{"DEPOSIT NO", "PRINCIPAL"}},
		{state: stateFixedDeposits, required: []string{"FD NUMBER", "PRINCIPAL AMOUNT"}},
		{state: stateRewards, required: []string{"PROGRAM", "EARNED", "REDEEMED"}},
	},
	blocks:     []blockMarker{customerBlock},
	endMarkers: []string{"END OF STATEMENT"},
	scalars: withCommon(
		scalarRule{labels: []string{"ICICI CUSTOMER ID"},
			set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.CustomerID, v) }},
	),
	infoLabels: commonInfoLabels,
	ledger: ledgerColumns{
		date:        []string{"DATE", "TRANSACTION DATE", "VALUE DATE"},
		particulars: []string{"PARTICULARS", "REMARKS"},
		mode:        []string{"MODE"},
		reference:   []string{"CHEQUE NUMBER", "CHEQUE NO", "REF NO"},
		deposits:    []string{"DEPOSITS", "DEPOSIT AMOUNT"},
		withdrawals: []string{"WITHDRAWALS", "WITHDRAWAL AMOUNT"},
		balance:     []string{"BALANCE"},
	},
}

var iciciSignature = signature{
	identifiers: iciciIdentifiers,
	ifscPrefix:  "ICIC",
	micrCode:    "229",
	layouts:     [][]string{{"DATE", "MODE", "PARTICULARS", "DEPOSITS", "WITHDRAWALS"}},
	excludes:    others(iciciIdentifiers),
}

// ICICI returns the ICICI Bank parser.
func ICICI() BankParser {
	return fromLayout(iciciSignature, iciciLayout)
}

// withCommon puts bank-specific rules ahead of the shared ones.
func withCommon(rules ...scalarRule) []scalarRule {
	out := make([]scalarRule, 0, len(rules)+len(commonScalars))
	out = append(out, rules...)
	return append(out, commonScalars...)
}
