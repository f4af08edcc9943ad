package parser

// HDFC account statements open with the holder's name and address lines,
// followed by labeled fields and the ledger:
//
//	MR. ANIL SHARMA,,,,Account Branch :MG ROAD
//	Cust ID :12345678
//	Date,Narration,Chq./Ref.No.,Value Dt,Withdrawal Amt.,Deposit Amt.,Closing Balance
//	********,********,********,********,********,********,********
//	03/01/24,UPI-SWIGGY-SWIGGY@ICICI,0000401234,03/01/24,450.00,,49550.00
//	STATEMENT SUMMARY :-
//	Opening Balance,Dr Count,Cr Count,Debits,Credits,Closing Bal
//	"50,000.00",1,0,450.00,0.00,"49,550.00"
//
// Dates are DD/MM/YY.
var hdfcLayout = &layout{
	bank:     "HDFC",
	dayFirst: true,
	headers: []sectionHeader{
		{state: stateTransactions, required: []string{"DATE", "NARRATION", "WITHDRAWAL AMT", "DEPOSIT AMT"}},
	},
	blocks:     []blockMarker{customerBlock},
	endMarkers: []string{"END OF STATEMENT", "GENERATED ON"},
	scalars:    withCommon(),
	infoLabels: append([]string{"PRODUCT CODE", "A/C OPEN DATE"}, commonInfoLabels...),
	ledger: ledgerColumns{
		date:        []string{"DATE"},
		particulars: []string{"NARRATION"},
		reference:   []string{"CHQ./REF.NO", "CHQ/REF NO", "CHQ./REF. NO", "REF NO"},
		deposits:    []string{"DEPOSIT AMT"},
		withdrawals: []string{"WITHDRAWAL AMT"},
		balance:     []string{"CLOSING BALANCE", "BALANCE"},
	},
	specials: []rowHook{summaryBlock},
}

var hdfcSignature = signature{
	identifiers: hdfcIdentifiers,
	ifscPrefix:  "HDFC",
	micrCode:    "240",
	layouts:     [][]string{{"NARRATION", "CHQ./REF.NO", "WITHDRAWAL AMT"}},
	excludes:    others(hdfcIdentifiers),
}

// HDFC returns the HDFC Bank parser.
func HDFC() BankParser {
	return fromLayout(hdfcSignature, hdfcLayout)
}
