package parser

import "github.com/insightdelivered/statement-extractor/internal/models"

// IDFC FIRST exports label every preamble field and print month names in
// the ledger ("05-Jan-2024").
var idfcLayout = &layout{
	bank:     "IDFC FIRST",
	dayFirst: true,
	headers: []sectionHeader{
		{state: stateTransactions, required: []string{"TRANSACTION DATE", "PARTICULARS", "DEBIT", "CREDIT"}},
	},
	blocks:     []blockMarker{customerBlock},
	endMarkers: []string{"END OF STATEMENT", "*** END"},
	scalars: withCommon(
		scalarRule{labels: []string{"COMMUNICATION ADDRESS", "MAILING ADDRESS"},
			set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.Address, v) }},
	),
	infoLabels: append([]string{"ACCOUNT OPENING DATE"}, commonInfoLabels...),
	ledger: ledgerColumns{
		date:        []string{"TRANSACTION DATE", "VALUE DATE"},
		particulars: []string{"PARTICULARS"},
		reference:   []string{"CHEQUE NO", "CHEQUE NUMBER", "REF NO"},
		deposits:    []string{"CREDIT"},
		withdrawals: []string{"DEBIT"},
		balance:     []string{"BALANCE"},
	},
	specials: []rowHook{summaryBlock},
}

var idfcSignature = signature{
	identifiers: idfcIdentifiers,
	ifscPrefix:  "IDFB",
	micrCode:    "751",
	layouts:     [][]string{{"TRANSACTION DATE", "VALUE DATE", "PARTICULARS", "CHEQUE NO", "DEBIT", "CREDIT"}},
	excludes:    others(idfcIdentifiers),
}

// IDFCFirst returns the IDFC FIRST Bank parser.
func IDFCFirst() BankParser {
	return fromLayout(idfcSignature, idfcLayout)
}
