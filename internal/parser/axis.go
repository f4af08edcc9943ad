package parser

import (
	"regexp"
	"strings"
)

// Axis exports carry "Label :- value" preamble lines, a ledger with short
// column names and an in-ledger opening balance row:
//
//	Statement of Account No - 917010012345678 for the period (From : 01-01-2024 To : 31-01-2024)
//	Tran Date,CHQNO,PARTICULARS,DR,CR,BAL,SOL
//	,,OPENING BALANCE,,,50000.00,
//	02-01-2024,,UPI/P2M/401234567890/AMAZON PAY,1299.00,,48701.00,1234
//	,,TRANSACTION TOTAL,1299.00,0.00,,
var axisLayout = &layout{
	bank:     "Axis",
	dayFirst: true,
	headers: []sectionHeader{
		{state: stateTransactions, required: []string{"TRAN DATE", "PARTICULARS", "DR", "CR"}},
	},
	blocks:     []blockMarker{customerBlock},
	endMarkers: []string{"LEGENDS", "++++ END OF STATEMENT"},
	scalars:    withCommon(),
	infoLabels: append([]string{"SCHEME", "NOMINEE REGISTERED", "CKYC NUMBER"}, commonInfoLabels...),
	ledger: ledgerColumns{
		date:        []string{"TRAN DATE"},
		particulars: []string{"PARTICULARS"},
		reference:   []string{"CHQNO", "CHQ NO"},
		deposits:    []string{"CR"},
		withdrawals: []string{"DR"},
		balance:     []string{"BAL"},
	},
	specials: []rowHook{axisAccountLine},
}

var axisAccountLinePattern = regexp.MustCompile(`(?i)statement of account no\s*[:\-]*\s*([0-9Xx*]+)(?:.*?from\s*:?\s*([0-9A-Za-z\-/]+)\s*to\s*:?\s*([0-9A-Za-z\-/]+))?`)

// axisAccountLine reads the account number and period from the title line.
func axisAccountLine(b *builder, rows []Row, i int) int {
	m := axisAccountLinePattern.FindStringSubmatch(rows[i].Text())
	if m == nil {
		return 0
	}
	setOnce(&b.stmt.AccountSummary.AccountNumber, m[1])
	if m[2] != "" {
		setOnce(&b.stmt.AccountSummary.StatementPeriod, strings.TrimSpace(m[2]+" to "+m[3]))
	}
	return 1
}

var axisSignature = signature{
	identifiers: axisIdentifiers,
	ifscPrefix:  "UTIB",
	micrCode:    "211",
	layouts:     [][]string{{"TRAN DATE", "CHQNO", "PARTICULARS", "SOL"}},
	excludes:    others(axisIdentifiers),
}

// Axis returns the Axis Bank parser.
func Axis() BankParser {
	return fromLayout(axisSignature, axisLayout)
}
