package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// GenericBankName is the Bank of statements produced by the fallback.
const GenericBankName = "Generic"

// Strategy names, recorded in metadata.extractedBy.
const (
	StrategyStandardColumns = "generic:standard-columns"
	StrategyLabeledColumns  = "generic:labeled-columns"
	StrategyPatternMatching = "generic:pattern-matching"
	StrategyAmountScan      = "generic:amount-extraction"
)

// headerScanRows bounds how far down the labeled strategy looks for a header.
const headerScanRows = 30

type strategy struct {
	name string
	run  func(g *genericRun) []models.BankTransaction
}

// strategies run in this order; the first one to produce a transaction wins.
var strategies = []strategy{
	{StrategyStandardColumns, standardColumns},
	{StrategyLabeledColumns, labeledColumns},
	{StrategyPatternMatching, patternMatching},
	{StrategyAmountScan, amountScan},
}

// Generic extracts transactions from content no registered bank claimed.
type Generic struct {
	// Now stamps transactions that carry no date. Defaults to time.Now.
	Now func() time.Time
}

type genericRun struct {
	content  string
	rows     []Row
	warnings []string
	now      time.Time
}

func (g *genericRun) warnf(format string, args ...any) {
	g.warnings = append(g.warnings, fmt.Sprintf(format, args...))
}

// Extract runs the strategy cascade. Strategies are never combined: the
// first that yields at least one transaction supplies the whole result.
func (x Generic) Extract(content string) models.CSVParserResult {
	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	run := &genericRun{content: normalizeContent(content), rows: Tokenize(content), now: now()}

	for _, s := range strategies {
		before := len(run.warnings)
		txns := s.run(run)
		if len(txns) == 0 {
			// Drop warnings from strategies that produced nothing.
			run.warnings = run.warnings[:before]
			continue
		}

		stmt := &models.ParsedBankStatement{
			Bank:           GenericBankName,
			AccountDetails: []models.AccountDetail{},
			FixedDeposits:  []models.FixedDeposit{},
			Transactions:   txns,
			RewardPoints:   []models.RewardPoint{},
			AccountInfo:    []models.AccountInfo{},
		}
		stmt.Metadata = models.ComputeMetadata(txns)
		stmt.Metadata.ExtractedBy = s.name
		return models.CSVParserResult{
			Success:  true,
			Data:     stmt,
			Errors:   []string{},
			Warnings: run.warnings,
		}
	}

	err := fmt.Errorf("%w: no generic strategy found any transactions", models.ErrDetection)
	return models.Failed(err)
}

var (
	dateColumnNames        = []string{"DATE", "TXN DATE", "TRANSACTION DATE", "POSTING DATE", "POSTED DATE", "VALUE DATE", "TRAN DATE"}
	amountColumnNames      = []string{"AMOUNT", "AMT", "TRANSACTION AMOUNT", "AMOUNT (INR)", "AMOUNT(INR)", "VALUE"}
	descriptionColumnNames = []string{"DESCRIPTION", "MEMO", "NARRATION", "DETAILS", "PARTICULARS", "PAYEE", "REMARKS", "TRANSACTION DETAILS"}
	typeColumnNames        = []string{"TYPE", "CR/DR", "DR/CR", "TRANSACTION TYPE", "DEBIT/CREDIT"}
	referenceColumnNames   = []string{"REFERENCE", "REF NO", "REF", "CHEQUE NO", "CHQ NO", "REFERENCE NO"}
	balanceColumnNames     = []string{"BALANCE", "RUNNING BALANCE", "CLOSING BALANCE", "BAL"}

	depositColumnNames    = []string{"DEPOSITS", "DEPOSIT", "CREDIT", "CREDITS", "CR", "DEPOSIT AMT", "CREDIT AMOUNT", "PAID IN"}
	withdrawalColumnNames = []string{"WITHDRAWALS", "WITHDRAWAL", "DEBIT", "DEBITS", "DR", "WITHDRAWAL AMT", "DEBIT AMOUNT", "PAID OUT"}
	ledgerVocabulary      = []string{"DEPOSITS", "WITHDRAWALS", "PARTICULARS", "MODE", "BALANCE", "DEBIT", "CREDIT", "NARRATION"}
)

func firstNonBlank(rows []Row) (int, bool) {
	for i, row := range rows {
		if !row.IsBlank() {
			return i, true
		}
	}
	return 0, false
}

// standardColumns handles exports whose first row names a date column and
// a single signed amount column.
func standardColumns(g *genericRun) []models.BankTransaction {
	start, ok := firstNonBlank(g.rows)
	if !ok {
		return nil
	}
	h := newHeaderMap(g.rows[start])
	if h.index(dateColumnNames...) < 0 || h.index(amountColumnNames...) < 0 {
		return nil
	}

	var txns []models.BankTransaction
	for i, row := range g.rows[start+1:] {
		if row.IsBlank() || isTotalRow(row) {
			continue
		}
		amount := ParseAmount(h.get(row, amountColumnNames...))
		kind := strings.ToUpper(h.get(row, typeColumnNames...))

		deposits, withdrawals := 0.0, 0.0
		switch {
		case strings.HasPrefix(kind, "CR"):
			deposits = abs(amount)
		case strings.HasPrefix(kind, "DR"), strings.HasPrefix(kind, "DEBIT"), amount < 0:
			withdrawals = abs(amount)
		default:
			deposits = amount
		}

		if txn, ok := g.ledgerTxn(start+i+2, h.get(row, dateColumnNames...), h.get(row, descriptionColumnNames...), deposits, withdrawals, h, row); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

// labeledColumns handles bank-style ledgers with separate deposit and
// withdrawal columns whose header may sit below a preamble.
func labeledColumns(g *genericRun) []models.BankTransaction {
	limit := min(len(g.rows), headerScanRows)
	for i := 0; i < limit; i++ {
		h := newHeaderMap(g.rows[i])
		if h.index(dateColumnNames...) < 0 || vocabularyHits(h) < 2 {
			continue
		}
		if h.index(depositColumnNames...) < 0 && h.index(withdrawalColumnNames...) < 0 {
			continue
		}

		var txns []models.BankTransaction
		for j, row := range g.rows[i+1:] {
			if row.IsBlank() || isTotalRow(row) || isSeparatorRow(row) {
				continue
			}
			date := h.get(row, dateColumnNames...)
			particulars := h.get(row, descriptionColumnNames...)
			if isBroughtForward(particulars, h.get(row, "MODE")) || !looksLikeDate(date) {
				continue
			}
			deposits := ParseAmount(h.get(row, depositColumnNames...))
			withdrawals := ParseAmount(h.get(row, withdrawalColumnNames...))
			if txn, ok := g.ledgerTxn(i+j+2, date, particulars, deposits, withdrawals, h, row); ok {
				txns = append(txns, txn)
			}
		}
		return txns
	}
	return nil
}

func vocabularyHits(h headerMap) int {
	n := 0
	for _, v := range ledgerVocabulary {
		if h.index(v) >= 0 {
			n++
		}
	}
	return n
}

func (g *genericRun) ledgerTxn(line int, date, particulars string, deposits, withdrawals float64, h headerMap, row Row) (models.BankTransaction, bool) {
	txn, ok := models.NewBankTransaction("", strings.Join(strings.Fields(particulars), " "), deposits, withdrawals, ParseAmount(h.get(row, balanceColumnNames...)))
	if !ok {
		return txn, false
	}
	iso, ok := normalizeDate(date, true)
	if !ok {
		g.warnf("%v: row %d dropped, unparseable date %q", models.ErrValidation, line, date)
		return txn, false
	}
	txn.Date = iso
	txn.Mode = h.get(row, "MODE")
	txn.Reference = h.get(row, referenceColumnNames...)
	return txn, true
}

var (
	rowDateToken   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	rowAmountToken = regexp.MustCompile(`-?\d[\d,]*\.\d{2}\b`)
	creditWords    = regexp.MustCompile(`(?i)\b(?:cr|credit|credited|deposit|received)\b`)
)

// patternMatching treats every line with one date token and one amount
// token as a transaction, whatever the surrounding layout. It reads source
// lines, not rows, so grouping commas in amounts survive.
func patternMatching(g *genericRun) []models.BankTransaction {
	var txns []models.BankTransaction
	for _, text := range strings.Split(g.content, "\n") {
		dateTok := rowDateToken.FindString(text)
		amountTok := rowAmountToken.FindString(text)
		if dateTok == "" || amountTok == "" {
			continue
		}
		date, ok := normalizeDate(dateTok, true)
		if !ok {
			continue
		}

		amount := ParseAmount(amountTok)
		deposits, withdrawals := 0.0, abs(amount)
		if amount > 0 && creditWords.MatchString(text) {
			deposits, withdrawals = amount, 0
		}

		desc := strings.Replace(text, dateTok, " ", 1)
		desc = strings.Replace(desc, amountTok, " ", 1)
		txn, ok := models.NewBankTransaction(date, stripPunctuation(desc), deposits, withdrawals, 0)
		if ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

var decimalToken = regexp.MustCompile(`\d[\d,]*\.\d{2}\b`)

// amountScan is the last resort: every decimal figure becomes one
// transaction stamped with the current date. Its output is low confidence
// and always says so.
func amountScan(g *genericRun) []models.BankTransaction {
	date := FormatDate(g.now)
	var txns []models.BankTransaction
	for _, tok := range decimalToken.FindAllString(g.content, -1) {
		amount := ParseAmount(tok)
		if txn, ok := models.NewBankTransaction(date, "Extracted amount "+tok, 0, amount, 0); ok {
			txns = append(txns, txn)
		}
	}
	if len(txns) > 0 {
		g.warnf("low confidence: %d amounts extracted without dates or descriptions, dated %s", len(txns), date)
	}
	return txns
}

func stripPunctuation(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
