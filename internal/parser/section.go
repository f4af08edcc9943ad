package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// minStatementRows is the shortest input a bank extractor will scan.
const minStatementRows = 3

// sectionState is the row scanner's position in the document. Exactly one
// section is active at a time; header rows and block titles move between them.
type sectionState int

const (
	statePreamble sectionState = iota
	stateCustomer
	stateAccountDetails
	stateFixedDeposits
	stateTransactions
	stateRewards
	stateDone
)

var sectionNames = [...]string{
	statePreamble:       "preamble",
	stateCustomer:       "customer",
	stateAccountDetails: "account-details",
	stateFixedDeposits:  "fixed-deposits",
	stateTransactions:   "transactions",
	stateRewards:        "rewards",
	stateDone:           "done",
}

func (s sectionState) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// isTable reports whether rows in this state are records under a header.
func (s sectionState) isTable() bool {
	return s == stateAccountDetails || s == stateFixedDeposits || s == stateTransactions || s == stateRewards
}

// sectionHeader opens a table section when a row carries every required label.
type sectionHeader struct {
	state    sectionState
	required []string
}

// blockMarker opens a key/value block when a row's leading cell matches.
type blockMarker struct {
	state  sectionState
	titles []string
}

// scalarRule binds label aliases to one statement field.
type scalarRule struct {
	labels []string
	prefix bool
	set    func(s *models.ParsedBankStatement, value string)

	// amount names a summary figure; it takes the place of set.
	amount func(a *models.AccountSummary) *float64
}

// ledgerColumns lists the header aliases of each ledger field.
type ledgerColumns struct {
	date        []string
	particulars []string
	mode        []string
	reference   []string
	deposits    []string
	withdrawals []string
	balance     []string
}

// layout is the declarative description of one bank's export.
type layout struct {
	bank       string
	dayFirst   bool
	headers    []sectionHeader
	blocks     []blockMarker
	endMarkers []string
	scalars    []scalarRule
	infoLabels []string
	ledger     ledgerColumns

	// specials consume rows the shared scanner does not understand. Each
	// returns how many rows it consumed, 0 for none.
	specials []rowHook
}

type rowHook func(b *builder, rows []Row, i int) int

// builder accumulates one statement during a scan.
type builder struct {
	stmt     models.ParsedBankStatement
	warnings []string
	dayFirst bool
	state    sectionState
	header   headerMap
	infoSeen map[string]bool

	// sectionRows counts records read since the last header.
	sectionRows int

	// continuable is set while the last ledger row was kept.
	continuable bool

	// amountSet marks summary figures already taken.
	amountSet map[*float64]bool
}

func newBuilder(bank string, dayFirst bool) *builder {
	return &builder{
		stmt: models.ParsedBankStatement{
			Bank:           bank,
			AccountDetails: []models.AccountDetail{},
			FixedDeposits:  []models.FixedDeposit{},
			Transactions:   []models.BankTransaction{},
			RewardPoints:   []models.RewardPoint{},
			AccountInfo:    []models.AccountInfo{},
		},
		dayFirst:  dayFirst,
		infoSeen:  make(map[string]bool),
		amountSet: make(map[*float64]bool),
	}
}

func (b *builder) enter(state sectionState, h headerMap) {
	b.state = state
	b.header = h
	b.sectionRows = 0
	b.continuable = false
}

func (b *builder) leave() {
	b.state = statePreamble
	b.header = headerMap{}
	b.sectionRows = 0
	b.continuable = false
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// setOnce implements first-match-wins for string fields.
func setOnce(dst *string, value string) {
	if *dst == "" {
		*dst = strings.TrimSpace(value)
	}
}

// setAmount implements first-match-wins for amounts. A recorded 0.00 is a
// match like any other figure.
func (b *builder) setAmount(dst *float64, value float64) {
	if !b.amountSet[dst] {
		b.amountSet[dst] = true
		*dst = value
	}
}

// setAmountCell is setAmount for a raw cell; a cell without digits is no
// candidate at all.
func (b *builder) setAmountCell(dst *float64, cell string) {
	if strings.ContainsAny(cell, "0123456789") {
		b.setAmount(dst, ParseAmount(cell))
	}
}

// ledgerRow is one candidate transaction before validation.
type ledgerRow struct {
	line        int
	date        string
	particulars string
	mode        string
	reference   string
	deposits    float64
	withdrawals float64
	balance     float64
	balanceCell string
}

// addLedgerRow validates r and appends it. Brought-forward rows feed the
// opening balance, non-positive rows are dropped silently, and rows with an
// unusable date are dropped with a warning.
func (b *builder) addLedgerRow(r ledgerRow) {
	b.continuable = false
	if isBroughtForward(r.particulars, r.mode) {
		b.setAmountCell(&b.stmt.AccountSummary.OpeningBalance, r.balanceCell)
		return
	}

	txn, ok := models.NewBankTransaction("", strings.Join(strings.Fields(r.particulars), " "), r.deposits, r.withdrawals, r.balance)
	if !ok {
		return
	}

	date, ok := normalizeDate(r.date, b.dayFirst)
	if !ok {
		b.warnf("%v: row %d dropped, unparseable date %q", models.ErrValidation, r.line, r.date)
		return
	}
	txn.Date = date
	txn.Mode = r.mode
	txn.Reference = r.reference
	b.stmt.Transactions = append(b.stmt.Transactions, txn)
	b.continuable = true
}

func (b *builder) ledgerRowFrom(cols ledgerColumns, row Row, line int) ledgerRow {
	h := b.header
	balance := h.get(row, cols.balance...)
	return ledgerRow{
		line:        line,
		date:        h.get(row, cols.date...),
		particulars: h.get(row, cols.particulars...),
		mode:        h.get(row, cols.mode...),
		reference:   strings.TrimLeft(h.get(row, cols.reference...), "'"),
		deposits:    ParseAmount(h.get(row, cols.deposits...)),
		withdrawals: ParseAmount(h.get(row, cols.withdrawals...)),
		balance:     ParseAmount(balance),
		balanceCell: balance,
	}
}

var (
	accountDetailCols = struct{ kind, number, currency, balance, nominee []string }{
		kind:     []string{"ACCOUNT TYPE", "TYPE", "PRODUCT"},
		number:   []string{"ACCOUNT NUMBER", "ACCOUNT NO", "A/C NO"},
		currency: []string{"CURRENCY", "CCY"},
		balance:  []string{"BALANCE", "AVAILABLE BALANCE", "CLOSING BALANCE"},
		nominee:  []string{"NOMINEE", "NOMINATION"},
	}
	fixedDepositCols = struct{ number, open, principal, rate, maturity, maturityAmount []string }{
		number:         []string{"DEPOSIT NO", "DEPOSIT NUMBER", "FD NO", "FD NUMBER"},
		open:           []string{"OPEN DATE", "START DATE", "DEPOSIT DATE", "VALUE DATE"},
		principal:      []string{"PRINCIPAL", "PRINCIPAL AMOUNT", "DEPOSIT AMOUNT"},
		rate:           []string{"ROI", "ROI (%)", "RATE OF INTEREST", "INTEREST RATE", "RATE"},
		maturity:       []string{"MATURITY DATE"},
		maturityAmount: []string{"MATURITY AMOUNT", "MATURITY VALUE"},
	}
	rewardCols = struct{ program, opening, earned, redeemed, closing []string }{
		program:  []string{"PROGRAM", "PROGRAMME", "REWARD PROGRAM", "REWARD PROGRAMME"},
		opening:  []string{"OPENING", "OPENING POINTS"},
		earned:   []string{"EARNED", "POINTS EARNED"},
		redeemed: []string{"REDEEMED", "POINTS REDEEMED"},
		closing:  []string{"CLOSING", "CLOSING POINTS", "BALANCE POINTS"},
	}
)

func (b *builder) addAccountDetail(row Row) {
	h := b.header
	number := strings.TrimLeft(h.get(row, accountDetailCols.number...), "'")
	if number == "" {
		return
	}
	d := models.AccountDetail{
		AccountType:   h.get(row, accountDetailCols.kind...),
		AccountNumber: number,
		Currency:      h.get(row, accountDetailCols.currency...),
		Balance:       ParseAmount(h.get(row, accountDetailCols.balance...)),
		Nominee:       h.get(row, accountDetailCols.nominee...),
	}
	b.stmt.AccountDetails = append(b.stmt.AccountDetails, d)
	setOnce(&b.stmt.AccountSummary.AccountNumber, d.AccountNumber)
	setOnce(&b.stmt.AccountSummary.AccountType, d.AccountType)
}

func (b *builder) addFixedDeposit(row Row) {
	h := b.header
	fd := models.FixedDeposit{
		DepositNumber:  strings.TrimLeft(h.get(row, fixedDepositCols.number...), "'"),
		OpenDate:       b.dateOrRaw(h.get(row, fixedDepositCols.open...)),
		Principal:      ParseAmount(h.get(row, fixedDepositCols.principal...)),
		InterestRate:   ParseAmount(h.get(row, fixedDepositCols.rate...)),
		MaturityDate:   b.dateOrRaw(h.get(row, fixedDepositCols.maturity...)),
		MaturityAmount: ParseAmount(h.get(row, fixedDepositCols.maturityAmount...)),
	}
	if fd.DepositNumber == "" || fd.Principal <= 0 {
		return
	}
	b.stmt.FixedDeposits = append(b.stmt.FixedDeposits, fd)
}

func (b *builder) addReward(row Row) {
	h := b.header
	rp := models.RewardPoint{
		Program:  h.get(row, rewardCols.program...),
		Opening:  ParseAmount(h.get(row, rewardCols.opening...)),
		Earned:   ParseAmount(h.get(row, rewardCols.earned...)),
		Redeemed: ParseAmount(h.get(row, rewardCols.redeemed...)),
		Closing:  ParseAmount(h.get(row, rewardCols.closing...)),
	}
	if rp.Program == "" {
		return
	}
	b.stmt.RewardPoints = append(b.stmt.RewardPoints, rp)
}

func (b *builder) dateOrRaw(s string) string {
	if d, ok := normalizeDate(s, b.dayFirst); ok {
		return d
	}
	return s
}

func (b *builder) addInfo(row Row, labels []string) bool {
	for _, label := range labels {
		if b.infoSeen[label] {
			continue
		}
		if v, ok := labelValue(row, false, label); ok {
			b.infoSeen[label] = true
			b.stmt.AccountInfo = append(b.stmt.AccountInfo, models.AccountInfo{Label: label, Value: v})
			return true
		}
	}
	return false
}

func (b *builder) applyScalars(row Row, rules []scalarRule) bool {
	matched := false
	for _, rule := range rules {
		if v, ok := labelValue(row, rule.prefix, rule.labels...); ok {
			if rule.amount != nil {
				b.setAmountCell(rule.amount(&b.stmt.AccountSummary), v)
			} else {
				rule.set(&b.stmt, v)
			}
			matched = true
		}
	}
	return matched
}

// result recomputes metadata from the final ledger and decides success.
func (b *builder) result() models.CSVParserResult {
	txns := b.stmt.Transactions
	if n := len(txns); n > 0 && txns[n-1].Balance != 0 {
		b.setAmount(&b.stmt.AccountSummary.ClosingBalance, txns[n-1].Balance)
	}

	b.stmt.Metadata = models.ComputeMetadata(txns)
	b.stmt.Metadata.ExtractedBy = b.stmt.Bank

	if !b.stmt.HasIdentity() && len(txns) == 0 {
		err := fmt.Errorf("%w: %s statement has no identifying fields and no transactions", models.ErrExtraction, b.stmt.Bank)
		return models.Failed(err, b.warnings...)
	}

	stmt := b.stmt
	return models.CSVParserResult{
		Success:  true,
		Data:     &stmt,
		Errors:   []string{},
		Warnings: b.warnings,
	}
}

func (l *layout) matchHeader(row Row) (sectionState, headerMap, bool) {
	h := newHeaderMap(row)
	for _, sh := range l.headers {
		if h.has(sh.required...) {
			return sh.state, h, true
		}
	}
	return statePreamble, headerMap{}, false
}

func (l *layout) matchBlock(row Row) (sectionState, bool) {
	lead := normalizeLabel(row.Text())
	for _, bm := range l.blocks {
		for _, t := range bm.titles {
			if lead == t {
				return bm.state, true
			}
		}
	}
	return statePreamble, false
}

func (l *layout) isEnd(row Row) bool {
	text := normalizeLabel(row.Text())
	for _, m := range l.endMarkers {
		if strings.HasPrefix(text, m) {
			return true
		}
	}
	return false
}

// endsTable reports whether row closes the active table. Total and closing
// rows in the ledger also feed the account summary.
func (b *builder) endsTable(row Row, cols ledgerColumns) bool {
	if row.IsBlank() || isSeparatorRow(row) {
		return true
	}
	if b.state != stateTransactions {
		return isTotalRow(row) || b.header.lead(row) == ""
	}

	h := b.header
	date := h.get(row, cols.date...)
	particulars := h.get(row, cols.particulars...)
	deposits := ParseAmount(h.get(row, cols.deposits...))
	withdrawals := ParseAmount(h.get(row, cols.withdrawals...))

	switch {
	case !looksLikeDate(date) && isTotalRow(row):
		b.setAmountCell(&b.stmt.AccountSummary.TotalDeposits, h.get(row, cols.deposits...))
		b.setAmountCell(&b.stmt.AccountSummary.TotalWithdrawals, h.get(row, cols.withdrawals...))
		return true
	case isClosingBalance(particulars):
		b.setAmountCell(&b.stmt.AccountSummary.ClosingBalance, h.get(row, cols.balance...))
		return true
	case isBroughtForward(particulars, h.get(row, cols.mode...)):
		return false
	case h.lead(row) == "":
		return true
	case !looksLikeDate(date) && deposits == 0 && withdrawals == 0:
		// A labeled line right after the ledger, not a malformed record.
		return true
	}
	return false
}

// appendContinuation folds a wrapped narration line (no date, no figures,
// only particulars) into the previous transaction of the same ledger. A
// wrapped line under a dropped row is consumed without effect.
func (b *builder) appendContinuation(row Row, cols ledgerColumns) bool {
	if b.state != stateTransactions || b.sectionRows == 0 {
		return false
	}
	h := b.header
	particulars := strings.Join(strings.Fields(h.get(row, cols.particulars...)), " ")
	if particulars == "" || h.lead(row) != "" || h.get(row, cols.date...) != "" {
		return false
	}
	for _, aliases := range [][]string{cols.deposits, cols.withdrawals, cols.balance} {
		if h.get(row, aliases...) != "" {
			return false
		}
	}
	if isTotalRow(row) || isClosingBalance(particulars) || isBroughtForward(particulars, h.get(row, cols.mode...)) {
		return false
	}

	if b.continuable {
		last := &b.stmt.Transactions[len(b.stmt.Transactions)-1]
		last.Particulars = strings.TrimSpace(last.Particulars + " " + particulars)
	}
	return true
}

func (b *builder) tableRow(l *layout, row Row, line int) {
	switch b.state {
	case stateTransactions:
		b.addLedgerRow(b.ledgerRowFrom(l.ledger, row, line))
	case stateAccountDetails:
		b.addAccountDetail(row)
	case stateFixedDeposits:
		b.addFixedDeposit(row)
	case stateRewards:
		b.addReward(row)
	}
}

// extract runs the single top-to-bottom scan over content.
func (l *layout) extract(content string) models.CSVParserResult {
	rows := Tokenize(content)
	if len(rows) < minStatementRows {
		err := fmt.Errorf("%w: %s statement too short (%d rows, need %d)", models.ErrExtraction, l.bank, len(rows), minStatementRows)
		return models.Failed(err)
	}

	b := newBuilder(l.bank, l.dayFirst)
	for i := 0; i < len(rows) && b.state != stateDone; i++ {
		row := rows[i]

		if n := l.runSpecials(b, rows, i); n > 0 {
			i += n - 1
			continue
		}

		if l.isEnd(row) {
			b.enter(stateDone, headerMap{})
			break
		}

		if state, h, ok := l.matchHeader(row); ok {
			b.enter(state, h)
			continue
		}

		if b.state.isTable() {
			if b.sectionRows == 0 && isSeparatorRow(row) {
				continue
			}
			if b.appendContinuation(row, l.ledger) {
				continue
			}
			if !b.endsTable(row, l.ledger) {
				b.sectionRows++
				b.tableRow(l, row, i+1)
				continue
			}
			b.leave()
			if row.IsBlank() || isSeparatorRow(row) || isTotalRow(row) {
				continue
			}
		}

		if row.IsBlank() {
			if b.state == stateCustomer {
				b.leave()
			}
			continue
		}

		if state, ok := l.matchBlock(row); ok {
			b.enter(state, headerMap{})
			continue
		}

		named := false
		if name, ok := honorificName(row); ok {
			setOnce(&b.stmt.CustomerInfo.Name, name)
			named = true
		}
		if b.applyScalars(row, l.scalars) || named {
			continue
		}
		if b.addInfo(row, l.infoLabels) {
			continue
		}
		if b.state == stateCustomer {
			b.customerLine(row)
		}
	}

	return b.result()
}

func (l *layout) runSpecials(b *builder, rows []Row, i int) int {
	for _, hook := range l.specials {
		if n := hook(b, rows, i); n > 0 {
			return n
		}
	}
	return 0
}

// summaryBlock reads a two-row balance summary: a header naming the opening
// and closing balance followed by a row of figures.
func summaryBlock(b *builder, rows []Row, i int) int {
	h := newHeaderMap(rows[i])
	opening := []string{"OPENING BALANCE", "OPENING BAL"}
	closing := []string{"CLOSING BALANCE", "CLOSING BAL"}
	if h.index(opening...) < 0 || h.index(closing...) < 0 {
		return 0
	}

	j := i + 1
	for j < len(rows) && rows[j].IsBlank() {
		j++
	}
	if j >= len(rows) || !isAmountCell(h.get(rows[j], opening...)) {
		return 0
	}

	vals := rows[j]
	sum := &b.stmt.AccountSummary
	b.setAmountCell(&sum.OpeningBalance, h.get(vals, opening...))
	b.setAmountCell(&sum.ClosingBalance, h.get(vals, closing...))
	b.setAmountCell(&sum.TotalDeposits, h.get(vals, "CREDITS", "TOTAL CREDITS", "TOTAL CREDIT", "CREDIT"))
	b.setAmountCell(&sum.TotalWithdrawals, h.get(vals, "DEBITS", "TOTAL DEBITS", "TOTAL DEBIT", "DEBIT"))
	b.leave()
	return j - i + 1
}

// customerLine handles unlabeled lines inside a customer block: the first
// is the holder's name, the next the address.
func (b *builder) customerLine(row Row) {
	text := row.Text()
	switch {
	case b.stmt.CustomerInfo.Name == "":
		b.stmt.CustomerInfo.Name = text
	case b.stmt.CustomerInfo.Address == "":
		b.stmt.CustomerInfo.Address = text
	}
}

// Identifier fields shared by every layout. Banks append their own aliases.
var commonScalars = []scalarRule{
	{labels: []string{"CUSTOMER NAME", "ACCOUNT NAME", "ACCOUNT HOLDER", "ACCOUNT HOLDER NAME", "A/C NAME", "NAME"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.Name, v) }},
	{labels: []string{"CUSTOMER ID", "CUST ID", "CUSTOMER NO", "CIF", "CIF NO", "CIF NUMBER"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.CustomerID, v) }},
	{labels: []string{"ACCOUNT NUMBER", "ACCOUNT NO", "A/C NO", "A/C NUMBER", "ACCOUNT #"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.AccountNumber, accountNumberValue(v)) }},
	{labels: []string{"IFSC", "IFSC CODE", "IFS CODE", "RTGS/NEFT IFSC"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.IFSC, ifscValue(v)) }},
	{labels: []string{"MICR", "MICR CODE", "MICR NO"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.MICR, v) }},
	{labels: []string{"BRANCH", "BRANCH NAME", "ACCOUNT BRANCH", "HOME BRANCH"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.Branch, v) }},
	{labels: []string{"ADDRESS", "CUSTOMER ADDRESS"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.Address, v) }},
	{labels: []string{"EMAIL", "EMAIL ID", "E-MAIL", "E-MAIL ID"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.Email, v) }},
	{labels: []string{"MOBILE", "MOBILE NO", "MOBILE NUMBER", "PHONE", "PHONE NO", "REGISTERED MOBILE"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.Phone, v) }},
	{labels: []string{"PAN", "PAN NO", "PAN NUMBER"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.CustomerInfo.PAN, v) }},
	{labels: []string{"ACCOUNT TYPE", "A/C TYPE", "PRODUCT", "PRODUCT NAME"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.AccountType, v) }},
	{labels: []string{"CURRENCY", "A/C CURRENCY"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.Currency, v) }},
	{labels: []string{"STATEMENT PERIOD", "PERIOD", "STATEMENT FROM", "TRANSACTION PERIOD"},
		set: func(s *models.ParsedBankStatement, v string) { setOnce(&s.AccountSummary.StatementPeriod, v) }},
	{labels: []string{"OPENING BALANCE"},
		amount: func(a *models.AccountSummary) *float64 { return &a.OpeningBalance }},
	{labels: []string{"CLOSING BALANCE", "CLOSING BAL"},
		amount: func(a *models.AccountSummary) *float64 { return &a.ClosingBalance }},
	{labels: []string{"TOTAL DEPOSITS", "TOTAL CREDITS"},
		amount: func(a *models.AccountSummary) *float64 { return &a.TotalDeposits }},
	{labels: []string{"TOTAL WITHDRAWALS", "TOTAL DEBITS"},
		amount: func(a *models.AccountSummary) *float64 { return &a.TotalWithdrawals }},
}

// commonInfoLabels are account attributes kept verbatim in AccountInfo.
var commonInfoLabels = []string{
	"ACCOUNT STATUS", "ACCOUNT OPEN DATE", "A/C OPEN DATE", "NOMINEE", "NOMINATION",
	"JOINT HOLDER", "JOINT HOLDERS", "MODE OF OPERATION", "SCHEME", "OD LIMIT", "DRAWING POWER", "CKYC NUMBER",
}

var customerBlock = blockMarker{
	state:  stateCustomer,
	titles: []string{"CUSTOMER DETAILS", "CUSTOMER INFORMATION", "PERSONAL DETAILS", "ACCOUNT HOLDER DETAILS"},
}

var (
	ifscPattern        = regexp.MustCompile(`[A-Z]{4}0[A-Z0-9]{6}`)
	accountNumberChars = regexp.MustCompile(`[0-9Xx*]{4,20}`)
)

func ifscValue(v string) string {
	if m := ifscPattern.FindString(strings.ToUpper(v)); m != "" {
		return m
	}
	return v
}

// accountNumberValue keeps the first run of digits (or masked digits) so a
// value like "'000401234567 (INR)" becomes "000401234567".
func accountNumberValue(v string) string {
	if m := accountNumberChars.FindString(v); m != "" {
		return m
	}
	return strings.TrimSpace(v)
}
