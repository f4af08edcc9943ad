package parser

import (
	"regexp"
	"strings"
)

// detectPrefixLines bounds how much of a document a detector reads for
// identifiers and layout signatures.
const detectPrefixLines = 30

// signature is the evidence that marks content as one bank's export.
//
// Identifiers and layout headers are only looked for in the prefix, and
// rows that start with a date are left out of it so a narration such as
// "NEFT-HDFC BANK LTD-SALARY" never counts. IFSC and MICR codes must sit on
// a labeled line but may appear anywhere in the content.
type signature struct {
	identifiers []string
	ifscPrefix  string
	micrCode    string
	layouts     [][]string
	excludes    []string
}

var (
	labeledIFSC = regexp.MustCompile(`(?i)\bIFS(?:C)?(?:\s*CODE)?\b[^A-Za-z0-9]{0,6}([A-Z]{4})0[A-Z0-9]{6}\b`)
	labeledMICR = regexp.MustCompile(`(?i)\bMICR(?:\s*(?:CODE|NO))?\b[^0-9]{0,6}(\d{9})\b`)
)

// detectPrefix returns the upper-cased prefix lines and their rows.
func detectPrefix(content string) ([]string, []Row) {
	var (
		lines []string
		rows  []Row
	)
	for _, row := range Tokenize(content) {
		if row.IsBlank() || looksLikeDate(row.Lead()) {
			continue
		}
		lines = append(lines, strings.ToUpper(row.Text()))
		rows = append(rows, row)
		if len(lines) == detectPrefixLines {
			break
		}
	}
	return lines, rows
}

func (sig signature) detect(content string) bool {
	lines, rows := detectPrefix(content)
	prefix := strings.Join(lines, "\n")

	if containsAny(prefix, sig.excludes) {
		return false
	}
	if containsAny(prefix, sig.identifiers) {
		return true
	}
	if sig.ifscPrefix != "" {
		for _, m := range labeledIFSC.FindAllStringSubmatch(content, -1) {
			if strings.EqualFold(m[1], sig.ifscPrefix) {
				return true
			}
		}
	}
	if sig.micrCode != "" {
		// MICR is CCCBBBNNN: city, bank, branch.
		for _, m := range labeledMICR.FindAllStringSubmatch(content, -1) {
			if m[1][3:6] == sig.micrCode {
				return true
			}
		}
	}
	for _, row := range rows {
		h := newHeaderMap(row)
		for _, layout := range sig.layouts {
			if h.has(layout...) {
				return true
			}
		}
	}
	return false
}

// Strong identifiers per bank. Each detector excludes every other bank's
// identifiers, so a document naming two banks in its header is claimed by
// neither.
var (
	iciciIdentifiers = []string{"ICICI BANK", "ICICIBANK"}
	hdfcIdentifiers  = []string{"HDFC BANK", "HDFCBANK"}
	idfcIdentifiers  = []string{"IDFC FIRST", "IDFC BANK", "IDFCFIRST"}
	sbiIdentifiers   = []string{"STATE BANK OF INDIA", "ONLINESBI"}
	axisIdentifiers  = []string{"AXIS BANK", "AXISBANK"}
)

func others(own []string) []string {
	var out []string
	for _, ids := range [][]string{iciciIdentifiers, hdfcIdentifiers, idfcIdentifiers, sbiIdentifiers, axisIdentifiers} {
		if len(ids) > 0 && len(own) > 0 && ids[0] == own[0] {
			continue
		}
		out = append(out, ids...)
	}
	return out
}
