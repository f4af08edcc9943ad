package parser

import (
	"strings"
	"unicode"
)

// normalizeLabel upper-cases a cell, collapses whitespace and drops
// trailing ':' and '.' so "Withdrawal Amt." and "WITHDRAWAL AMT" compare equal.
func normalizeLabel(s string) string {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	return strings.TrimRight(s, ":.- ")
}

// splitLabel splits "Label : value" cells. ok is false when the cell has no colon.
func splitLabel(cell string) (label, value string, ok bool) {
	idx := strings.Index(cell, ":")
	if idx <= 0 {
		return "", "", false
	}
	value = strings.TrimSpace(cell[idx+1:])
	// "Name :- JOHN" style separators.
	if strings.HasPrefix(value, "-") && (len(value) == 1 || !unicode.IsDigit(rune(value[1]))) {
		value = strings.TrimSpace(value[1:])
	}
	return normalizeLabel(cell[:idx]), value, true
}

// labelValue looks for one of labels in row and returns the value that
// follows it, either in the same cell after a colon or in the next non-empty
// cell. With prefix set, a cell only has to start with the label.
func labelValue(row Row, prefix bool, labels ...string) (string, bool) {
	for i, cell := range row {
		if cell == "" {
			continue
		}
		key, inline, hasColon := splitLabel(cell)
		if !hasColon {
			key = normalizeLabel(cell)
		}
		if !labelMatches(key, prefix, labels) {
			continue
		}
		if inline != "" {
			return inline, true
		}
		for _, next := range row[i+1:] {
			next = strings.TrimSpace(strings.TrimLeft(next, ":"))
			if next != "" {
				return next, true
			}
		}
	}
	return "", false
}

func labelMatches(key string, prefix bool, labels []string) bool {
	for _, l := range labels {
		if key == l {
			return true
		}
		if prefix && strings.HasPrefix(key, l+" ") {
			return true
		}
	}
	return false
}

// headerMap maps normalized column labels to cell positions.
type headerMap struct {
	cols  map[string]int
	first int
}

func newHeaderMap(row Row) headerMap {
	h := headerMap{cols: make(map[string]int), first: -1}
	for i, cell := range row {
		label := normalizeLabel(cell)
		if label == "" {
			continue
		}
		if _, dup := h.cols[label]; !dup {
			h.cols[label] = i
		}
		if h.first < 0 {
			h.first = i
		}
	}
	return h
}

// index returns the position of the first alias present, or -1.
func (h headerMap) index(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := h.cols[a]; ok {
			return i
		}
	}
	return -1
}

// has reports whether every label is present.
func (h headerMap) has(labels ...string) bool {
	for _, l := range labels {
		if _, ok := h.cols[l]; !ok {
			return false
		}
	}
	return true
}

// get returns the cell under the first alias present.
func (h headerMap) get(row Row, aliases ...string) string {
	return row.Cell(h.index(aliases...))
}

// lead returns the cell under the header's first labeled column, so layouts
// with an empty leading column still have a meaningful leading cell.
func (h headerMap) lead(row Row) string {
	if h.first < 0 {
		return row.Lead()
	}
	return row.Cell(h.first)
}

func containsAny(text string, needles []string) bool {
	upper := strings.ToUpper(text)
	for _, n := range needles {
		if n != "" && strings.Contains(upper, n) {
			return true
		}
	}
	return false
}

// isTotalRow matches "Total", "Sub Total", "Grand Total" and similar rows.
func isTotalRow(row Row) bool {
	for _, cell := range row {
		label := normalizeLabel(cell)
		if label == "" {
			continue
		}
		switch {
		case label == "TOTAL", label == "TOTALS", label == "TRANSACTION TOTAL", label == "GRAND TOTAL":
			return true
		case strings.HasPrefix(label, "SUB TOTAL"), strings.HasPrefix(label, "SUBTOTAL"):
			return true
		case strings.HasPrefix(label, "TOTAL "):
			return true
		}
	}
	return false
}

// isSeparatorRow matches rule lines such as "-----" or "*****".
func isSeparatorRow(row Row) bool {
	text := row.Text()
	if text == "" {
		return false
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var broughtForwardMarkers = []string{"OPENING BALANCE", "BALANCE FORWARD", "BROUGHT FORWARD", "BALANCE B/F"}

// isBroughtForward reports whether a ledger row only restates the opening balance.
func isBroughtForward(particulars, mode string) bool {
	if normalizeLabel(mode) == "B/F" || normalizeLabel(particulars) == "B/F" {
		return true
	}
	return containsAny(particulars, broughtForwardMarkers)
}

func isClosingBalance(particulars string) bool {
	return containsAny(particulars, []string{"CLOSING BALANCE", "BALANCE CARRIED FORWARD", "BALANCE C/F"})
}

var honorifics = []string{"MR ", "MR. ", "MRS ", "MRS. ", "MS ", "MS. ", "MISS ", "M/S ", "M/S. ", "DR ", "DR. "}

// honorificName returns the leading cell of a "MR. NAME" style line. Cells
// carrying a label are never names.
func honorificName(row Row) (string, bool) {
	for _, c := range row {
		if c == "" {
			continue
		}
		if strings.Contains(c, ":") {
			return "", false
		}
		upper := strings.ToUpper(c)
		for _, h := range honorifics {
			if strings.HasPrefix(upper, h) {
				return c, true
			}
		}
		return "", false
	}
	return "", false
}
