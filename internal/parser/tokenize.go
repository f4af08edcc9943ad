package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Row is one tokenized statement line.
type Row []string

// Cell returns the trimmed cell at i, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Lead returns the first cell.
func (r Row) Lead() string {
	return r.Cell(0)
}

// IsBlank reports whether every cell is empty.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if c != "" {
			return false
		}
	}
	return true
}

// Text joins the non-empty cells with single spaces.
func (r Row) Text() string {
	parts := make([]string, 0, len(r))
	for _, c := range r {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// Tokenize splits statement text into rows of cells.
//
// Double-quoted fields may contain the delimiter, doubled quotes and
// newlines. Blank lines are kept as empty rows because several layouts use
// them to close a section. The delimiter is a comma unless the leading lines
// carry more tabs than commas.
func Tokenize(content string) []Row {
	content = normalizeContent(content)
	if strings.TrimSpace(content) == "" {
		return nil
	}

	delim := detectDelimiter(content)

	var (
		rows     []Row
		row      Row
		field    strings.Builder
		inQuotes bool
	)
	flushField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	flushRow := func() {
		flushField()
		rows = append(rows, row)
		row = nil
	}

	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inQuotes && c == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = false
			}
		case inQuotes:
			field.WriteRune(c)
		case c == '"' && strings.TrimSpace(field.String()) == "":
			field.Reset()
			inQuotes = true
		case c == delim:
			flushField()
		case c == '\n':
			flushRow()
		default:
			field.WriteRune(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}

	// Drop trailing blank rows; they carry no section information.
	for len(rows) > 0 && rows[len(rows)-1].IsBlank() {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// normalizeContent applies NFKC, unifies line endings and drops a BOM.
func normalizeContent(content string) string {
	content = norm.NFKC.String(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimPrefix(content, "\ufeff")
}

func detectDelimiter(content string) rune {
	lines := strings.SplitN(content, "\n", 11)
	if len(lines) > 10 {
		lines = lines[:10]
	}
	sample := strings.Join(lines, "\n")
	if strings.Count(sample, "\t") > strings.Count(sample, ",") {
		return '\t'
	}
	return ','
}

// leadingLines returns up to n non-empty raw lines from the top of content.
func leadingLines(content string, n int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}
