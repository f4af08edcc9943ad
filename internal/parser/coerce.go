package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoDate is the canonical layout of BankTransaction.Date.
const isoDate = "2006-01-02"

var (
	currencyWordPattern = regexp.MustCompile(`(?i)\b(?:rs\.?|inr)`)
	nonAmountChars      = regexp.MustCompile(`[^0-9.\-]`)
	amountCellPattern   = regexp.MustCompile(`(?i)^[\s(+\-₹$]*\d[\d,]*(?:\.\d+)?\s*(?:cr|dr|-)?\s*\)?$`)
)

// ParseAmount converts strings like "₹1,00,000.00", "Rs. 250" or "-1,234.56"
// to a float64. Everything except digits, '.' and '-' is discarded; empty
// or unparseable input yields 0.
func ParseAmount(s string) float64 {
	s = currencyWordPattern.ReplaceAllString(s, "")
	s = nonAmountChars.ReplaceAllString(s, "")

	// Some exports print the sign after the figure: "1,234.00-".
	if strings.HasSuffix(s, "-") && !strings.HasPrefix(s, "-") {
		s = "-" + strings.TrimSuffix(s, "-")
	}
	if s == "" || s == "-" || s == "." {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// isAmountCell reports whether s holds nothing but a figure.
func isAmountCell(s string) bool {
	s = strings.TrimSpace(currencyWordPattern.ReplaceAllString(s, ""))
	return s != "" && !looksLikeDate(s) && amountCellPattern.MatchString(s)
}

// Date shapes, tried in order. The numeric groups may hold the year in
// either end position; resolveDate decides which.
var (
	dateSlashPattern = regexp.MustCompile(`^(\d{1,4})/(\d{1,2})/(\d{1,4})\b`)
	dateDashPattern  = regexp.MustCompile(`^(\d{1,4})-(\d{1,2})-(\d{1,4})\b`)
	dateISOPattern   = regexp.MustCompile(`^(\d{4})[.\-/](\d{1,2})[.\-/](\d{1,2})\b`)
	dateMonthPattern = regexp.MustCompile(`(?i)^(\d{1,2})[\s\-/]+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[\s,\-/]+(\d{2,4})\b`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseDate parses the leading date of s. dayFirst is the bank's declared
// convention and only matters when the groups are ambiguous.
func ParseDate(s string, dayFirst bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, pat := range []*regexp.Regexp{dateSlashPattern, dateDashPattern, dateISOPattern} {
		if m := pat.FindStringSubmatch(s); m != nil {
			return resolveDate(m[1], m[2], m[3], dayFirst)
		}
	}

	if m := dateMonthPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthNumbers[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return buildDate(year, month, day)
	}

	return time.Time{}, false
}

// resolveDate picks the year position: a 4-digit or >31 first group is
// year-first, a 4-digit or >31 third group is year-last, and otherwise the
// year is last with day/month order taken from dayFirst unless one of the
// groups can only be a day.
func resolveDate(g1, g2, g3 string, dayFirst bool) (time.Time, bool) {
	a, _ := strconv.Atoi(g1)
	b, _ := strconv.Atoi(g2)
	c, _ := strconv.Atoi(g3)

	if len(g1) == 4 || a > 31 {
		return buildDate(fullYear(a), b, c)
	}

	year := fullYear(c)
	switch {
	case a > 12:
		return buildDate(year, b, a)
	case b > 12:
		return buildDate(year, a, b)
	case dayFirst:
		return buildDate(year, b, a)
	default:
		return buildDate(year, a, b)
	}
}

func fullYear(y int) int {
	if y < 100 {
		return 2000 + y
	}
	return y
}

func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t in the canonical BankTransaction date form.
func FormatDate(t time.Time) string {
	return t.Format(isoDate)
}

// normalizeDate parses s and returns it in canonical form.
func normalizeDate(s string, dayFirst bool) (string, bool) {
	t, ok := ParseDate(s, dayFirst)
	if !ok {
		return "", false
	}
	return FormatDate(t), true
}

// looksLikeDate reports whether s starts with any supported date shape.
func looksLikeDate(s string) bool {
	_, ok := ParseDate(s, true)
	return ok
}
