package pipeline

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// DefaultRules is the built-in keyword table used when configuration
// supplies none. Rules are checked in order; the first hit wins.
var DefaultRules = []models.CategoryRule{
	{Name: "income", Keywords: []string{"SALARY", "PAYROLL", "INTEREST CREDIT", "INT.PD", "DIVIDEND", "REFUND"}},
	{Name: "food", Keywords: []string{"SWIGGY", "ZOMATO", "RESTAURANT", "CAFE", "DOMINOS", "MCDONALD"}},
	{Name: "groceries", Keywords: []string{"BIGBASKET", "BIGBAZAAR", "DMART", "GROFERS", "BLINKIT", "GROCERY"}},
	{Name: "shopping", Keywords: []string{"AMAZON", "FLIPKART", "MYNTRA", "AJIO"}},
	{Name: "transport", Keywords: []string{"UBER", "OLA", "IRCTC", "RAPIDO", "FUEL", "PETROL", "FASTAG"}},
	{Name: "utilities", Keywords: []string{"ELECTRICITY", "BESCOM", "AIRTEL", "JIO", "BROADBAND", "GAS BILL", "WATER BILL"}},
	{Name: "entertainment", Keywords: []string{"NETFLIX", "SPOTIFY", "HOTSTAR", "BOOKMYSHOW", "PRIME VIDEO"}},
	{Name: "cash", Keywords: []string{"ATM", "CASH WDL", "CASH WITHDRAWAL", "NWD"}},
	{Name: "fees", Keywords: []string{"CHARGES", "CHRG", "GST", "SMS ALERT", "ANNUAL FEE"}},
	{Name: "transfer", Keywords: []string{"NEFT", "IMPS", "RTGS", "TRANSFER"}},
}

// categorize fills Category on transactions that still have none.
func categorize(txns []models.ParsedTransaction, rules []models.CategoryRule) {
	for i := range txns {
		if txns[i].Category != "" && txns[i].Category != models.Uncategorized {
			continue
		}
		txns[i].Category = matchCategory(txns[i], rules)
	}
}

func matchCategory(txn models.ParsedTransaction, rules []models.CategoryRule) string {
	text := strings.ToUpper(txn.Description + " " + txn.Merchant)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(text, strings.ToUpper(kw)) {
				return rule.Name
			}
		}
	}
	return models.Uncategorized
}

type duplicateKey struct {
	date        string
	amount      int64
	description string
}

func keyOf(txn models.ParsedTransaction) duplicateKey {
	return duplicateKey{
		date:        txn.Date.Format("2006-01-02"),
		amount:      int64(math.Round(txn.Amount * 100)),
		description: strings.ToUpper(strings.Join(strings.Fields(txn.Description), " ")),
	}
}

// mergeDuplicates keeps the first transaction of each (date, amount,
// description) key, preserving order.
func mergeDuplicates(txns []models.ParsedTransaction) ([]models.ParsedTransaction, int) {
	seen := make(map[duplicateKey]bool, len(txns))
	out := txns[:0:0]
	for _, txn := range txns {
		k := keyOf(txn)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, txn)
	}
	return out, len(txns) - len(out)
}

// validateAmounts drops transactions outside [lo, hi]. A zero hi means
// no upper bound.
func validateAmounts(txns []models.ParsedTransaction, lo, hi float64) ([]models.ParsedTransaction, []string) {
	out := txns[:0:0]
	var warnings []string
	for _, txn := range txns {
		if txn.Amount < lo || (hi > 0 && txn.Amount > hi) {
			warnings = append(warnings, fmt.Sprintf("%v: %s %q amount %.2f outside [%.2f, %.2f]",
				models.ErrValidation, txn.Date.Format("2006-01-02"), txn.Description, txn.Amount, lo, hi))
			continue
		}
		out = append(out, txn)
	}
	return out, warnings
}

var (
	vpaToken     = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z]+$`)
	maskedNumber = regexp.MustCompile(`^[0-9Xx*]+$`)
	narrationTag = map[string]bool{
		"UPI": true, "IMPS": true, "POS": true, "P2M": true, "P2A": true, "MMT": true,
		"CR": true, "DR": true, "PAYMENT": true, "PAY": true, "TO": true, "FROM": true,
	}
)

// inferMerchant pulls a counterparty out of UPI, IMPS and card (POS)
// narrations such as "UPI/P2M/401234567890/AMAZON PAY" or
// "UPI-SWIGGY-SWIGGY@ICICI-401234567890".
func inferMerchant(description string) string {
	upper := strings.ToUpper(strings.TrimSpace(description))
	switch {
	case strings.HasPrefix(upper, "UPI"), strings.HasPrefix(upper, "IMPS"), strings.HasPrefix(upper, "MMT/IMPS"):
		parts := strings.FieldsFunc(description, func(r rune) bool { return r == '/' || r == '-' })
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" || narrationTag[strings.ToUpper(p)] || maskedNumber.MatchString(p) || vpaToken.MatchString(p) {
				continue
			}
			return tidyName(p)
		}
	case strings.HasPrefix(upper, "POS"):
		var words []string
		for _, w := range strings.Fields(description)[1:] {
			if strings.IndexFunc(w, unicode.IsDigit) >= 0 || maskedNumber.MatchString(w) {
				if len(words) > 0 {
					break
				}
				continue
			}
			words = append(words, w)
			if len(words) == 2 {
				break
			}
		}
		return tidyName(strings.Join(words, " "))
	}
	return ""
}

func tidyName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
