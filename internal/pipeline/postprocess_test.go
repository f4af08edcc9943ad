package pipeline

import (
	"testing"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func txn(date, desc string, amount float64) models.ParsedTransaction {
	return models.ParsedTransaction{Date: day(date), Description: desc, Amount: amount, Category: models.Uncategorized}
}

func TestMergeDuplicates(t *testing.T) {
	in := []models.ParsedTransaction{
		txn("2024-01-03", "UPI-SWIGGY", 450),
		txn("2024-01-03", "upi-swiggy ", 450),
		txn("2024-01-03", "UPI-SWIGGY", 450.01),
		txn("2024-01-04", "UPI-SWIGGY", 450),
	}
	in[0].ID = "first"

	out, merged := mergeDuplicates(in)
	if merged != 1 {
		t.Fatalf("merged = %d, want 1", merged)
	}
	if len(out) != 3 || out[0].ID != "first" {
		t.Errorf("mergeDuplicates() = %+v, want the first of each key kept in order", out)
	}
}

func TestValidateAmounts(t *testing.T) {
	in := []models.ParsedTransaction{
		txn("2024-01-01", "tiny", 0.001),
		txn("2024-01-01", "ok", 50),
		txn("2024-01-01", "huge", 5000),
	}

	tests := []struct {
		name    string
		lo, hi  float64
		kept    int
		dropped int
	}{
		{"lower bound only", 0.01, 0, 2, 1},
		{"both bounds", 0.01, 1000, 1, 2},
		{"no bounds", 0, 0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, warnings := validateAmounts(in, tt.lo, tt.hi)
			if len(out) != tt.kept || len(warnings) != tt.dropped {
				t.Errorf("validateAmounts() kept %d dropped %d, want %d and %d", len(out), len(warnings), tt.kept, tt.dropped)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	txns := []models.ParsedTransaction{
		txn("2024-01-01", "NEFT SALARY JAN", 100),
		txn("2024-01-01", "ATM CASH WDL", 100),
		txn("2024-01-01", "UPI/P2M/1234/merchant", 100),
		txn("2024-01-01", "Something else", 100),
		{Description: "ZOMATO", Category: "custom"},
	}
	txns[2].Merchant = "Netflix"

	categorize(txns, DefaultRules)

	want := []string{"income", "cash", "entertainment", models.Uncategorized, "custom"}
	for i, w := range want {
		if txns[i].Category != w {
			t.Errorf("txns[%d].Category = %q, want %q", i, txns[i].Category, w)
		}
	}
}

func TestInferMerchant(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"UPI/P2M/401234567890/AMAZON PAY", "AMAZON PAY"},
		{"UPI-SWIGGY-SWIGGY@ICICI-401234567890", "SWIGGY"},
		{"IMPS/P2A/401234567890/RAHUL MEHTA/Rent share", "RAHUL MEHTA"},
		{"MMT/IMPS/401234567890/PRIYA", "PRIYA"},
		{"POS 4111XXXX1234 BIGBAZAAR MUMBAI", "BIGBAZAAR MUMBAI"},
		{"POS BLUE TOKAI 4111XXXX1234", "BLUE TOKAI"},
		{"NEFT-HDFC0000001-ACME CORP", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := inferMerchant(tt.description); got != tt.want {
			t.Errorf("inferMerchant(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}
