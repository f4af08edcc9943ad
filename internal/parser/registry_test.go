package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

var bankFixtures = map[string]string{
	"icici.csv": "ICICI",
	"hdfc.csv":  "HDFC",
	"idfc.csv":  "IDFC FIRST",
	"sbi.csv":   "SBI",
	"axis.csv":  "Axis",
}

func TestDefaultRegistryOrder(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"ICICI", "HDFC", "IDFC FIRST", "SBI", "Axis"}, r.SupportedBanks())
}

func TestDetectFixtures(t *testing.T) {
	r := DefaultRegistry()
	for file, bank := range bankFixtures {
		t.Run(file, func(t *testing.T) {
			content := fixture(t, file)

			p, ok := r.Detect(content)
			require.True(t, ok)
			assert.Equal(t, bank, p.BankName)

			// Detectors are mutually exclusive on real exports.
			var accepted []string
			for _, name := range r.SupportedBanks() {
				candidate, _ := r.GetParserByBankName(name)
				if candidate.Detect(content) {
					accepted = append(accepted, name)
				}
			}
			assert.Equal(t, []string{bank}, accepted)
		})
	}
}

func TestDetectSignals(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "ifsc prefix only",
			content: "Statement of account\nIFSC Code: HDFC0001234\nDate,Details,Amount\n",
			want:    "HDFC",
		},
		{
			name:    "micr bank code only",
			content: "Account statement\nMICR : 400229002\n",
			want:    "ICICI",
		},
		{
			name:    "layout signature only",
			content: "DATE,MODE,PARTICULARS,DEPOSITS,WITHDRAWALS,BALANCE\n02/01/2024,NEFT,Salary,25000,0,75000\n",
			want:    "ICICI",
		},
		{
			name:    "sbi identifier",
			content: "Welcome to OnlineSBI\nTxn Date,Description,Debit,Credit\n",
			want:    "SBI",
		},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := r.Detect(tt.content)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.BankName)
		})
	}
}

func TestDetectNoMatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"two banks named in the header", "HDFC Bank\nIDFC FIRST Bank\nDate,Amount\n01/01/2024,100.00\n"},
		{"bank named only in a narration", "Some Bank\nDate,Description,Amount\n01/01/2024,NEFT-HDFC BANK LTD-SALARY,500.00\n"},
		{"ifsc without a label", "Reference HDFC0001234\nDate,Amount\n"},
		{"plain text", "hello world\nnothing here\n"},
		{"empty", ""},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := r.Detect(tt.content)
			assert.False(t, ok, "detected %q", p.BankName)
		})
	}
}

func TestDetectIgnoresLinesPastPrefix(t *testing.T) {
	content := "Account statement\n"
	for i := 0; i < detectPrefixLines; i++ {
		content += "Remark,nothing to see\n"
	}
	content += "AXIS BANK\n"

	_, ok := DefaultRegistry().Detect(content)
	assert.False(t, ok)
}

func TestRegistryOperations(t *testing.T) {
	r, err := NewRegistry(HDFC(), SBI())
	require.NoError(t, err)
	assert.Equal(t, []string{"HDFC", "SBI"}, r.SupportedBanks())

	t.Run("lookup ignores case and spaces", func(t *testing.T) {
		p, ok := r.GetParserByBankName("  hdfc ")
		require.True(t, ok)
		assert.Equal(t, "HDFC", p.BankName)

		_, ok = r.GetParserByBankName("Metro")
		assert.False(t, ok)
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		dup := HDFC()
		dup.BankName = "hdfc"
		assert.Error(t, r.AddParser(dup))
		assert.Len(t, r.SupportedBanks(), 2)
	})

	t.Run("incomplete parsers are rejected", func(t *testing.T) {
		assert.Error(t, r.AddParser(BankParser{BankName: "Kotak"}))
	})

	t.Run("custom parser is appended", func(t *testing.T) {
		custom := BankParser{
			BankName: "Kotak",
			Detect:   func(string) bool { return true },
			Extract:  func(string) models.CSVParserResult { return models.CSVParserResult{Success: true} },
		}
		require.NoError(t, r.AddParser(custom))
		assert.Equal(t, []string{"HDFC", "SBI", "Kotak"}, r.SupportedBanks())

		// Earlier registrations still win.
		p, ok := r.Detect(fixture(t, "sbi.csv"))
		require.True(t, ok)
		assert.Equal(t, "SBI", p.BankName)

		p, ok = r.Detect("unknown bank")
		require.True(t, ok)
		assert.Equal(t, "Kotak", p.BankName)
	})

	t.Run("remove", func(t *testing.T) {
		assert.True(t, r.RemoveParser("kotak"))
		assert.False(t, r.RemoveParser("kotak"))
		assert.Equal(t, []string{"HDFC", "SBI"}, r.SupportedBanks())
	})

	t.Run("constructor rejects duplicates", func(t *testing.T) {
		_, err := NewRegistry(ICICI(), ICICI())
		assert.Error(t, err)
	})
}
