package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// CSVWriter writes extracted transactions as CSV.
type CSVWriter struct {
	// IncludeHeader adds "# key,value" rows describing the statement
	// before the column header.
	IncludeHeader bool
}

// WriteToFile writes res to a CSV file at path.
func (w *CSVWriter) WriteToFile(path string, res models.ParsingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file %q: %w", path, err)
	}
	return nil
}

// Write writes res to out.
func (w *CSVWriter) Write(out io.Writer, res models.ParsingResult) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		for _, kv := range metadataRows(res) {
			if err := writer.Write([]string{"# " + kv[0], kv[1]}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	header := []string{"Date", "Description", "Type", "Amount", "Balance", "Category", "Merchant", "Reference", "Account"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range res.Transactions {
		balance := ""
		if txn.Balance != nil {
			balance = strconv.FormatFloat(*txn.Balance, 'f', 2, 64)
		}
		row := []string{
			txn.Date.Format("2006-01-02"),
			txn.Description,
			string(txn.Type),
			formatAmount(txn.Amount),
			balance,
			txn.Category,
			txn.Merchant,
			txn.Reference,
			txn.Account,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func metadataRows(res models.ParsingResult) [][2]string {
	rows := [][2]string{{"Source", res.Source}}
	if s := res.Statement; s != nil {
		rows = append(rows,
			[2]string{"Bank", s.Bank},
			[2]string{"Account Holder", s.CustomerInfo.Name},
			[2]string{"Account Number", s.AccountSummary.AccountNumber},
			[2]string{"IFSC", s.AccountSummary.IFSC},
			[2]string{"Statement Period", s.AccountSummary.StatementPeriod},
			[2]string{"Opening Balance", formatAmount(s.AccountSummary.OpeningBalance)},
			[2]string{"Closing Balance", formatAmount(s.AccountSummary.ClosingBalance)},
		)
	}
	rows = append(rows, [2]string{"Total Amount", formatAmount(res.TotalAmount)})

	out := rows[:0]
	for _, kv := range rows {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}

func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
