// Package extractor turns PDF statements into the row text the parsers read.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned when no method produced usable text, usually
// because the PDF is scanned or uses fonts without a text mapping.
var ErrUnreadable = errors.New("no readable text in PDF")

// ExtractText returns the text of a PDF held in memory, one line per text
// row. Runs within a row are tab-separated, so column headers survive as
// cells for the layout parsers.
func ExtractText(data []byte) (string, error) {
	pages, err := extractWithLibrary(data)
	if err != nil {
		return "", fmt.Errorf("extracting PDF text: %w", err)
	}
	if !isReadableText(pages) {
		return "", ErrUnreadable
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractWithLibrary tries the row-based method first and falls back to
// plain text extraction.
func extractWithLibrary(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("PDF has no pages")
	}

	// Method 1: GetTextByRow keeps the table layout.
	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	// Method 2: whole-document plain text.
	plain := extractByReaderPlainText(r)
	if isReadableText([]string{plain}) {
		return []string{plain}, nil
	}
	return pages, nil
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var cells []string
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					cells = append(cells, s)
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, "\t"))
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// statementWords appear in virtually every statement. Text with none of
// them is treated as garbage from an unmapped font.
var statementWords = []string{
	"bank", "account", "balance", "date", "statement", "total", "amount",
	"credit", "debit", "transaction", "narration", "particulars", "withdrawal",
	"deposit", "ifsc", "branch", "opening", "closing",
}

// isReadableText requires more than 50 characters, mostly printable ASCII,
// and at least one statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

// textQuality is the share of ASCII letters, digits, whitespace and common
// statement punctuation. unicode.IsLetter is avoided because garbage from
// identity-encoded fonts is often accented letters.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
				unicode.IsSpace(r) || strings.ContainsRune(".,-/:;()'\"₹$%&@#*+=", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
