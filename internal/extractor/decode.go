package extractor

import (
	"errors"
	"fmt"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ErrUnsupported is returned for file types that need an external converter.
var ErrUnsupported = errors.New("unsupported file type")

// Decode turns raw file bytes into statement text. PDFs go through text
// extraction; spreadsheets and documents must be exported to CSV or text
// first. Everything else is taken as text.
func Decode(data []byte, ft models.FileType) (string, error) {
	switch ft {
	case models.FilePDF:
		return ExtractText(data)
	case models.FileXLSX, models.FileDOCX:
		return "", fmt.Errorf("%w: %s files must be exported to CSV or text first", ErrUnsupported, ft)
	default:
		return string(data), nil
	}
}
