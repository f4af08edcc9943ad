package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")

// DecodeResponse turns a provider reply into raw items. It accepts a bare
// JSON array, an object with a "transactions" array, or either of those
// wrapped in a markdown code fence.
func DecodeResponse(body []byte) ([]RawTransaction, error) {
	body = bytes.TrimSpace(body)
	if m := fencePattern.FindSubmatch(body); m != nil {
		body = m[1]
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response", models.ErrService)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	switch body[0] {
	case '[':
		var items []RawTransaction
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: decode array: %w", models.ErrService, err)
		}
		return items, nil
	case '{':
		var wrapper struct {
			Transactions *[]RawTransaction `json:"transactions"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("%w: decode object: %w", models.ErrService, err)
		}
		if wrapper.Transactions == nil {
			return nil, fmt.Errorf("%w: response object has no transactions field", models.ErrService)
		}
		return *wrapper.Transactions, nil
	default:
		return nil, fmt.Errorf("%w: response is not JSON", models.ErrService)
	}
}
