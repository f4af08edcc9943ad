package models

import "time"

// CSVParserResult is the rich result of a local (registry or generic) extraction.
type CSVParserResult struct {
	Success  bool                 `json:"success"`
	Data     *ParsedBankStatement `json:"data"`
	Errors   []string             `json:"errors"`
	Warnings []string             `json:"warnings"`
}

// Failed builds an unsuccessful result from err and any warnings gathered so far.
func Failed(err error, warnings ...string) CSVParserResult {
	return CSVParserResult{
		Success:  false,
		Errors:   []string{err.Error()},
		Warnings: warnings,
	}
}

// TimeRange is the span covered by a set of parsed transactions.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParsingResult is the pipeline's output contract.
type ParsingResult struct {
	Success      bool                 `json:"success"`
	Transactions []ParsedTransaction  `json:"transactions"`
	TotalAmount  float64              `json:"totalAmount"`
	DateRange    TimeRange            `json:"dateRange"`
	Errors       []string             `json:"errors,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
	Source       string               `json:"source,omitempty"`
	FallbackUsed bool                 `json:"fallbackUsed"`
	Statement    *ParsedBankStatement `json:"statement,omitempty"`
}
