package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// BankParser pairs a bank's format detector with its section extractor.
type BankParser struct {
	BankName string
	Detect   func(content string) bool
	Extract  func(content string) models.CSVParserResult
}

// Registry is an ordered set of bank parsers. The first parser whose
// detector accepts the content wins, so registration order is part of the
// contract.
//
// A Registry is populated at startup and only read afterwards; it is safe
// to share between goroutines as long as nobody calls AddParser or
// RemoveParser concurrently with Detect.
type Registry struct {
	parsers []BankParser
}

// NewRegistry returns a registry holding parsers in the given order.
func NewRegistry(parsers ...BankParser) (*Registry, error) {
	r := &Registry{}
	for _, p := range parsers {
		if err := r.AddParser(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns the built-in banks in their documented order:
// ICICI, HDFC, IDFC FIRST, SBI, Axis.
func DefaultRegistry() *Registry {
	return &Registry{parsers: []BankParser{
		ICICI(),
		HDFC(),
		IDFCFirst(),
		SBI(),
		Axis(),
	}}
}

// AddParser appends p. Bank names are unique, compared case-insensitively.
func (r *Registry) AddParser(p BankParser) error {
	if p.BankName == "" || p.Detect == nil || p.Extract == nil {
		return fmt.Errorf("parser %q is incomplete", p.BankName)
	}
	if _, ok := r.GetParserByBankName(p.BankName); ok {
		return fmt.Errorf("parser for %q already registered", p.BankName)
	}
	r.parsers = append(r.parsers, p)
	return nil
}

// RemoveParser drops the named parser and reports whether it was present.
func (r *Registry) RemoveParser(bankName string) bool {
	for i, p := range r.parsers {
		if strings.EqualFold(p.BankName, bankName) {
			r.parsers = append(r.parsers[:i:i], r.parsers[i+1:]...)
			return true
		}
	}
	return false
}

// GetParserByBankName looks a parser up by name, ignoring case.
func (r *Registry) GetParserByBankName(name string) (BankParser, bool) {
	name = strings.TrimSpace(name)
	for _, p := range r.parsers {
		if strings.EqualFold(p.BankName, name) {
			return p, true
		}
	}
	return BankParser{}, false
}

// SupportedBanks lists bank names in registration order.
func (r *Registry) SupportedBanks() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.BankName
	}
	return names
}

// Detect returns the first parser whose detector accepts content.
func (r *Registry) Detect(content string) (BankParser, bool) {
	for _, p := range r.parsers {
		if p.Detect(content) {
			return p, true
		}
	}
	return BankParser{}, false
}

// fromLayout builds a BankParser from a signature and a layout.
func fromLayout(sig signature, l *layout) BankParser {
	return BankParser{
		BankName: l.bank,
		Detect:   sig.detect,
		Extract:  l.extract,
	}
}
