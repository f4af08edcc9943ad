// Package ai validates and normalizes transactions returned by an external
// extraction capability. The transport to the provider lives elsewhere; this
// package only sees it through the Capability interface.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// DefaultTimeout bounds one capability call.
const DefaultTimeout = 30 * time.Second

// Request is what the capability is asked to read.
type Request struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// RawTransaction is an untrusted item from the capability. Amount is kept
// as raw JSON-ish input so strings like "1,200.00" can still be checked.
type RawTransaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      any    `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Merchant    string `json:"merchant,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// Capability is an external service that turns statement text into
// candidate transactions.
type Capability interface {
	Extract(ctx context.Context, req Request) ([]RawTransaction, error)
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(ctx context.Context, req Request) ([]RawTransaction, error)

func (f CapabilityFunc) Extract(ctx context.Context, req Request) ([]RawTransaction, error) {
	return f(ctx, req)
}

// Result is the adapter's uniform outcome. FallbackUsed is set whenever the
// caller should move on to local extraction.
type Result struct {
	Success      bool                       `json:"success"`
	Transactions []models.ParsedTransaction `json:"transactions"`
	Error        string                     `json:"error,omitempty"`
	FallbackUsed bool                       `json:"fallbackUsed"`
	Warnings     []string                   `json:"warnings,omitempty"`
}

// Adapter guards a Capability: it bounds the call, recovers from panics and
// drops items that fail validation.
type Adapter struct {
	capability Capability
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the adapter's logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdapter wraps c.
func NewAdapter(c Capability, opts ...Option) *Adapter {
	a := &Adapter{
		capability: c,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type callOutcome struct {
	items []RawTransaction
	err   error
}

// Extract asks the capability for transactions. It never returns an error:
// every failure becomes a Result with FallbackUsed set.
func (a *Adapter) Extract(ctx context.Context, content, filename string) Result {
	if a == nil || a.capability == nil {
		return failure(fmt.Errorf("%w: no extraction capability configured", models.ErrService))
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// Buffered so a late reply after the timeout does not leak the goroutine.
	done := make(chan callOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callOutcome{err: fmt.Errorf("capability panicked: %v", r)}
			}
		}()
		items, err := a.capability.Extract(ctx, Request{Content: content, Filename: filename})
		done <- callOutcome{items: items, err: err}
	}()

	var out callOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	if out.err != nil {
		if errors.Is(out.err, context.DeadlineExceeded) {
			out.err = fmt.Errorf("timed out after %s: %w", a.timeout, out.err)
		}
		err := fmt.Errorf("%w: %w", models.ErrService, out.err)
		a.logger.Warn("ai extraction failed", "filename", filename, "error", err)
		return failure(err)
	}

	txns, warnings := a.normalize(out.items)
	if len(txns) == 0 {
		err := fmt.Errorf("%w: capability returned no valid transactions", models.ErrService)
		res := failure(err)
		res.Warnings = warnings
		return res
	}

	a.logger.Info("ai extraction succeeded", "filename", filename, "transactions", len(txns), "dropped", len(warnings))
	return Result{
		Success:      true,
		Transactions: txns,
		Warnings:     warnings,
	}
}

func failure(err error) Result {
	return Result{
		Success:      false,
		Transactions: []models.ParsedTransaction{},
		Error:        err.Error(),
		FallbackUsed: true,
	}
}

// normalize applies the validation boundary to every item, dropping the
// ones that cannot be trusted.
func (a *Adapter) normalize(items []RawTransaction) ([]models.ParsedTransaction, []string) {
	txns := make([]models.ParsedTransaction, 0, len(items))
	var warnings []string
	for i, item := range items {
		txn, err := validate(item)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("item %d dropped: %v", i, err))
			a.logger.Debug("ai item dropped", "index", i, "error", err)
			continue
		}
		txns = append(txns, txn)
	}
	return txns, warnings
}

func validate(item RawTransaction) (models.ParsedTransaction, error) {
	date, err := parseDate(item.Date)
	if err != nil {
		return models.ParsedTransaction{}, fmt.Errorf("%w: date %q: %w", models.ErrValidation, item.Date, err)
	}
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		return models.ParsedTransaction{}, fmt.Errorf("%w: missing description", models.ErrValidation)
	}
	amount, ok := numeric(item.Amount)
	if !ok {
		return models.ParsedTransaction{}, fmt.Errorf("%w: amount %v is not numeric", models.ErrValidation, item.Amount)
	}
	if math.Abs(amount) == 0 {
		return models.ParsedTransaction{}, fmt.Errorf("%w: amount is zero", models.ErrValidation)
	}

	kind := models.Debit
	if strings.EqualFold(strings.TrimSpace(item.Type), string(models.Credit)) {
		kind = models.Credit
	}
	category := strings.TrimSpace(item.Category)
	if category == "" {
		category = models.Uncategorized
	}

	return models.ParsedTransaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: desc,
		Amount:      math.Abs(amount),
		Type:        kind,
		Category:    category,
		Merchant:    strings.TrimSpace(item.Merchant),
		Reference:   strings.TrimSpace(item.Reference),
	}, nil
}

// parseDate accepts RFC 3339 timestamps and every shape the statement
// parsers understand, day-first when ambiguous.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, ok := parser.ParseDate(s, true); ok {
		return t, nil
	}
	return time.Time{}, errors.New("unrecognized format")
}

// numeric accepts JSON numbers and numeric strings. NaN and infinities are
// rejected.
func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
