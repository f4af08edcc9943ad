// Package pipeline runs the extraction chain: the optional AI capability,
// then the registered bank parsers, then the generic fallback.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/ai"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// SourceAI names results produced by the AI capability.
const SourceAI = "ai"

// Config controls which attempts run and how the winner is post-processed.
type Config struct {
	EnableAI        bool
	AITimeout       time.Duration
	AutoCategorize  bool
	MergeDuplicates bool
	ValidateAmounts bool
	MinAmount       float64
	MaxAmount       float64 // 0 means unbounded
	Rules           []models.CategoryRule
}

// DefaultConfig enables every post-processing step with the built-in rules.
func DefaultConfig() Config {
	return Config{
		AITimeout:       ai.DefaultTimeout,
		AutoCategorize:  true,
		MergeDuplicates: true,
		ValidateAmounts: true,
		MinAmount:       0.01,
		Rules:           DefaultRules,
	}
}

// Input is one extraction request.
type Input struct {
	Content  string
	Filename string
	FileType models.FileType
	// Account labels the flattened transactions; empty means the statement's
	// account number, then the bank name.
	Account string
	// Bank forces a registered parser by name and skips detection.
	Bank string
}

// Pipeline is safe for concurrent use once built; it holds no per-call state.
type Pipeline struct {
	registry   *parser.Registry
	generic    parser.Generic
	adapter    *ai.Adapter
	capability ai.Capability
	cfg        Config
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCapability attaches an AI capability. It is only called when
// Config.EnableAI is set.
func WithCapability(c ai.Capability) Option {
	return func(p *Pipeline) {
		p.capability = c
	}
}

// WithGeneric replaces the generic fallback, mainly to pin its clock.
func WithGeneric(g parser.Generic) Option {
	return func(p *Pipeline) {
		p.generic = g
	}
}

// New builds a pipeline around registry.
func New(registry *parser.Registry, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: registry,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.capability != nil {
		p.adapter = ai.NewAdapter(p.capability, ai.WithTimeout(cfg.AITimeout), ai.WithLogger(p.logger))
	}
	return p
}

// Registry returns the registry the pipeline dispatches to.
func (p *Pipeline) Registry() *parser.Registry {
	return p.registry
}

// outcome is the uniform shape every attempt returns.
type outcome struct {
	source       string
	transactions []models.ParsedTransaction
	statement    *models.ParsedBankStatement
	err          error
	warnings     []string
}

type attempt struct {
	name string
	run  func(ctx context.Context, in Input) outcome
}

func (p *Pipeline) attempts(in Input) []attempt {
	var list []attempt
	if p.cfg.EnableAI && p.adapter != nil {
		list = append(list, attempt{"ai", p.tryAI})
	}
	return append(list,
		attempt{"registry", p.tryRegistry},
		attempt{"generic", p.tryGeneric},
	)
}

// Extract runs the attempts in order and returns the first success after
// post-processing. Failed attempts only add warnings unless every attempt
// fails. FallbackUsed reports that an earlier attempt failed first.
func (p *Pipeline) Extract(ctx context.Context, in Input) models.ParsingResult {
	log := p.logger.With("filename", in.Filename, "fileType", string(in.FileType))

	var (
		warnings []string
		errs     []string
	)
	for i, a := range p.attempts(in) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("%v: %v", models.ErrService, err))
			break
		}

		out := a.run(ctx, in)
		warnings = append(warnings, out.warnings...)
		if out.err != nil {
			log.Info("extraction attempt failed", "attempt", a.name, "error", out.err)
			warnings = append(warnings, fmt.Sprintf("%s attempt failed: %v", a.name, out.err))
			errs = append(errs, out.err.Error())
			continue
		}

		txns, ppWarnings := p.postProcess(out.transactions)
		warnings = append(warnings, ppWarnings...)
		log.Info("extraction succeeded", "attempt", a.name, "source", out.source, "transactions", len(txns))

		return models.ParsingResult{
			Success:      true,
			Transactions: txns,
			TotalAmount:  totalAmount(txns),
			DateRange:    dateRange(txns),
			Warnings:     warnings,
			Source:       out.source,
			FallbackUsed: i > 0,
			Statement:    out.statement,
		}
	}

	log.Warn("all extraction attempts failed", "errors", len(errs))
	return models.ParsingResult{
		Success:      false,
		Transactions: []models.ParsedTransaction{},
		Errors:       errs,
		Warnings:     warnings,
		FallbackUsed: true,
	}
}

// ExtractStatement runs only the local tiers and returns the statement
// form: the forced or detected bank parser, then the generic fallback.
func (p *Pipeline) ExtractStatement(ctx context.Context, in Input) models.CSVParserResult {
	bp, err := p.selectParser(in)
	if err == nil {
		res := bp.Extract(in.Content)
		if res.Success {
			return res
		}
		p.logger.Debug("bank extractor failed", "bank", bp.BankName, "errors", res.Errors)
		err = fmt.Errorf("%s: %s", bp.BankName, strings.Join(res.Errors, "; "))
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Failed(fmt.Errorf("%w: %w", models.ErrService, ctxErr), err.Error())
	}

	gen := p.generic.Extract(in.Content)
	gen.Warnings = append([]string{err.Error()}, gen.Warnings...)
	if !gen.Success {
		gen.Errors = append([]string{err.Error()}, gen.Errors...)
	}
	return gen
}

func (p *Pipeline) selectParser(in Input) (parser.BankParser, error) {
	if p.registry == nil {
		return parser.BankParser{}, fmt.Errorf("%w: no parser registry configured", models.ErrDetection)
	}
	if in.Bank != "" {
		bp, ok := p.registry.GetParserByBankName(in.Bank)
		if !ok {
			return parser.BankParser{}, fmt.Errorf("%w: unknown bank %q (supported: %s)",
				models.ErrDetection, in.Bank, strings.Join(p.registry.SupportedBanks(), ", "))
		}
		return bp, nil
	}
	bp, ok := p.registry.Detect(in.Content)
	if !ok {
		return parser.BankParser{}, fmt.Errorf("%w: no registered bank format matched", models.ErrDetection)
	}
	return bp, nil
}

func (p *Pipeline) tryAI(ctx context.Context, in Input) outcome {
	res := p.adapter.Extract(ctx, in.Content, in.Filename)
	if !res.Success {
		return outcome{err: errors.New(res.Error), warnings: res.Warnings}
	}
	txns := res.Transactions
	for i := range txns {
		if txns[i].Account == "" {
			txns[i].Account = in.Account
		}
	}
	return outcome{source: SourceAI, transactions: txns, warnings: res.Warnings}
}

func (p *Pipeline) tryRegistry(_ context.Context, in Input) outcome {
	bp, err := p.selectParser(in)
	if err != nil {
		return outcome{err: err}
	}
	res := bp.Extract(in.Content)
	if !res.Success {
		return outcome{err: fmt.Errorf("%s: %s", bp.BankName, strings.Join(res.Errors, "; ")), warnings: res.Warnings}
	}
	if len(res.Data.Transactions) == 0 {
		return outcome{
			err:      fmt.Errorf("%w: %s statement has no transactions", models.ErrExtraction, bp.BankName),
			warnings: res.Warnings,
		}
	}
	return outcome{
		source:       bp.BankName,
		transactions: flatten(res.Data, in.Account),
		statement:    res.Data,
		warnings:     res.Warnings,
	}
}

func (p *Pipeline) tryGeneric(_ context.Context, in Input) outcome {
	res := p.generic.Extract(in.Content)
	if !res.Success {
		return outcome{err: errors.New(strings.Join(res.Errors, "; ")), warnings: res.Warnings}
	}
	return outcome{
		source:       res.Data.Metadata.ExtractedBy,
		transactions: flatten(res.Data, in.Account),
		statement:    res.Data,
		warnings:     res.Warnings,
	}
}

// postProcess applies, in order: categorize, merge duplicates, validate.
func (p *Pipeline) postProcess(txns []models.ParsedTransaction) ([]models.ParsedTransaction, []string) {
	var warnings []string
	if p.cfg.AutoCategorize {
		rules := p.cfg.Rules
		if len(rules) == 0 {
			rules = DefaultRules
		}
		categorize(txns, rules)
	}
	if p.cfg.MergeDuplicates {
		var merged int
		txns, merged = mergeDuplicates(txns)
		if merged > 0 {
			warnings = append(warnings, fmt.Sprintf("merged %d duplicate transactions", merged))
		}
	}
	if p.cfg.ValidateAmounts {
		var dropped []string
		txns, dropped = validateAmounts(txns, p.cfg.MinAmount, p.cfg.MaxAmount)
		warnings = append(warnings, dropped...)
	}
	return txns, warnings
}

// flatten converts statement rows into the cross-bank transaction form.
func flatten(stmt *models.ParsedBankStatement, account string) []models.ParsedTransaction {
	if account == "" {
		account = stmt.AccountSummary.AccountNumber
	}
	if account == "" {
		account = stmt.Bank
	}

	out := make([]models.ParsedTransaction, 0, len(stmt.Transactions))
	for _, bt := range stmt.Transactions {
		date, err := time.Parse("2006-01-02", bt.Date)
		if err != nil {
			continue
		}
		txn := models.ParsedTransaction{
			ID:          uuid.NewString(),
			Date:        date,
			Description: bt.Particulars,
			Amount:      bt.Amount,
			Type:        bt.Type,
			Category:    models.Uncategorized,
			Account:     account,
			Merchant:    inferMerchant(bt.Particulars),
			Reference:   bt.Reference,
		}
		if bt.Balance != 0 {
			balance := bt.Balance
			txn.Balance = &balance
		}
		out = append(out, txn)
	}
	return out
}

func totalAmount(txns []models.ParsedTransaction) float64 {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(decimal.NewFromFloat(t.Amount))
	}
	return sum.Round(2).InexactFloat64()
}

func dateRange(txns []models.ParsedTransaction) models.TimeRange {
	var r models.TimeRange
	for _, t := range txns {
		if r.Start.IsZero() || t.Date.Before(r.Start) {
			r.Start = t.Date
		}
		if r.End.IsZero() || t.Date.After(r.End) {
			r.End = t.Date
		}
	}
	return r
}
