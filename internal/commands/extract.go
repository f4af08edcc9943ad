package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

type extractOptions struct {
	bank     string
	account  string
	output   string
	fileType string
	header   bool
	asJSON   bool
	jobs     int
}

func newExtractCommand(get func() *env) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract <statement> [statement ...]",
		Short: "Extract transactions from statement files into CSV",
		Long: `Extract transactions from one or more statement exports.

Each input is written next to itself as <name>_transactions.csv unless --output
is given (single input only) or --output=- sends it to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "" && opts.output != "-" && len(args) > 1 {
				return fmt.Errorf("--output can only be used with a single input")
			}
			return runExtract(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), get(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.bank, "bank", "", "force a bank parser by name (see 'banks')")
	cmd.Flags().StringVar(&opts.account, "account", "", "account label for extracted transactions")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path, or - for stdout")
	cmd.Flags().StringVar(&opts.fileType, "file-type", "", "override file type (csv, pdf, text)")
	cmd.Flags().BoolVar(&opts.header, "header", true, "include statement metadata rows in CSV")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "write the full JSON result instead of CSV")
	cmd.Flags().IntVar(&opts.jobs, "jobs", runtime.NumCPU(), "files converted in parallel")

	return cmd
}

type fileReport struct {
	input  string
	output string
	result models.ParsingResult
	err    error
}

func runExtract(ctx context.Context, stdout, stderr io.Writer, e *env, inputs []string, opts extractOptions) error {
	reports := make([]fileReport, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.jobs, 1))
	for i, path := range inputs {
		g.Go(func() error {
			reports[i] = extractFile(gctx, e.pipeline, path, opts)
			// A bad file is reported, not fatal to the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if opts.output == "-" && r.err == nil && r.result.Success {
			if err := emit(stdout, r.result, opts); err != nil {
				return err
			}
		}
		out := stdout
		if opts.output == "-" {
			// Keep stdout machine-readable.
			if r.err == nil && r.result.Success {
				continue
			}
			out = stderr
		}
		summarize(out, r)
		if r.err != nil || !r.result.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(inputs))
	}
	return nil
}

func extractFile(ctx context.Context, p *pipeline.Pipeline, path string, opts extractOptions) fileReport {
	rep := fileReport{input: path}

	data, err := os.ReadFile(path)
	if err != nil {
		rep.err = fmt.Errorf("reading %s: %w", path, err)
		return rep
	}
	ft := models.InferFileType(path)
	if opts.fileType != "" {
		ft = models.ParseFileType(opts.fileType)
	}
	content, err := extractor.Decode(data, ft)
	if err != nil {
		rep.err = err
		return rep
	}

	rep.result = p.Extract(ctx, pipeline.Input{
		Content:  content,
		Filename: filepath.Base(path),
		FileType: ft,
		Account:  opts.account,
		Bank:     opts.bank,
	})
	if !rep.result.Success || opts.output == "-" {
		return rep
	}

	rep.output = opts.output
	if rep.output == "" {
		ext := ".csv"
		if opts.asJSON {
			ext = ".json"
		}
		rep.output = strings.TrimSuffix(path, filepath.Ext(path)) + "_transactions" + ext
	}
	f, err := os.Create(rep.output)
	if err != nil {
		rep.err = fmt.Errorf("failed to create output file %q: %w", rep.output, err)
		return rep
	}
	rep.err = emitAndClose(f, rep.output, rep.result, opts)
	return rep
}

// emitAndClose writes res to wc and closes it; a failed close means the
// output may be incomplete and is reported like a failed write.
func emitAndClose(wc io.WriteCloser, name string, res models.ParsingResult, opts extractOptions) error {
	if err := emit(wc, res, opts); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close output file %q: %w", name, err)
	}
	return nil
}

func emit(w io.Writer, res models.ParsingResult, opts extractOptions) error {
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	cw := &writer.CSVWriter{IncludeHeader: opts.header}
	return cw.Write(w, res)
}

// summarize prints a short per-file report.
func summarize(w io.Writer, r fileReport) {
	fmt.Fprintf(w, "Processing: %s\n", r.input)
	if r.err != nil {
		fmt.Fprintf(w, "  Error: %v\n", r.err)
		return
	}
	res := r.result
	if !res.Success {
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  Error: %s\n", e)
		}
		return
	}
	fmt.Fprintf(w, "  Source: %s\n", res.Source)
	fmt.Fprintf(w, "  Found %d transaction(s), total %.2f\n", len(res.Transactions), res.TotalAmount)
	if s := res.Statement; s != nil {
		if s.CustomerInfo.Name != "" {
			fmt.Fprintf(w, "  Account holder: %s\n", s.CustomerInfo.Name)
		}
		if s.AccountSummary.AccountNumber != "" {
			fmt.Fprintf(w, "  Account number: %s\n", s.AccountSummary.AccountNumber)
		}
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  Warning: %s\n", warn)
	}
	if r.output != "" {
		fmt.Fprintf(w, "  Output: %s\n", r.output)
	}
}
