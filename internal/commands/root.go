package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/logging"
	"github.com/insightdelivered/statement-extractor/internal/parser"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
)

// Version is the CLI version string.
const Version = "2.0.0"

// env is what every subcommand shares: configuration, a logger and one
// pipeline around one registry.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
}

func newEnv(configPath string, logOut io.Writer) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter(cfg.Logging, logOut)

	pc := pipeline.DefaultConfig()
	pc.EnableAI = cfg.Pipeline.AIEnabled
	pc.AITimeout = cfg.Pipeline.AITimeout
	pc.AutoCategorize = cfg.Pipeline.AutoCategorize
	pc.MergeDuplicates = cfg.Pipeline.MergeDuplicates
	pc.ValidateAmounts = cfg.Pipeline.ValidateAmounts
	pc.MinAmount = cfg.Pipeline.MinAmount
	pc.MaxAmount = cfg.Pipeline.MaxAmount
	if len(cfg.Categories) > 0 {
		pc.Rules = cfg.Categories
	}
	if pc.EnableAI {
		// No provider transport ships with the CLI, so the AI tier stays off.
		logger.Warn("ai extraction enabled but no capability is configured; skipping ai tier")
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline.New(parser.DefaultRegistry(), pc, pipeline.WithLogger(logger)),
	}, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string
	var e *env

	rootCmd := &cobra.Command{
		Use:     "statement-extractor",
		Short:   "Extract transactions from Indian bank statement exports",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			e, err = newEnv(configPath, cmd.ErrOrStderr())
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "statement-extractor.yaml", "path to YAML config")

	get := func() *env { return e }
	rootCmd.AddCommand(newExtractCommand(get))
	rootCmd.AddCommand(newBanksCommand(get))
	rootCmd.AddCommand(newServeCommand(get))

	return rootCmd
}
