// invertao inverts ambient occlusion rule patterns in JSON level project
// files and validates JSON files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/tilesmith/internal/config"
	"github.com/Faultbox/tilesmith/internal/logger"
	"github.com/Faultbox/tilesmith/pkg/aoinvert"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "invertao",
		Short:        "Invert ambient occlusion rule patterns in level JSON files",
		SilenceUsage: true,
	}
	config.BindFlags(root.PersistentFlags())
	config.BindInverterFlags(root.PersistentFlags())

	root.AddCommand(newProcessCmd(), newValidateCmd(), config.NewCommand())
	return root
}

func newProcessCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "process <input.json> <output.json>",
		Short: "Invert every rule pattern of the target rule sets",
		Long: `process swaps -1 and 1 in the "pattern" of every rule inside objects named
AmbientOcclusion (see --target) and writes the whole document to the output
file. Nothing is written when no rule set is found or with --dry-run.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			processFile(cmd.OutOrStdout(), cfg, args[0], args[1], dryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the changes without writing the output file")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json|glob>...",
		Short: "Check that JSON files are well formed",
		Long: `validate parses each file and prints one status line per file. Arguments may
be doublestar globs such as "levels/**/*.json".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			defer logger.Sync()
			validateFiles(cmd.OutOrStdout(), args)
			return nil
		},
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded", zap.Any("inverter", cfg.Inverter))
	return cfg, nil
}

// processFile runs the inverter and prints its report. Failures are printed,
// not returned.
func processFile(w io.Writer, cfg *config.Config, input, output string, dryRun bool) {
	inv := aoinvert.New(logger.Named("invertao"))
	inv.Target = cfg.Inverter.Target

	report, err := inv.Process(input, output, aoinvert.ProcessOptions{
		DryRun: dryRun,
		Indent: cfg.Inverter.IndentString(),
	})
	if err != nil {
		logger.Debug("Processing failed", zap.String("input", input), zap.Error(err))
		fmt.Fprintln(w, aoinvert.ProcessErrorMessage(input, err))
		return
	}
	report.Print(w, inv.TargetName())
}

func validateFiles(w io.Writer, patterns []string) {
	paths, err := aoinvert.ExpandInputs(patterns)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	failed := 0
	for _, res := range aoinvert.ValidateAll(paths) {
		if !res.OK() {
			failed++
		}
		fmt.Fprintln(w, res)
	}
	if failed > 0 {
		logger.Warn("Validation failed", zap.Int("failed", failed), zap.Int("files", len(paths)))
	} else {
		logger.Info("All files valid", zap.Int("files", len(paths)))
	}
}
