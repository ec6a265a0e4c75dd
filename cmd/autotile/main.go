// autotile extracts 3x3 edge signatures from an autotile sheet and writes
// them as JSON and, optionally, as a Go source table.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/tilesmith/internal/config"
	"github.com/Faultbox/tilesmith/internal/logger"
	"github.com/Faultbox/tilesmith/pkg/edges"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autotile <image> <out.json> [out_table.go]",
		Short: "Extract edge signatures from an autotile sheet",
		Long: `autotile samples a 3x3 grid of pixels in every tile of a sheet and records
which samples are black. Tiles whose top-left pixel is pure red are skipped.

Examples:
  autotile environment.png edges.json
  autotile environment.png edges.json tiles/edges_gen.go --package tiles
  autotile --cols 8 --rows 6 --tile-size 32 sheet.tga edges.json`,
		Args:         cobra.RangeArgs(2, 3),
		SilenceUsage: true,
		RunE:         run,
	}
	config.BindFlags(cmd.PersistentFlags())
	config.BindSamplerFlags(cmd.Flags())
	cmd.AddCommand(config.NewCommand())
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()
	logger.Debug("Configuration loaded", zap.Any("sampler", cfg.Sampler))
	log := logger.Named("autotile")

	sampler := edges.NewSampler(log)
	sampler.Grid = cfg.Sampler.Grid()
	sampler.BlackThreshold = cfg.Sampler.BlackThreshold
	sampler.Discard = cfg.Sampler.DiscardKey()

	imagePath, jsonPath := args[0], args[1]
	log.Info("Sampling tile sheet",
		zap.String("path", imagePath),
		zap.Int("cols", sampler.Grid.Cols),
		zap.Int("rows", sampler.Grid.Rows),
		zap.Int("tile_size", sampler.Grid.TileSize))

	sheet, err := sampler.SampleFile(imagePath)
	if err != nil {
		return fmt.Errorf("sampling %s: %w", imagePath, err)
	}

	if err := sheet.SaveJSON(jsonPath); err != nil {
		return fmt.Errorf("writing %s: %w", jsonPath, err)
	}
	if sheet.Len() == 0 {
		logger.Warn("Every tile was discarded", zap.String("path", imagePath))
	}
	logger.Info("Saved edge signatures", zap.String("path", jsonPath), zap.Int("count", sheet.Len()))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d edge signatures to %s\n", sheet.Len(), jsonPath)

	if len(args) == 3 {
		tablePath := args[2]
		opts := cfg.Sampler.TableOptions()
		opts.Source = filepath.Base(imagePath)
		if err := sheet.SaveTable(tablePath, opts); err != nil {
			return fmt.Errorf("writing %s: %w", tablePath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved source table %s.%s to %s\n", opts.Package, opts.Name, tablePath)
	}
	return nil
}
