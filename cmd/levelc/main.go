// levelc compiles a colour-coded level layout into a rendered tile map.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/tilesmith/internal/config"
	"github.com/Faultbox/tilesmith/internal/imageio"
	"github.com/Faultbox/tilesmith/internal/logger"
	"github.com/Faultbox/tilesmith/pkg/edges"
	"github.com/Faultbox/tilesmith/pkg/level"
)

var (
	flagOutput string
	flagRules  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levelc <level.yaml>",
		Short: "Compile a level layout image into a rendered tile map",
		Long: `levelc reads a level file naming a layout image, a tile sheet and a colour
map. Every layout pixel becomes one tile; the rendered map is written as PNG.

With a rules file (edge signatures written by autotile) every terrain cell
is matched against the adjacency rules and the matches are reported.

Example level.yaml:
  layout: layout.png
  tileset: tiles.png
  tile_size: [16, 16]
  colors:
    - color: "#ffffff"
      tile: [0, 0]
    - color: "#000000"
      tile: [1, 0]
  output: level.png
  rules: edges.json
  terrain: [1, 0]`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	config.BindFlags(cmd.PersistentFlags())
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output PNG path (overrides the level file)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Edge signature JSON to match terrain cells against (overrides the level file)")
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
	logger.Debug("Configuration loaded", zap.Any("logging", cfg.Logging))
	log := logger.Named("levelc")

	sf, err := level.LoadSpecFile(args[0])
	if err != nil {
		return err
	}
	output := flagOutput
	if output == "" {
		output = sf.Resolve(sf.Output)
	}
	if output == "" {
		return errors.New("no output path: set output in the level file or pass --output")
	}

	spec, err := sf.Spec()
	if err != nil {
		return err
	}
	sheet, layer, err := spec.Compile()
	if err != nil {
		return fmt.Errorf("compiling %s: %w", args[0], err)
	}
	w, h := layer.Size()
	log.Info("Compiled layout", zap.Int("width", w), zap.Int("height", h), zap.Int("tiles", sheet.Len()))

	img, err := layer.Render(sheet)
	if err != nil {
		return err
	}
	if err := imageio.SavePNG(output, img); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	logger.Info("Rendered level", zap.String("path", output))
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %dx%d level to %s\n", w, h, output)

	rulesPath := flagRules
	if rulesPath == "" {
		rulesPath = sf.Resolve(sf.Rules)
	}
	if rulesPath == "" {
		return nil
	}
	return matchRules(cmd.OutOrStdout(), log, sf, sheet, layer, rulesPath)
}

// matchRules reports which adjacency rule every terrain cell matches.
func matchRules(out io.Writer, log *zap.Logger, sf *level.SpecFile, sheet *level.TileSheet, layer *level.Layer, path string) error {
	if sf.Terrain == nil {
		return errors.New("matching rules needs a terrain tile in the level file")
	}
	terrain, ok := sheet.TileID(level.Pos{X: sf.Terrain[0], Y: sf.Terrain[1]})
	if !ok {
		return fmt.Errorf("terrain tile %v is not in the colour map", *sf.Terrain)
	}

	sigs, err := edges.LoadJSON(path)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	rules := level.RulesFromSignatures(sigs.Signatures())
	isTerrain := func(id uint32) bool { return id == terrain }

	w, _ := layer.Size()
	cells, matched := 0, 0
	for i, rule := range rules.Apply(layer, isTerrain) {
		x, y := i%w, i/w
		if !isTerrain(layer.At(x, y)) {
			continue
		}
		cells++
		if rule == level.NoMatch {
			log.Debug("No rule matches cell", zap.Int("x", x), zap.Int("y", y))
			continue
		}
		matched++
		log.Debug("Matched cell", zap.Int("x", x), zap.Int("y", y), zap.Int("rule", rule))
	}
	if matched < cells {
		logger.Warn("Terrain cells without a matching rule", zap.Int("unmatched", cells-matched))
	}
	fmt.Fprintf(out, "Matched %d of %d terrain cells against %d rules\n", matched, cells, len(rules))
	return nil
}
