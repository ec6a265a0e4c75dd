package config

import "github.com/spf13/pflag"

var (
	flagConfig   string
	flagDebug    bool
	flagLogFile  string
	flagCols     int
	flagRows     int
	flagTileSize int
	flagPackage  string
	flagName     string
	flagTarget   string
)

// BindFlags registers the flags shared by every tool on fs, usually the
// persistent flag set of a root command.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagConfig, "config", "", "Path to config file")
	fs.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	fs.StringVar(&flagLogFile, "log-file", "", "Also write logs to this file")
}

// BindSamplerFlags registers the edge sampler overrides on fs.
func BindSamplerFlags(fs *pflag.FlagSet) {
	fs.IntVar(&flagCols, "cols", 0, "Tile columns in the sheet")
	fs.IntVar(&flagRows, "rows", 0, "Tile rows in the sheet")
	fs.IntVar(&flagTileSize, "tile-size", 0, "Tile edge length in pixels")
	fs.StringVar(&flagPackage, "package", "", "Package name of the generated table")
	fs.StringVar(&flagName, "name", "", "Variable name of the generated table")
}

// BindInverterFlags registers the pattern inverter overrides on fs.
func BindInverterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagTarget, "target", "", "Name of the rule set objects to invert")
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flagLogFile != "" {
		cfg.Logging.LogFile = flagLogFile
	}
	if flagCols > 0 {
		cfg.Sampler.Cols = flagCols
	}
	if flagRows > 0 {
		cfg.Sampler.Rows = flagRows
	}
	if flagTileSize > 0 {
		cfg.Sampler.TileSize = flagTileSize
	}
	if flagPackage != "" {
		cfg.Sampler.Table.Package = flagPackage
	}
	if flagName != "" {
		cfg.Sampler.Table.Name = flagName
	}
	if flagTarget != "" {
		cfg.Inverter.Target = flagTarget
	}
}
