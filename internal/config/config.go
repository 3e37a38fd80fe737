// Package config loads gridastar settings from defaults, an optional config
// file, GRIDASTAR_* environment variables and bound command-line flags.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GRIDASTAR_GRID_ROWS.
const EnvPrefix = "GRIDASTAR"

type Config struct {
	Grid   GridConfig   `mapstructure:"grid"`
	Driver DriverConfig `mapstructure:"driver"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// GridConfig drives random grid generation.
type GridConfig struct {
	Rows     int     `mapstructure:"rows"`
	Cols     int     `mapstructure:"cols"`
	Density  float64 `mapstructure:"density"`
	Seed     int64   `mapstructure:"seed"` // 0 picks a time-based seed
	StartRow int     `mapstructure:"start_row"`
	StartCol int     `mapstructure:"start_col"`
	Scenario string  `mapstructure:"scenario"` // YAML scenario file, overrides generation
}

type DriverConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	CellSize int    `mapstructure:"cell_size"`
	Autoplay bool   `mapstructure:"autoplay"`
	MaxCells int    `mapstructure:"max_cells"` // largest rows*cols accepted by /api/init
}

type LogConfig struct {
	File    string `mapstructure:"file"`
	Debug   bool   `mapstructure:"debug"`
	Console bool   `mapstructure:"console"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("grid.rows", 30)
	v.SetDefault("grid.cols", 30)
	v.SetDefault("grid.density", 0.3)
	v.SetDefault("grid.seed", 0)
	v.SetDefault("grid.start_row", 0)
	v.SetDefault("grid.start_col", 0)
	v.SetDefault("grid.scenario", "")
	v.SetDefault("driver.tick", 500*time.Millisecond)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cell_size", 20)
	v.SetDefault("server.autoplay", false)
	v.SetDefault("server.max_cells", 250_000)
	v.SetDefault("log.file", "")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.console", true)
}

// Load reads configFile (if not empty) into v on top of the defaults and
// environment, and decodes the result.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.Grid.Scenario == "" && (c.Grid.Rows <= 0 || c.Grid.Cols <= 0) {
		return errors.Errorf("grid size %dx%d must be positive", c.Grid.Rows, c.Grid.Cols)
	}
	if c.Grid.Density < 0 || c.Grid.Density > 1 {
		return errors.Errorf("grid density %v outside [0,1]", c.Grid.Density)
	}
	if c.Driver.Tick <= 0 {
		return errors.Errorf("driver tick %v must be positive", c.Driver.Tick)
	}
	if c.Server.MaxCells <= 0 {
		return errors.Errorf("max cells %d must be positive", c.Server.MaxCells)
	}
	if c.Server.CellSize <= 0 {
		return errors.Errorf("cell size %d must be positive", c.Server.CellSize)
	}
	return nil
}
