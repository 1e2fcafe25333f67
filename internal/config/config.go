// Package config loads the gridboard configuration file.
//
// The file is TOML at $XDG_CONFIG_HOME/gridboard/config.toml (falling back to
// ~/.config/gridboard/config.toml). Every field is optional; a missing file
// yields [Default].
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridboard/pkg/dragdrop"
	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/history"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/state"
	"github.com/matzehuels/gridboard/pkg/store"
)

const (
	appName  = "gridboard"
	fileName = "config.toml"
)

// =============================================================================
// Types
// =============================================================================

// Duration is a time.Duration written as a string ("500ms") in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration file.
type Config struct {
	Grid        Grid        `toml:"grid"`
	Interaction Interaction `toml:"interaction"`
	History     History     `toml:"history"`
	Store       Store       `toml:"store"`
	Server      Server      `toml:"server"`
}

// Grid configures the grid width and the pixel metrics used to map pointer
// coordinates onto cells.
type Grid struct {
	Cols       int     `toml:"cols"`
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
	Gap        float64 `toml:"gap"`
}

// Interaction configures gesture timing and thresholds.
type Interaction struct {
	LongPress       Duration `toml:"long_press"`
	Jitter          float64  `toml:"jitter"`
	DragThreshold   float64  `toml:"drag_threshold"`
	ScrollThreshold float64  `toml:"scroll_threshold"`
}

// History configures undo depth.
type History struct {
	Depth int `toml:"depth"`
}

// Store configures persistence.
type Store struct {
	Backend   string   `toml:"backend"`
	Dashboard string   `toml:"dashboard"`
	Debounce  Duration `toml:"debounce"`
	Codec     string   `toml:"codec"`

	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	SQLitePath      string `toml:"sqlite_path"`
	FileDir         string `toml:"file_dir"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// =============================================================================
// Defaults
// =============================================================================

// Default returns the built-in configuration. Local store paths are left
// empty and filled in by the caller from the data directory.
func Default() Config {
	dd := dragdrop.DefaultConfig()
	return Config{
		Grid: Grid{
			Cols:       grid.DefaultCols,
			CellWidth:  dd.Metrics.CellWidth,
			CellHeight: dd.Metrics.CellHeight,
			Gap:        dd.Metrics.Gap,
		},
		Interaction: Interaction{
			LongPress:       Duration(dd.LongPress),
			Jitter:          dd.Jitter,
			DragThreshold:   dd.DragThreshold,
			ScrollThreshold: dd.ScrollThreshold,
		},
		History: History{Depth: history.DefaultMaxDepth},
		Store: Store{
			Backend:   string(store.BackendAuto),
			Dashboard: "default",
			Debounce:  Duration(state.DefaultDebounce),
			Codec:     layout.CodecJSON,
		},
		Server: Server{Addr: "127.0.0.1:8420"},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Dir returns the configuration directory.
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the file at path over the defaults. A missing file is not an
// error. Unknown keys are rejected so typos surface early.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := cfg.decode(string(data), path); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	if err := cfg.decode(text, "config"); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(text, name string) error {
	md, err := toml.Decode(text, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", name, undecoded[0].String())
	}
	return nil
}

// Write encodes the configuration as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// WriteFile writes cfg to path, creating the parent directory.
func WriteFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create config dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create %s", path)
	}
	if err := cfg.Write(f); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "write %s", path)
	}
	return f.Close()
}

// =============================================================================
// Validation
// =============================================================================

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Grid.Cols < 1 || c.Grid.Cols > 24:
		return invalid("grid.cols must be between 1 and 24, got %d", c.Grid.Cols)
	case c.Grid.CellWidth <= 0 || c.Grid.CellHeight <= 0:
		return invalid("grid.cell_width and grid.cell_height must be positive")
	case c.Grid.Gap < 0:
		return invalid("grid.gap cannot be negative")
	case c.Interaction.LongPress <= 0:
		return invalid("interaction.long_press must be positive")
	case c.Interaction.Jitter <= 0:
		return invalid("interaction.jitter must be positive")
	case c.Interaction.DragThreshold <= c.Interaction.Jitter:
		return invalid("interaction.drag_threshold (%g) must exceed interaction.jitter (%g)",
			c.Interaction.DragThreshold, c.Interaction.Jitter)
	case c.Interaction.ScrollThreshold <= c.Interaction.DragThreshold:
		return invalid("interaction.scroll_threshold (%g) must exceed interaction.drag_threshold (%g)",
			c.Interaction.ScrollThreshold, c.Interaction.DragThreshold)
	case c.History.Depth < 1:
		return invalid("history.depth must be at least 1")
	case c.Store.Debounce <= 0:
		return invalid("store.debounce must be positive")
	}
	if _, err := store.ParseBackend(c.Store.Backend); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.backend")
	}
	if _, err := layout.CodecByName(c.Store.Codec); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.codec")
	}
	if err := errors.ValidateStoreKey(c.Store.Dashboard); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.dashboard")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, "%s", fmt.Sprintf(format, args...))
}

// =============================================================================
// Conversions
// =============================================================================

// Metrics returns the grid pixel metrics.
func (c Config) Metrics() grid.Metrics {
	return grid.Metrics{CellWidth: c.Grid.CellWidth, CellHeight: c.Grid.CellHeight, Gap: c.Grid.Gap}
}

// DragDrop returns the drag & drop controller configuration.
func (c Config) DragDrop() dragdrop.Config {
	return dragdrop.Config{
		LongPress:       c.Interaction.LongPress.Std(),
		Jitter:          c.Interaction.Jitter,
		DragThreshold:   c.Interaction.DragThreshold,
		ScrollThreshold: c.Interaction.ScrollThreshold,
		Metrics:         c.Metrics(),
	}
}

// StoreConfig returns the store opener configuration. Empty local paths are
// filled from dataDir.
func (c Config) StoreConfig(dataDir string) store.Config {
	backend, _ := store.ParseBackend(c.Store.Backend)
	sc := store.Config{
		Backend: backend,
		Redis: store.RedisConfig{
			Addr:     c.Store.RedisAddr,
			Password: c.Store.RedisPassword,
			DB:       c.Store.RedisDB,
		},
		Mongo: store.MongoConfig{
			URI:        c.Store.MongoURI,
			Database:   c.Store.MongoDatabase,
			Collection: c.Store.MongoCollection,
		},
		SQLitePath: c.Store.SQLitePath,
		FileDir:    c.Store.FileDir,
	}
	if sc.SQLitePath == "" && dataDir != "" {
		sc.SQLitePath = filepath.Join(dataDir, "gridboard.db")
	}
	if sc.FileDir == "" && dataDir != "" {
		sc.FileDir = filepath.Join(dataDir, "layouts")
	}
	return sc
}

// KeyPrefix namespaces store keys per dashboard.
func (c Config) KeyPrefix() string {
	return "gridboard:" + c.Store.Dashboard + ":"
}
