// Package config assembles runtime settings from defaults, an optional .env
// file, PINCHBALL_* environment variables and persisted settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ayusman/pinchball/internal/interaction"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to setting keys to form environment variable names.
const EnvPrefix = "PINCHBALL_"

// ErrInvalid is wrapped by every validation and parse failure.
var ErrInvalid = errors.New("invalid config")

// Config holds every runtime option.
type Config struct {
	Addr     string
	DataDir  string
	DBPath    string
	PluginDir string
	Headless  bool

	CameraID int
	Width    int
	Height   int
	FPS      int
	Mirror   bool

	MotionThreshold float64
	MinConfidence   float64

	Mode   interaction.Mode
	Tuning interaction.Tuning

	Audio  bool
	Volume float64
}

// DefaultConfig returns the built-in defaults with data under ~/.pinchball.
func DefaultConfig() Config {
	dataDir := ".pinchball"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".pinchball")
	}
	return Config{
		Addr:            "127.0.0.1:8765",
		DataDir:         dataDir,
		DBPath:          filepath.Join(dataDir, "pinchball.db"),
		PluginDir:       filepath.Join(dataDir, "plugins"),
		CameraID:        0,
		Width:           640,
		Height:          480,
		FPS:             60,
		Mirror:          true,
		MotionThreshold: 1.0,
		MinConfidence:   0.5,
		Mode:            interaction.ModePinch,
		Tuning:          interaction.DefaultTuning(),
		Audio:           true,
		Volume:          1.0,
	}
}

// setter applies one string value to a field.
type setter func(c *Config, v string) error

var setters = map[string]setter{
	"addr":       func(c *Config, v string) error { c.Addr = v; return nil },
	"data_dir":   func(c *Config, v string) error { c.DataDir = v; return nil },
	"db_path":    func(c *Config, v string) error { c.DBPath = v; return nil },
	"plugin_dir": func(c *Config, v string) error { c.PluginDir = v; return nil },
	"headless":   boolField(func(c *Config) *bool { return &c.Headless }),
	"camera":     intField(func(c *Config) *int { return &c.CameraID }),
	"width":      intField(func(c *Config) *int { return &c.Width }),
	"height":     intField(func(c *Config) *int { return &c.Height }),
	"fps":        intField(func(c *Config) *int { return &c.FPS }),
	"mirror":     boolField(func(c *Config) *bool { return &c.Mirror }),
	"audio":      boolField(func(c *Config) *bool { return &c.Audio }),

	"motion_threshold": floatField(func(c *Config) *float64 { return &c.MotionThreshold }),
	"min_confidence":   floatField(func(c *Config) *float64 { return &c.MinConfidence }),
	"volume":           floatField(func(c *Config) *float64 { return &c.Volume }),

	"interaction_mode": func(c *Config, v string) error {
		m, err := interaction.ParseMode(v)
		if err != nil {
			return err
		}
		c.Mode = m
		return nil
	},
	"pinch_threshold": floatField(func(c *Config) *float64 { return &c.Tuning.PinchThreshold }),
	"catch_distance":  floatField(func(c *Config) *float64 { return &c.Tuning.CatchDistance }),
	"throw_power":     floatField(func(c *Config) *float64 { return &c.Tuning.ThrowPower }),
}

// Tunables are the keys that may be persisted and changed at runtime.
var Tunables = []string{
	"audio",
	"catch_distance",
	"interaction_mode",
	"min_confidence",
	"motion_threshold",
	"pinch_threshold",
	"throw_power",
	"volume",
}

func intField(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func floatField(field func(*Config) *float64) setter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func boolField(field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// Set assigns one option by key, e.g. "fps" or "interaction_mode".
func (c *Config) Set(key, value string) error {
	set, ok := setters[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", ErrInvalid, key)
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, value, err)
	}
	return nil
}

// Apply sets every pair in values, stopping at the first failure.
func (c *Config) Apply(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Settings returns the tunable options as strings, keyed like Set.
func (c *Config) Settings() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return map[string]string{
		"audio":            strconv.FormatBool(c.Audio),
		"catch_distance":   f(c.Tuning.CatchDistance),
		"interaction_mode": c.Mode.String(),
		"min_confidence":   f(c.MinConfidence),
		"motion_threshold": f(c.MotionThreshold),
		"pinch_threshold":  f(c.Tuning.PinchThreshold),
		"throw_power":      f(c.Tuning.ThrowPower),
		"volume":           f(c.Volume),
	}
}

// IsTunable reports whether key may be persisted.
func IsTunable(key string) bool {
	for _, k := range Tunables {
		if k == key {
			return true
		}
	}
	return false
}

// Load starts from DefaultConfig, then applies envFile (skipped when it does
// not exist) and finally PINCHBALL_* variables from the process environment.
func Load(envFile string) (Config, error) {
	cfg := DefaultConfig()

	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			if err := cfg.Apply(stripPrefix(vars)); err != nil {
				return cfg, fmt.Errorf("%s: %w", envFile, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	if err := cfg.Apply(stripPrefix(env)); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// stripPrefix keeps PINCHBALL_* entries and maps them to setting keys.
func stripPrefix(vars map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range vars {
		if rest, ok := strings.CutPrefix(k, EnvPrefix); ok {
			out[strings.ToLower(rest)] = v
		}
	}
	return out
}

// Validate rejects values the playground cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("%w: min_confidence %g not in [0, 1]", ErrInvalid, c.MinConfidence)
	case c.Volume < 0 || c.Volume > 1:
		return fmt.Errorf("%w: volume %g not in [0, 1]", ErrInvalid, c.Volume)
	case c.MotionThreshold < 0:
		return fmt.Errorf("%w: motion_threshold %g", ErrInvalid, c.MotionThreshold)
	case c.Tuning.PinchThreshold <= 0 || c.Tuning.CatchDistance <= 0:
		return fmt.Errorf("%w: pinch_threshold and catch_distance must be positive", ErrInvalid)
	case c.Tuning.ThrowPower < 0:
		return fmt.Errorf("%w: throw_power %g", ErrInvalid, c.Tuning.ThrowPower)
	case c.Addr == "":
		return fmt.Errorf("%w: empty addr", ErrInvalid)
	}
	return nil
}
