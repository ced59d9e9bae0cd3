package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/pinchball/internal/interaction"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", cfg.Width, cfg.Height)
	}
	if cfg.Mode != interaction.ModePinch {
		t.Errorf("Mode = %v, want pinch", cfg.Mode)
	}
	if cfg.Tuning != interaction.DefaultTuning() {
		t.Error("Tuning should match interaction defaults")
	}
	if filepath.Base(cfg.DBPath) != "pinchball.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.PluginDir != filepath.Join(cfg.DataDir, "plugins") {
		t.Errorf("PluginDir = %s", cfg.PluginDir)
	}
}

func TestConfig_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		check   func(Config) bool
		wantErr bool
	}{
		{"fps", "30", func(c Config) bool { return c.FPS == 30 }, false},
		{"FPS", "24", func(c Config) bool { return c.FPS == 24 }, false},
		{"plugin_dir", "/opt/hooks", func(c Config) bool { return c.PluginDir == "/opt/hooks" }, false},
		{"mirror", "false", func(c Config) bool { return !c.Mirror }, false},
		{"interaction_mode", "follow", func(c Config) bool { return c.Mode == interaction.ModeFollow }, false},
		{"throw_power", "2.5", func(c Config) bool { return c.Tuning.ThrowPower == 2.5 }, false},
		{"min_confidence", " 0.7 ", func(c Config) bool { return c.MinConfidence == 0.7 }, false},
		{"volume", "0.4", func(c Config) bool { return c.Volume == 0.4 }, false},
		{"fps", "fast", nil, true},
		{"interaction_mode", "wave", nil, true},
		{"colour", "red", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.Set(tt.key, tt.value)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Set() error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("Set(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_SettingsRoundTrip(t *testing.T) {
	src := DefaultConfig()
	src.Mode = interaction.ModeFollow
	src.Tuning.CatchDistance = 64
	src.Audio = false
	src.Volume = 0.3

	dst := DefaultConfig()
	if err := dst.Apply(src.Settings()); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if dst.Mode != src.Mode || dst.Tuning.CatchDistance != 64 || dst.Audio || dst.Volume != 0.3 {
		t.Errorf("settings did not carry over: %+v", dst.Settings())
	}
	for k := range src.Settings() {
		if !IsTunable(k) {
			t.Errorf("Settings() exported non-tunable key %q", k)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative fps", func(c *Config) { c.FPS = -1 }},
		{"confidence above one", func(c *Config) { c.MinConfidence = 1.5 }},
		{"zero pinch threshold", func(c *Config) { c.Tuning.PinchThreshold = 0 }},
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"volume above one", func(c *Config) { c.Volume = 1.2 }},
		{"negative volume", func(c *Config) { c.Volume = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing env file uses defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), ".env"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.FPS != DefaultConfig().FPS {
			t.Errorf("FPS = %d, want default", cfg.FPS)
		}
	})

	t.Run("env file then environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "PINCHBALL_FPS=24\nPINCHBALL_INTERACTION_MODE=follow\nOTHER_VAR=ignored\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PINCHBALL_FPS", "48")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.FPS != 48 {
			t.Errorf("FPS = %d, want environment to win with 48", cfg.FPS)
		}
		if cfg.Mode != interaction.ModeFollow {
			t.Errorf("Mode = %v, want follow from env file", cfg.Mode)
		}
	})

	t.Run("bad value is rejected", func(t *testing.T) {
		t.Setenv("PINCHBALL_WIDTH", "wide")

		if _, err := Load(""); !errors.Is(err, ErrInvalid) {
			t.Errorf("Load() error = %v, want ErrInvalid", err)
		}
	})

	t.Run("invalid result fails validation", func(t *testing.T) {
		t.Setenv("PINCHBALL_HEIGHT", "0")

		if _, err := Load(""); !errors.Is(err, ErrInvalid) {
			t.Errorf("Load() error = %v, want ErrInvalid", err)
		}
	})
}
