package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// installPlugin writes a manifest and an empty executable into dir/name.
func installPlugin(t *testing.T, dir string, manifest Manifest) {
	t.Helper()

	pluginDir := filepath.Join(dir, manifest.Name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if manifest.Executable != "" {
		if err := os.WriteFile(filepath.Join(pluginDir, manifest.Executable), []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("failed to write executable: %v", err)
		}
	}
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()

	installPlugin(t, tmpDir, Manifest{Name: "notify", Version: "1.0.0", Executable: "notify", Events: []string{"drop", "hit"}})
	installPlugin(t, tmpDir, Manifest{Name: "score-log", Executable: "score-log", Events: []string{"*"}})

	manager := NewManager(tmpDir)
	n, err := manager.Discover()
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Discover() = %d plugins, want 2", n)
	}

	plugins := manager.List()
	if plugins[0].Manifest.Name != "notify" || plugins[1].Manifest.Name != "score-log" {
		t.Errorf("List() order = %s, %s", plugins[0].Manifest.Name, plugins[1].Manifest.Name)
	}

	p, err := manager.Get("notify")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Path != filepath.Join(tmpDir, "notify") || p.Executable != filepath.Join(tmpDir, "notify", "notify") {
		t.Errorf("paths = %s, %s", p.Path, p.Executable)
	}

	if _, err := manager.Get("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_DiscoverSkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	// Invalid JSON
	bad := filepath.Join(tmpDir, "bad")
	os.MkdirAll(bad, 0755)
	os.WriteFile(filepath.Join(bad, ManifestFile), []byte("{"), 0644)

	// No manifest
	os.MkdirAll(filepath.Join(tmpDir, "empty"), 0755)

	// No executable field
	installPlugin(t, tmpDir, Manifest{Name: "unnamed-exe", Events: []string{"hit"}})

	// Executable missing on disk
	ghost := filepath.Join(tmpDir, "ghost")
	os.MkdirAll(ghost, 0755)
	data, _ := json.Marshal(Manifest{Name: "ghost", Executable: "nope"})
	os.WriteFile(filepath.Join(ghost, ManifestFile), data, 0644)

	// Plain file at top level
	os.WriteFile(filepath.Join(tmpDir, "README"), []byte("hooks"), 0644)

	installPlugin(t, tmpDir, Manifest{Name: "good", Executable: "run", Events: []string{"hit"}})

	manager := NewManager(tmpDir)
	n, err := manager.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Discover() = %d, want only the valid plugin", n)
	}
	if _, err := manager.Get("good"); err != nil {
		t.Errorf("Get(good) error = %v", err)
	}
}

func TestManager_DiscoverMissingDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "none"))

	n, err := manager.Discover()
	if err != nil || n != 0 {
		t.Errorf("Discover() = %d, %v; want 0, nil", n, err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Rediscover(t *testing.T) {
	tmpDir := t.TempDir()
	installPlugin(t, tmpDir, Manifest{Name: "first", Executable: "run", Events: []string{"hit"}})

	manager := NewManager(tmpDir)
	manager.Discover()

	if err := os.RemoveAll(filepath.Join(tmpDir, "first")); err != nil {
		t.Fatal(err)
	}
	installPlugin(t, tmpDir, Manifest{Name: "second", Executable: "run", Events: []string{"hit"}})

	if n, _ := manager.Discover(); n != 1 {
		t.Fatalf("Discover() = %d, want 1", n)
	}
	if _, err := manager.Get("first"); !errors.Is(err, ErrPluginNotFound) {
		t.Error("removed plugin is still registered")
	}
}

func TestManager_Subscribers(t *testing.T) {
	tmpDir := t.TempDir()
	installPlugin(t, tmpDir, Manifest{Name: "b-hits", Executable: "x", Events: []string{"hit"}})
	installPlugin(t, tmpDir, Manifest{Name: "a-all", Executable: "x", Events: []string{"*"}})
	installPlugin(t, tmpDir, Manifest{Name: "c-drops", Executable: "x", Events: []string{"drop"}})

	manager := NewManager(tmpDir)
	if _, err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	tests := []struct {
		kind string
		want []string
	}{
		{"hit", []string{"a-all", "b-hits"}},
		{"drop", []string{"a-all", "c-drops"}},
		{"spawn", []string{"a-all"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			subs := manager.Subscribers(tt.kind)
			if len(subs) != len(tt.want) {
				t.Fatalf("Subscribers(%s) = %d plugins, want %v", tt.kind, len(subs), tt.want)
			}
			for i, p := range subs {
				if p.Manifest.Name != tt.want[i] {
					t.Errorf("subscriber %d = %s, want %s", i, p.Manifest.Name, tt.want[i])
				}
			}
		})
	}
}

func TestPlugin_Handles(t *testing.T) {
	p := &Plugin{Manifest: Manifest{Events: []string{"grab", "throw"}}}

	if !p.Handles("grab") || !p.Handles("throw") {
		t.Error("expected subscribed kinds to be handled")
	}
	if p.Handles("bounce") {
		t.Error("unsubscribed kind reported as handled")
	}
	if (&Plugin{}).Handles("hit") {
		t.Error("plugin without events handles nothing")
	}
}

func TestManager_PluginDir(t *testing.T) {
	if got := NewManager("/tmp/hooks").PluginDir(); got != "/tmp/hooks" {
		t.Errorf("PluginDir() = %q", got)
	}
}
