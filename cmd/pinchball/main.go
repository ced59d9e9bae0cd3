package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/pinchball/internal/app"
	"github.com/ayusman/pinchball/internal/config"
	"github.com/ayusman/pinchball/internal/interaction"
	"github.com/ayusman/pinchball/internal/server"
	"github.com/ayusman/pinchball/internal/store"
	"github.com/ayusman/pinchball/internal/tray"
	"github.com/ayusman/pinchball/internal/window"
)

func main() {
	fmt.Println("Pinch Ball - AR hand physics playground")

	envFile := flag.String("env", ".env", "dotenv file with PINCHBALL_* overrides")
	addr := flag.String("addr", "", "HTTP listen address (default from config)")
	camera := flag.Int("camera", 0, "camera device index")
	headless := flag.Bool("headless", false, "run without a window, controlled from the tray and HTTP API")
	mode := flag.String("mode", "", "interaction mode: pinch or follow")
	dbPath := flag.String("db", "", "SQLite database path (default ~/.pinchball/pinchball.db)")
	scale := flag.Int("scale", 1, "window scale factor")
	pluginDir := flag.String("plugins", "", "event hook directory (default ~/.pinchball/plugins)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags win over the environment when given explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "camera":
			cfg.CameraID = *camera
		case "headless":
			cfg.Headless = *headless
		case "db":
			cfg.DBPath = *dbPath
		case "plugins":
			cfg.PluginDir = *pluginDir
		case "mode":
			m, err := interaction.ParseMode(*mode)
			if err != nil {
				log.Fatalf("Invalid -mode: %v", err)
			}
			cfg.Mode = m
		}
	})

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application := app.New(app.Options{Config: cfg, Store: st})
	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer application.Stop()

	webDir := findWebDir(cfg.DataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Engine:    application,
	})
	go func() {
		fmt.Printf("Starting server on http://%s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Printf("Server failed: %v", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Both the tray and the window need the main thread.
	if cfg.Headless {
		runTray(ctx, application, "http://"+cfg.Addr+"/api/stream")
		return
	}

	game := window.New(application, cfg.Width, cfg.Height)
	go func() {
		<-ctx.Done()
		game.Quit()
	}()
	if err := window.Run(game, *scale); err != nil {
		log.Printf("Window failed: %v", err)
	}
}

// runTray blocks in the tray menu until Quit or ctx is done, mirroring the
// score onto the menu.
func runTray(ctx context.Context, application *app.App, streamURL string) {
	t := tray.New()
	t.OnPause(application.SetPaused)
	t.OnSpawn(application.RequestSpawn)
	t.OnOpen(func() {
		if err := openBrowser(streamURL); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				t.SetScore(application.Snapshot().Score, application.Best())
				t.SetPaused(application.Paused())
			}
		}
	}()

	t.Run()
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
