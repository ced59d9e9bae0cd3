// Package main provides a desktop notification hook.
// It announces hits and drops via AppleScript on macOS and notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the event sent by the hook dispatcher.
type Request struct {
	Event     string          `json:"event"`
	BallID    uint64          `json:"ball_id"`
	Points    int             `json:"points"`
	Score     int             `json:"score"`
	Tick      uint64          `json:"tick"`
	SessionID string          `json:"session_id"`
	Config    json.RawMessage `json:"config"`
}

// Response represents the output to the hook dispatcher.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is read from the manifest.
type Config struct {
	MinPoints int `json:"min_points"` // hits worth less are not announced
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	title, body, ok := message(req, cfg)
	if !ok {
		writeSuccessResponse()
		return
	}

	if err := notify(title, body); err != nil {
		writeErrorResponse(fmt.Sprintf("notify failed: %v", err))
		return
	}
	writeSuccessResponse()
}

// message builds the notification text. ok is false when the event should
// not be announced.
func message(req Request, cfg Config) (title, body string, ok bool) {
	switch req.Event {
	case "hit":
		if req.Points < cfg.MinPoints {
			return "", "", false
		}
		return "Pinch Ball", fmt.Sprintf("Hit ball %d for +%d (score %d)", req.BallID, req.Points, req.Score), true
	case "drop":
		return "Pinch Ball", fmt.Sprintf("Dropped ball %d (score %d)", req.BallID, req.Score), true
	}
	return "", "", false
}

// notify shows a desktop notification.
func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, body, title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", title, body)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
