// Package main provides a score log hook.
// It appends one tab-separated line per scoring event to a file in the
// plugin directory.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
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
	File string `json:"file"`
}

const defaultFile = "scores.tsv"

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	cfg := Config{File: defaultFile}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}
	if cfg.File == "" {
		cfg.File = defaultFile
	}

	// The dispatcher runs hooks from their own directory.
	if err := appendLine(filepath.Clean(cfg.File), formatLine(time.Now(), req)); err != nil {
		writeErrorResponse(fmt.Sprintf("append failed: %v", err))
		return
	}
	writeSuccessResponse()
}

// formatLine renders one log line without the trailing newline.
func formatLine(at time.Time, req Request) string {
	session := req.SessionID
	if session == "" {
		session = "-"
	}
	return strings.Join([]string{
		at.UTC().Format(time.RFC3339),
		session,
		fmt.Sprint(req.Tick),
		req.Event,
		fmt.Sprint(req.BallID),
		fmt.Sprint(req.Points),
		fmt.Sprint(req.Score),
	}, "\t")
}

// appendLine appends line and a newline to path, creating it if needed.
func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
