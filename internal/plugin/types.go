// Package plugin discovers external event hooks and runs them when game
// events happen. A hook is an executable with a plugin.json manifest; it
// reads one Request as JSON on stdin and writes one Response to stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and the events it subscribes to.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"` // event kind names, "*" for all
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is sent to a plugin for one game event.
type Request struct {
	Event     string          `json:"event"`
	BallID    uint64          `json:"ball_id"`
	Points    int             `json:"points"`
	Score     int             `json:"score"`
	Tick      uint64          `json:"tick"`
	SessionID string          `json:"session_id,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribes to the event kind.
func (p *Plugin) Handles(kind string) bool {
	for _, e := range p.Manifest.Events {
		if e == kind || e == "*" {
			return true
		}
	}
	return false
}
