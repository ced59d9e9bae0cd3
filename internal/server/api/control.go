package api

import (
	"net/http"
	"strconv"
)

// MaxSpawnCount caps ?count= on POST /api/spawn.
const MaxSpawnCount = 8

// Controller accepts playground commands.
type Controller interface {
	RequestSpawn()
	SetPaused(paused bool)
	Paused() bool
}

// ControlHandler serves POST /api/spawn, /api/pause and /api/resume.
type ControlHandler struct {
	ctl Controller
}

// NewControlHandler creates a ControlHandler.
func NewControlHandler(c Controller) *ControlHandler {
	return &ControlHandler{ctl: c}
}

type controlResponse struct {
	Paused  bool `json:"paused"`
	Spawned int  `json:"spawned,omitempty"`
}

func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/api/spawn":
		h.spawn(w, r)
	case "/api/pause":
		h.ctl.SetPaused(true)
		writeJSON(w, http.StatusOK, controlResponse{Paused: true})
	case "/api/resume":
		h.ctl.SetPaused(false)
		writeJSON(w, http.StatusOK, controlResponse{Paused: false})
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// spawn queues ?count= balls, one by default.
func (h *ControlHandler) spawn(w http.ResponseWriter, r *http.Request) {
	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxSpawnCount {
			writeError(w, http.StatusBadRequest, "count must be between 1 and 8")
			return
		}
		count = n
	}

	for i := 0; i < count; i++ {
		h.ctl.RequestSpawn()
	}
	writeJSON(w, http.StatusAccepted, controlResponse{Paused: h.ctl.Paused(), Spawned: count})
}
