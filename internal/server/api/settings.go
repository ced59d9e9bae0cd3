package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ayusman/pinchball/internal/config"
	"github.com/ayusman/pinchball/internal/store"
)

// Tuner exposes the live tunable options.
type Tuner interface {
	Settings() map[string]string
	ApplySettings(values map[string]string) error
}

// SettingsHandler reads and changes tunable options. Accepted changes are
// applied live and persisted so they survive a restart.
type SettingsHandler struct {
	tuner Tuner
	store *store.Store
}

// NewSettingsHandler creates a SettingsHandler. s may be nil, in which case
// changes are not persisted.
func NewSettingsHandler(t Tuner, s *store.Store) *SettingsHandler {
	return &SettingsHandler{tuner: t, store: s}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, settingsResponse{Settings: h.tuner.Settings()})
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update applies a JSON object of key/value strings.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	if err := h.tuner.ApplySettings(values); err != nil {
		if errors.Is(err, config.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply settings")
		return
	}

	if h.store != nil {
		if err := h.store.Settings().SetAll(values); err != nil {
			log.Printf("Failed to persist settings: %v", err)
			writeError(w, http.StatusInternalServerError, "Applied but failed to persist settings")
			return
		}
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: h.tuner.Settings()})
}
