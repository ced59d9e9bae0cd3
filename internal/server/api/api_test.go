package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/pinchball/internal/config"
	"github.com/ayusman/pinchball/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// fakeEngine implements Tuner and Controller over a real config.
type fakeEngine struct {
	mu     sync.Mutex
	cfg    config.Config
	spawns int
	paused bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{cfg: config.DefaultConfig()}
}

func (f *fakeEngine) Settings() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.Settings()
}

func (f *fakeEngine) ApplySettings(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range values {
		if !config.IsTunable(k) {
			return fmt.Errorf("%w: %s", config.ErrInvalid, k)
		}
	}
	next := f.cfg
	if err := next.Apply(values); err != nil {
		return err
	}
	f.cfg = next
	return nil
}

func (f *fakeEngine) RequestSpawn() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawns++
}

func (f *fakeEngine) SetPaused(p bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = p
}

func (f *fakeEngine) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func TestSessionsHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionsHandler(s)

	t.Run("empty history", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		var resp listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Sessions == nil || len(resp.Sessions) != 0 || resp.Best != 0 {
			t.Errorf("response = %+v, want empty list", resp)
		}
	})

	for _, score := range []int{10, 55, 30} {
		if err := s.Sessions().Create(&store.Session{Mode: "pinch", Score: score}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("limit and best", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions?limit=2", nil))

		var resp listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Sessions) != 2 {
			t.Errorf("len(sessions) = %d, want 2", len(resp.Sessions))
		}
		if resp.Best != 55 {
			t.Errorf("best = %d, want 55", resp.Best)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions?limit=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("only GET on collection", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestSessionsHandler_Item(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionsHandler(s)

	sess := &store.Session{Mode: "follow", Score: 15}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Sessions().AddEvents(sess.ID, []store.EventRecord{{Tick: 4, Kind: "grab", BallID: 2, Score: 5}}); err != nil {
		t.Fatalf("AddEvents() error = %v", err)
	}

	t.Run("get with events", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			ID     string              `json:"id"`
			Mode   string              `json:"mode"`
			Events []store.EventRecord `json:"events"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.ID != sess.ID || resp.Mode != "follow" {
			t.Errorf("response = %+v", resp)
		}
		if len(resp.Events) != 1 || resp.Events[0].Kind != "grab" {
			t.Errorf("events = %+v", resp.Events)
		}
	})

	t.Run("delete then missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("DELETE status = %d, want %d", rec.Code, http.StatusNoContent)
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET after delete status = %d, want %d", rec.Code, http.StatusNotFound)
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("second DELETE status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestSettingsHandler(t *testing.T) {
	s := newTestStore(t)
	eng := newFakeEngine()
	handler := NewSettingsHandler(eng, s)

	put := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString(body)))
		return rec
	}

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

		var resp settingsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Settings["interaction_mode"] != "pinch" || resp.Settings["throw_power"] != "1.2" {
			t.Errorf("settings = %v", resp.Settings)
		}
	})

	t.Run("put applies and persists", func(t *testing.T) {
		rec := put(`{"throw_power": "1.8", "interaction_mode": "follow"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if got := eng.Settings()["throw_power"]; got != "1.8" {
			t.Errorf("engine throw_power = %s", got)
		}
		if v, err := s.Settings().Get("interaction_mode"); err != nil || v != "follow" {
			t.Errorf("stored mode = %q, %v", v, err)
		}
	})

	t.Run("invalid requests", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"bad json", `{`},
			{"empty", `{}`},
			{"unknown key", `{"colour": "red"}`},
			{"not tunable", `{"addr": ":1"}`},
			{"bad value", `{"throw_power": "fast"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if rec := put(tt.body); rec.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
				}
			})
		}
		if _, err := s.Settings().Get("addr"); err == nil {
			t.Error("rejected key was persisted")
		}
	})

	t.Run("without store", func(t *testing.T) {
		h := NewSettingsHandler(newFakeEngine(), nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString(`{"audio": "false"}`)))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}

func TestControlHandler(t *testing.T) {
	eng := newFakeEngine()
	handler := NewControlHandler(eng)

	post := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, nil))
		return rec
	}

	if rec := post("/api/spawn"); rec.Code != http.StatusAccepted {
		t.Errorf("spawn status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if rec := post("/api/spawn?count=3"); rec.Code != http.StatusAccepted {
		t.Errorf("spawn count status = %d", rec.Code)
	}
	if eng.spawns != 4 {
		t.Errorf("spawns = %d, want 4", eng.spawns)
	}
	for _, bad := range []string{"0", "9", "x"} {
		if rec := post("/api/spawn?count=" + bad); rec.Code != http.StatusBadRequest {
			t.Errorf("count=%s status = %d, want %d", bad, rec.Code, http.StatusBadRequest)
		}
	}

	post("/api/pause")
	if !eng.Paused() {
		t.Error("pause did not pause")
	}
	rec := post("/api/resume")
	var resp controlResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if eng.Paused() || resp.Paused {
		t.Error("resume did not resume")
	}

	get := httptest.NewRecorder()
	handler.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/pause", nil))
	if get.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", get.Code, http.StatusMethodNotAllowed)
	}
}
