package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/pinchball/internal/store"
)

func TestAPI_PlaygroundWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	prior := &store.Session{Mode: "pinch", Score: 40}
	if err := s.Sessions().Create(prior); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	eng := newFakeEngine()
	srv := New(Config{Store: s, Engine: eng})
	defer srv.Shutdown(t.Context())
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Session history
	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []struct {
			ID    string `json:"id"`
			Score int    `json:"score"`
		} `json:"sessions"`
		Best int `json:"best"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Best != 40 {
		t.Fatalf("sessions = %+v", listed)
	}

	// 2. Change a setting
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", bytes.NewBufferString(`{"catch_distance": "60"}`))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if v, err := s.Settings().Get("catch_distance"); err != nil || v != "60" {
		t.Errorf("stored catch_distance = %q, %v", v, err)
	}

	// 3. Spawn and pause
	resp, _ = client.Post(ts.URL+"/api/spawn?count=2", "application/json", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("POST /api/spawn status = %d", resp.StatusCode)
	}
	resp, _ = client.Post(ts.URL+"/api/pause", "application/json", nil)
	resp.Body.Close()

	if eng.spawns != 2 || !eng.Paused() {
		t.Errorf("engine spawns = %d, paused = %v", eng.spawns, eng.Paused())
	}

	// 4. Health reflects the pause
	resp, _ = client.Get(ts.URL + "/api/health")
	var health struct {
		Status string `json:"status"`
		Paused bool   `json:"paused"`
	}
	json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()

	if health.Status != "ok" || !health.Paused {
		t.Errorf("health = %+v", health)
	}

	// 5. Delete the old session
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+prior.ID, nil)
	resp, _ = client.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
