package main

import "testing"

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		cfg      Config
		wantBody string
		wantOK   bool
	}{
		{"hit", Request{Event: "hit", BallID: 3, Points: 10, Score: 40}, Config{MinPoints: 10}, "Hit ball 3 for +10 (score 40)", true},
		{"small hit", Request{Event: "hit", BallID: 3, Points: 5}, Config{MinPoints: 10}, "", false},
		{"drop", Request{Event: "drop", BallID: 7, Score: 15}, Config{}, "Dropped ball 7 (score 15)", true},
		{"other event", Request{Event: "bounce", BallID: 1}, Config{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body, ok := message(tt.req, tt.cfg)
			if ok != tt.wantOK || body != tt.wantBody {
				t.Errorf("message() = %q, %v; want %q, %v", body, ok, tt.wantBody, tt.wantOK)
			}
			if ok && title == "" {
				t.Error("empty title")
			}
		})
	}
}
