package detector

import (
	"errors"
	"strings"
	"testing"

	"github.com/ayusman/pinchball/internal/hand"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]hand.Landmarks{hand.ThumbsUpLandmarks(), hand.OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("plays queue before fixed hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]hand.Landmarks{hand.OpenPalmLandmarks()})
		mock.Queue([]hand.Landmarks{hand.PinchLandmarks()}, nil)

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 1 || first[0] != hand.PinchLandmarks() {
			t.Errorf("first = %v, want pinch", first)
		}
		if second != nil {
			t.Errorf("second = %v, want no hand", second)
		}
		if len(third) != 1 || third[0] != hand.OpenPalmLandmarks() {
			t.Errorf("third = %v, want open palm", third)
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPrimary(t *testing.T) {
	weak := hand.OpenPalmLandmarks()
	weak.Score = 0.3
	strong := hand.PinchLandmarks()
	other := hand.ThumbsUpLandmarks()

	tests := []struct {
		name  string
		hands []hand.Landmarks
		want  *hand.Landmarks
	}{
		{name: "no hands", hands: nil, want: nil},
		{name: "all below confidence", hands: []hand.Landmarks{weak}, want: nil},
		{name: "skips weak hand", hands: []hand.Landmarks{weak, strong, other}, want: &strong},
		{name: "first confident wins", hands: []hand.Landmarks{other, strong}, want: &other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Primary(tt.hands, 0.5)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Primary() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Primary() picked the wrong hand")
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	point := `{"x":0.5,"y":0.5,"z":0}`
	full := "[" + strings.TrimSuffix(strings.Repeat(point+",", hand.NumLandmarks), ",") + "]"
	short := "[" + point + "]"

	t.Run("complete hand", func(t *testing.T) {
		line := `{"hands":[{"points":` + full + `,"handedness":"Left","score":0.9}]}` + "\n"

		hands, err := decodeResponse([]byte(line))
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("len(hands) = %d, want 1", len(hands))
		}
		if hands[0].Handedness != hand.Left || hands[0].Score != 0.9 {
			t.Errorf("hand = %s %f", hands[0].Handedness, hands[0].Score)
		}
		if hands[0].Points[hand.PinkyTip].X != 0.5 {
			t.Errorf("pinky tip X = %f, want 0.5", hands[0].Points[hand.PinkyTip].X)
		}
	})

	t.Run("partial hand dropped", func(t *testing.T) {
		line := `{"hands":[{"points":` + short + `,"handedness":"Right","score":0.9}]}`

		hands, err := decodeResponse([]byte(line))
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("len(hands) = %d, want 0", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"hands":[],"error":"bad frame"}`)); err == nil {
			t.Error("expected error from service error field")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"hands":`)); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = ""
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	if _, err := NewMediaPipeDetector(cfg); !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("NewMediaPipeDetector() error = %v, want ErrScriptNotFound", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.5 {
		t.Errorf("MinConfidence = %f, want 0.5", cfg.MinConfidence)
	}
}
