package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gate constants
const (
	// AnalysisWidth is the width frames are shrunk to before differencing.
	AnalysisWidth = 160
	// BlurSize is the Gaussian kernel size applied after shrinking.
	BlurSize = 7
	// DiffThreshold is the per-pixel intensity change counted as motion.
	DiffThreshold = 25
	// DefaultMaxSkip bounds how many still frames may skip detection in a row.
	DefaultMaxSkip = 10
)

// MotionGate decides per frame whether hand detection needs to run. Still
// frames with no hand on screen are skipped, but never more than MaxSkip in
// a row so a motionless hand is still picked up.
type MotionGate struct {
	threshold   float64
	maxSkip     int
	prevGray    gocv.Mat
	initialized bool
	skipped     int
	mu          sync.Mutex
}

// NewMotionGate creates a gate. threshold is the percentage of changed
// pixels that counts as motion, e.g. 1.0 for 1%.
func NewMotionGate(threshold float64, maxSkip int) *MotionGate {
	if maxSkip <= 0 {
		maxSkip = DefaultMaxSkip
	}
	return &MotionGate{
		threshold: threshold,
		maxSkip:   maxSkip,
		prevGray:  gocv.NewMat(),
	}
}

// Allow reports whether the detector should run on frame. handSeen is
// whether the previous tick tracked a hand.
func (m *MotionGate) Allow(frame *gocv.Mat, handSeen bool) bool {
	moved, _ := m.Detect(frame)

	m.mu.Lock()
	defer m.mu.Unlock()

	if moved || handSeen || m.skipped >= m.maxSkip {
		m.skipped = 0
		return true
	}
	m.skipped++
	return false
}

// Detect compares frame against the previous one and returns whether the
// changed share exceeds the threshold, and the share in percent. The first
// frame only establishes the baseline.
func (m *MotionGate) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	small := gocv.NewMat()
	defer small.Close()
	h := frame.Rows() * AnalysisWidth / frame.Cols()
	if h < 1 {
		h = 1
	}
	gocv.Resize(*frame, &small, image.Point{X: AnalysisWidth, Y: h}, 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: BlurSize, Y: BlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		gray.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prevGray, &diff)
	gocv.Threshold(diff, &diff, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100.0

	gray.CopyTo(&m.prevGray)

	return changed > m.threshold, changed
}

// SetThreshold sets the motion percentage. Values <= 0 are ignored.
func (m *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}

// Reset drops the baseline frame and the skip count.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// Close releases the baseline frame. The gate can be reused afterwards.
func (m *MotionGate) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *MotionGate) reset() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
	m.skipped = 0
}
