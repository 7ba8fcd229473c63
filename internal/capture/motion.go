package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurKernel is the Gaussian kernel size applied before differencing
	// to suppress sensor noise.
	blurKernel = 21
	// pixelDiffMin is the per-pixel intensity delta that counts as change.
	pixelDiffMin = 25
)

// MotionGate is the cheap pre-filter in front of landmark detection.
// It compares consecutive frames by grayscale differencing and reports
// whether enough of the image changed to be worth a detector call.
type MotionGate struct {
	mu        sync.Mutex
	threshold float64
	baseline  gocv.Mat
	primed    bool
}

// NewMotionGate creates a gate with the given threshold: the percentage
// of pixels that must change between frames. A threshold of 1.0 means
// 1% of pixels must change.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Check compares the frame against the previous one and reports whether
// motion was seen plus the percentage of pixels that changed. The first
// frame only establishes the baseline and never reports motion.
func (m *MotionGate) Check(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := grayBlur(frame)
	defer blurred.Close()

	if !m.primed {
		blurred.CopyTo(&m.baseline)
		m.primed = true
		return false, 0
	}

	changed := changedPercent(blurred, m.baseline)
	blurred.CopyTo(&m.baseline)

	return changed > m.threshold, changed
}

// grayBlur converts a frame to a blurred single-channel image suitable
// for differencing.
func grayBlur(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)
	return blurred
}

// changedPercent measures what fraction of pixels differ between two
// preprocessed frames, as a percentage.
func changedPercent(current, baseline gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(current, baseline, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, pixelDiffMin, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100.0
}

// Reset discards the baseline so the next frame primes the gate again.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discardBaseline()
}

// Close releases resources used by the gate.
func (m *MotionGate) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discardBaseline()
}

func (m *MotionGate) discardBaseline() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold sets the motion threshold as a percentage of changed
// pixels. Values less than or equal to 0 are ignored.
func (m *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	m.threshold = threshold
	m.mu.Unlock()
}
