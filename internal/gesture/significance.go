package gesture

import (
	"time"

	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// DefaultSignificanceThreshold is the stock sensitivity for deciding
// whether an inter-frame landmark change warrants expensive analysis.
const DefaultSignificanceThreshold = 0.15

// keyRegionIndices are the face mesh points compared between frames:
// mouth corners, brows, eyelids, nose bridge and jaw line. Restricting
// the comparison to expressive regions keeps the score stable against
// global head drift.
var keyRegionIndices = []int{
	landmark.MouthCornerLeft, landmark.MouthCornerRight,
	landmark.UpperLip, landmark.LowerLip,
	landmark.LeftBrow, landmark.RightBrow,
	landmark.LeftEyeUpper, landmark.LeftEyeLower,
	landmark.RightEyeUpper, landmark.RightEyeLower,
	landmark.NoseBridgeTop, landmark.NoseBridgeLow,
	landmark.Chin, landmark.JawLeft, landmark.JawRight,
}

// ChangeDetector decides whether the change between two chronologically
// ordered frames of the same subject is large enough to trigger
// downstream interpretation. State is session-scoped with a single
// writer; create one per subject and discard it with the session.
type ChangeDetector struct {
	threshold float64
	cooldown  time.Duration

	primed   bool
	prev     []landmark.Point3D
	prevSet  map[string]struct{}
	hasFired bool
	lastFire time.Time
}

// NewChangeDetector creates a detector with the given score threshold.
// A positive cooldown additionally gates firing so a sustained
// significant state does not retrigger every frame; pass zero for batch
// processing, where sampling already bounds the rate.
func NewChangeDetector(threshold float64, cooldown time.Duration) *ChangeDetector {
	if threshold <= 0 {
		threshold = DefaultSignificanceThreshold
	}
	return &ChangeDetector{threshold: threshold, cooldown: cooldown}
}

// Observe compares the frame against the previous observation and
// reports the displacement score plus whether the change is significant.
// The first frame of a session establishes the baseline and is never
// significant. A change also counts as significant when the gesture set
// itself changed, even if the geometric score stays under threshold.
func (d *ChangeDetector) Observe(now time.Time, f *landmark.Face, gestures []string) (float64, bool) {
	if f == nil {
		return 0, false
	}

	set := make(map[string]struct{}, len(gestures))
	for _, g := range gestures {
		set[g] = struct{}{}
	}

	if !d.primed {
		d.snapshot(f, set)
		d.primed = true
		return 0, false
	}

	score := regionScore(d.prev, f.Points)
	changed := score > d.threshold || !sameSet(d.prevSet, set)

	d.snapshot(f, set)

	if !changed {
		return score, false
	}
	if d.cooldown > 0 && d.hasFired && now.Sub(d.lastFire) < d.cooldown {
		return score, false
	}

	d.hasFired = true
	d.lastFire = now
	return score, true
}

// Reset clears the baseline, as when a new subject or video begins.
func (d *ChangeDetector) Reset() {
	d.primed = false
	d.prev = nil
	d.prevSet = nil
	d.hasFired = false
}

func (d *ChangeDetector) snapshot(f *landmark.Face, set map[string]struct{}) {
	if cap(d.prev) < len(f.Points) {
		d.prev = make([]landmark.Point3D, len(f.Points))
	}
	d.prev = d.prev[:len(f.Points)]
	copy(d.prev, f.Points)
	d.prevSet = set
}

// regionScore is the mean Euclidean displacement over the key expressive
// regions. Indices missing from either frame are skipped; a frame pair
// with no comparable points scores zero.
func regionScore(prev, cur []landmark.Point3D) float64 {
	var total float64
	var n int
	for _, idx := range keyRegionIndices {
		if idx >= len(prev) || idx >= len(cur) {
			continue
		}
		total += landmark.Distance(prev[idx], cur[idx])
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
