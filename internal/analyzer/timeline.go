// Package analyzer runs batch expression analysis over recorded video:
// sampled frames go through landmark detection and gesture evaluation,
// significant moments are interpreted and collected into a timeline.
package analyzer

import (
	"sort"
	"time"

	"github.com/emoticon-ai/emoticon/internal/gesture"
	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// DefaultMaxAnalyses bounds how many sampled frames a video analysis
// will consider.
const DefaultMaxAnalyses = 20

// Entry is one significant moment on the timeline.
type Entry struct {
	// Offset is seconds from the start of the video.
	Offset float64 `json:"offset"`
	// Gestures active at this moment, in rule order.
	Gestures []string `json:"gestures"`
	// Score is the inter-frame displacement that triggered the entry.
	Score float64 `json:"score"`
	// Interpretation is the model's reading, empty when interpretation
	// failed or was skipped.
	Interpretation string `json:"interpretation,omitempty"`
	// InterpretErr records why interpretation is missing.
	InterpretErr string `json:"interpret_err,omitempty"`
}

// Result is the outcome of one video analysis.
type Result struct {
	SessionID string `json:"session_id,omitempty"`
	// DominantGestures are the most frequent gestures across all
	// sampled frames, most frequent first.
	DominantGestures []string `json:"dominant_gestures"`
	// Timeline holds the significant moments in chronological order.
	Timeline []Entry `json:"timeline"`
	// FramesAnalyzed counts sampled frames that went through detection.
	FramesAnalyzed int `json:"frames_analyzed"`
	// ExtractionGaps counts sampled frames whose landmark extraction
	// failed. Processing continues past them.
	ExtractionGaps int `json:"extraction_gaps"`
	// InterpretFailures counts entries whose interpretation call failed.
	InterpretFailures int `json:"interpret_failures"`
	// Summary is the whole-timeline reading, when requested.
	Summary string `json:"summary,omitempty"`
}

// frameSkip returns the sampling stride for a video: enough frames are
// kept to give the change detector context without analyzing everything.
func frameSkip(totalFrames, maxAnalyses int) int {
	if maxAnalyses <= 0 {
		maxAnalyses = DefaultMaxAnalyses
	}
	skip := totalFrames / (maxAnalyses * 3)
	if skip < 1 {
		return 1
	}
	return skip
}

// sampleCount returns how many frames a stride of skip yields from
// totalFrames, sampling frame 0 first.
func sampleCount(totalFrames, skip int) int {
	if totalFrames <= 0 || skip <= 0 {
		return 0
	}
	return (totalFrames + skip - 1) / skip
}

// Builder accumulates sampled observations into a timeline. It is
// stateful and single-use; create one per video.
type Builder struct {
	change  *gesture.ChangeDetector
	entries []Entry
	counts  map[string]int
	first   map[string]int
	seen    int
	frames  int
	gaps    int
}

// NewBuilder creates a timeline builder. Batch sampling already bounds
// the analysis rate, so the change detector runs without a cooldown.
func NewBuilder(threshold float64) *Builder {
	return &Builder{
		change: gesture.NewChangeDetector(threshold, 0),
		counts: make(map[string]int),
		first:  make(map[string]int),
	}
}

// Observe feeds one sampled frame. It returns a pointer into the
// timeline when the moment is significant, so the caller can attach an
// interpretation, and nil otherwise.
func (b *Builder) Observe(offset float64, face *landmark.Face, gestures []string) *Entry {
	b.frames++

	for _, g := range gestures {
		if b.counts[g] == 0 {
			b.first[g] = b.seen
			b.seen++
		}
		b.counts[g]++
	}

	score, significant := b.change.Observe(time.Time{}, face, gestures)
	if !significant {
		return nil
	}

	names := make([]string, len(gestures))
	copy(names, gestures)

	b.entries = append(b.entries, Entry{
		Offset:   offset,
		Gestures: names,
		Score:    score,
	})
	return &b.entries[len(b.entries)-1]
}

// RecordGap notes a sampled frame whose landmark extraction failed.
// The gap leaves the change baseline untouched.
func (b *Builder) RecordGap() {
	b.gaps++
}

// Reset prepares the builder for a new subject mid-video, clearing the
// change baseline but keeping the accumulated timeline.
func (b *Builder) Reset() {
	b.change.Reset()
}

// Result finalizes the timeline. The top five gestures by frequency
// become the dominant set; ties go to the gesture seen first.
func (b *Builder) Result() *Result {
	names := make([]string, 0, len(b.counts))
	for g := range b.counts {
		names = append(names, g)
	}
	sort.Slice(names, func(i, j int) bool {
		if b.counts[names[i]] != b.counts[names[j]] {
			return b.counts[names[i]] > b.counts[names[j]]
		}
		return b.first[names[i]] < b.first[names[j]]
	})
	if len(names) > 5 {
		names = names[:5]
	}

	return &Result{
		DominantGestures: names,
		Timeline:         b.entries,
		FramesAnalyzed:   b.frames,
		ExtractionGaps:   b.gaps,
	}
}

// mergeGestures unions per-face gesture sets, preserving first-seen
// order and dropping duplicates.
func mergeGestures(perFace [][]string) []string {
	if len(perFace) == 1 {
		return perFace[0]
	}

	var merged []string
	seen := make(map[string]struct{})
	for _, names := range perFace {
		for _, n := range names {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			merged = append(merged, n)
		}
	}
	return merged
}
