package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/emoticon-ai/emoticon/internal/capture"
	"github.com/emoticon-ai/emoticon/internal/detector"
	"github.com/emoticon-ai/emoticon/internal/gesture"
	"github.com/emoticon-ai/emoticon/internal/interpret"
	"github.com/emoticon-ai/emoticon/internal/store"
)

// ErrInterpretBudget marks timeline entries left uninterpreted because
// the per-video analysis limit was reached.
var ErrInterpretBudget = errors.New("analysis limit reached")

// Config controls a video analysis run.
type Config struct {
	// MaxAnalyses bounds interpretation calls per video.
	MaxAnalyses int
	// FrameSkip forces an explicit sampling stride. 0 derives one from
	// the frame count and MaxAnalyses.
	FrameSkip int
	// Threshold is the significance threshold; 0 uses the default.
	Threshold float64
	// Mode selects the interpretation prompt family.
	Mode interpret.Mode
	// MaxVideoBytes bounds accepted file size; 0 uses the default.
	MaxVideoBytes int64
	// Summarize additionally requests a whole-timeline reading.
	Summarize bool
}

// DefaultVideoConfig returns the stock analysis settings.
func DefaultVideoConfig() Config {
	return Config{
		MaxAnalyses: DefaultMaxAnalyses,
		Mode:        interpret.ModeFace,
	}
}

// VideoAnalyzer drives batch analysis: decode, sample, detect, evaluate,
// interpret, persist.
type VideoAnalyzer struct {
	detector  detector.Detector
	evaluator *gesture.Evaluator
	interp    interpret.Interpreter
	store     *store.Store
	config    Config
}

// NewVideoAnalyzer creates an analyzer. The store is optional; pass nil
// to skip persistence. The interpreter is optional too; without one the
// timeline is built but never interpreted.
func NewVideoAnalyzer(det detector.Detector, eval *gesture.Evaluator, interp interpret.Interpreter, st *store.Store, config Config) *VideoAnalyzer {
	if config.MaxAnalyses <= 0 {
		config.MaxAnalyses = DefaultMaxAnalyses
	}
	return &VideoAnalyzer{
		detector:  det,
		evaluator: eval,
		interp:    interp,
		store:     st,
		config:    config,
	}
}

// Analyze runs the full pipeline over one video file. The context
// cancels between frames; a canceled run returns ctx.Err() and persists
// nothing further.
func (v *VideoAnalyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	video, err := capture.OpenVideoFile(path, v.config.MaxVideoBytes)
	if err != nil {
		return nil, err
	}
	defer video.Close()

	fps := video.FPS()
	if fps <= 0 {
		fps = 30
	}
	skip := v.config.FrameSkip
	if skip <= 0 {
		skip = frameSkip(video.FrameCount(), v.config.MaxAnalyses)
	}

	sessionID := uuid.New().String()
	if v.store != nil {
		sess := &store.Session{
			ID:     sessionID,
			Kind:   store.SessionVideo,
			Source: filepath.Base(path),
		}
		if err := v.store.Sessions().Create(sess); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}

	builder := NewBuilder(v.config.Threshold)

	var (
		failures    int
		interpreted int
		quotaOut    bool
	)

	for frameIndex := 0; ; frameIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, ok := video.ReadFrame()
		if !ok {
			break
		}

		if frameIndex%skip != 0 {
			frame.Close()
			continue
		}

		detected, err := v.detector.Detect(frame)
		frame.Close()
		if err != nil {
			log.Printf("detect frame %d: %v", frameIndex, err)
			builder.RecordGap()
			continue
		}

		offset := float64(frameIndex) / fps
		entry := v.observe(builder, offset, detected)
		if entry == nil {
			continue
		}

		switch {
		case v.interp == nil:
			// timeline only
		case quotaOut:
			entry.InterpretErr = "interpretation stopped: quota exhausted"
			failures++
		case interpreted >= v.config.MaxAnalyses:
			entry.InterpretErr = ErrInterpretBudget.Error()
		default:
			interpreted++
			reading, err := v.interp.Interpret(ctx, &interpret.Request{
				Gestures: entry.Gestures,
				Mode:     v.config.Mode,
			})
			if err != nil {
				entry.InterpretErr = err.Error()
				failures++

				var apiErr *interpret.APIError
				if errors.As(err, &apiErr) && apiErr.IsQuotaExhausted() {
					quotaOut = true
					log.Printf("interpretation quota exhausted, continuing without readings")
				}
			} else {
				entry.Interpretation = reading.Text
			}
		}

		v.persistEntry(sessionID, entry)
	}

	result := builder.Result()
	result.SessionID = sessionID
	result.InterpretFailures = failures

	if v.config.Summarize && v.interp != nil && !quotaOut && len(result.Timeline) > 0 {
		moments := make([]interpret.Moment, len(result.Timeline))
		for i, e := range result.Timeline {
			moments[i] = interpret.Moment{Offset: e.Offset, Gestures: e.Gestures}
		}
		summary, err := v.interp.InterpretTimeline(ctx, moments)
		if err != nil {
			log.Printf("timeline summary: %v", err)
			result.InterpretFailures++
		} else {
			result.Summary = summary.Text
		}
	}

	if v.store != nil {
		if err := v.store.Sessions().End(sessionID, result.FramesAnalyzed); err != nil {
			log.Printf("end session %s: %v", sessionID, err)
		}
	}

	return result, nil
}

// observe evaluates every detected face independently and feeds the
// merged gesture set to the timeline. The first face anchors the
// geometric comparison.
func (v *VideoAnalyzer) observe(builder *Builder, offset float64, detected *detector.Result) *Entry {
	if len(detected.Faces) == 0 {
		return builder.Observe(offset, nil, nil)
	}

	perFace := make([][]string, len(detected.Faces))
	for i := range detected.Faces {
		perFace[i] = v.evaluator.Evaluate(&detected.Faces[i])
	}

	gestures := mergeGestures(perFace)
	if detected.Pose != nil {
		gestures = append(gestures, v.evaluator.EvaluateBody(detected.Pose)...)
	}

	return builder.Observe(offset, &detected.Faces[0], gestures)
}

func (v *VideoAnalyzer) persistEntry(sessionID string, entry *Entry) {
	if v.store == nil {
		return
	}

	err := v.store.Analyses().Create(&store.Analysis{
		SessionID:      sessionID,
		Offset:         entry.Offset,
		Gestures:       entry.Gestures,
		Score:          entry.Score,
		Interpretation: entry.Interpretation,
		Mode:           string(v.config.Mode),
	})
	if err != nil {
		log.Printf("persist analysis at %.1fs: %v", entry.Offset, err)
	}

	if err := v.store.Stats().Record(entry.Gestures...); err != nil {
		log.Printf("record stats: %v", err)
	}
}
