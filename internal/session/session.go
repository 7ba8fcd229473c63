// Package session runs the live detection loop: camera frames through
// the motion gate, landmark extraction, gesture evaluation, and the
// interpretation worker.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emoticon-ai/emoticon/internal/capture"
	"github.com/emoticon-ai/emoticon/internal/detector"
	"github.com/emoticon-ai/emoticon/internal/gesture"
	"github.com/emoticon-ai/emoticon/internal/interpret"
	"github.com/emoticon-ai/emoticon/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while the scene is still.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to idle.
	IdleTimeout = 2 * time.Second
	// EventBufferSize bounds the outbound event channel. Slow consumers
	// lose events rather than stall the pipeline.
	EventBufferSize = 16
)

// Event is one live observation, published to the websocket layer and
// the tray. Interpretation arrives on a separate event once the worker
// finishes; detection events carry an empty string.
type Event struct {
	FaceIndex      int       `json:"face_index"`
	Gestures       []string  `json:"gestures"`
	Score          float64   `json:"score"`
	Interpretation string    `json:"interpretation,omitempty"`
	At             time.Time `json:"at"`
}

// Config holds the live session dependencies and tuning.
type Config struct {
	Store           *store.Store
	Interpreter     interpret.Interpreter
	CameraID        int
	MotionThreshold float64
	CooldownWindow  time.Duration
	Threshold       float64
	Mode            interpret.Mode
	MaxFaces        int
	BodyRules       bool
}

// detectorConfig adapts the session tuning to the landmark detector.
func (c Config) detectorConfig() detector.Config {
	dc := detector.DefaultConfig()
	if c.MaxFaces > 0 {
		dc.MaxFaces = c.MaxFaces
	}
	dc.WithPose = c.BodyRules
	return dc
}

// Session orchestrates live capture and detection. One writer
// goroutine owns the camera; everything else observes through the
// event channel or the accessor methods.
type Session struct {
	config    Config
	camera    capture.Camera
	motion    *capture.MotionGate
	detector  detector.Detector
	evaluator *gesture.Evaluator
	cooldown  *gesture.CooldownTracker

	// change detectors are keyed by face index so two faces in frame
	// track their own baselines.
	change map[int]*gesture.ChangeDetector

	jobs chan interpretJob

	mu           sync.RWMutex
	subs         []chan Event
	enabled      bool
	stopCh       chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	sessionID    string
	startedAt    time.Time
	frames       int
	lastGestures []string
}

type interpretJob struct {
	faceIndex int
	gestures  []string
	score     float64
	at        time.Time
}

// New creates a live session with the given configuration.
func New(config Config) *Session {
	motionThreshold := config.MotionThreshold
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // percent of changed pixels
	}
	cooldown := config.CooldownWindow
	if cooldown <= 0 {
		cooldown = gesture.DefaultCooldown
	}

	var body *gesture.BodyRuleSet
	if config.BodyRules {
		body = gesture.DefaultBodyRules(gesture.DefaultBodyThresholds())
	}

	s := &Session{
		config:    config,
		camera:    capture.NewCamera(config.CameraID),
		motion:    capture.NewMotionGate(motionThreshold),
		evaluator: gesture.NewEvaluator(gesture.DefaultRules(gesture.DefaultThresholds()), body),
		cooldown:  gesture.NewCooldownTracker(cooldown),
		change:    make(map[int]*gesture.ChangeDetector),
		jobs:      make(chan interpretJob, 1),
	}

	// Prefer the MediaPipe runtime, fall back to the mock so the app
	// still comes up on machines without it.
	if mp, err := detector.NewMediaPipeDetector(config.detectorConfig()); err == nil {
		s.detector = mp
		log.Println("Using MediaPipe face landmark detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		s.detector = detector.NewMockDetector()
	}

	return s
}

// SetEnabled toggles gesture detection without stopping the pipeline.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// IsEnabled reports whether detection is currently enabled.
func (s *Session) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetThreshold updates the significance threshold. Per-face baselines
// are discarded so the next frame primes them at the new sensitivity.
func (s *Session) SetThreshold(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Threshold = v
	s.change = make(map[int]*gesture.ChangeDetector)
}

// SetMotionThreshold updates the pixel-motion pre-gate threshold.
func (s *Session) SetMotionThreshold(v float64) {
	s.motion.SetThreshold(v)
}

// SetCooldownWindow updates the per-gesture debounce window.
func (s *Session) SetCooldownWindow(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.CooldownWindow = d
	s.cooldown.SetWindow(d)
}

// resetBaselines drops significance baselines and firing history, as
// on the transition back to idle.
func (s *Session) resetBaselines() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cd := range s.change {
		cd.Reset()
	}
	s.cooldown.Reset()
}

// SetDetector swaps the landmark detector implementation.
func (s *Session) SetDetector(d detector.Detector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector = d
}

// Detector returns the landmark detector.
func (s *Session) Detector() detector.Detector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detector
}

// Camera returns the camera instance.
func (s *Session) Camera() capture.Camera {
	return s.camera
}

// Events returns a new subscription to the live event stream. Every
// subscriber sees every event; the websocket layer and the tray each
// hold their own. A subscriber whose buffer is full loses events
// rather than stalling the pipeline.
func (s *Session) Events() <-chan Event {
	ch := make(chan Event, EventBufferSize)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// LastGestures returns the gesture set from the most recent
// significant detection.
func (s *Session) LastGestures() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lastGestures))
	copy(out, s.lastGestures)
	return out
}

// lifetime returns the context canceled by Stop, so in-flight work
// ends with the session instead of running out its own timeout.
func (s *Session) lifetime() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

// ID returns the current session id, or "" before Start.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Start opens the camera and begins the detection pipeline.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return nil
	}

	if err := s.camera.Open(); err != nil {
		return err
	}
	s.camera.SetFPS(IdleFPS)

	s.sessionID = uuid.New().String()
	s.startedAt = time.Now()
	s.frames = 0

	if s.config.Store != nil {
		err := s.config.Store.Sessions().Create(&store.Session{
			ID:        s.sessionID,
			Kind:      store.SessionLive,
			Source:    "camera",
			StartedAt: s.startedAt,
		})
		if err != nil {
			log.Printf("record session start: %v", err)
		}
	}

	s.stopCh = make(chan struct{})
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.wg.Add(2)
	go s.runPipeline(s.stopCh)
	go s.runInterpreter(s.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources. A queued
// interpretation request is discarded, not flushed.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	if s.cancel != nil {
		s.cancel()
	}
	id := s.sessionID
	frames := s.frames
	s.mu.Unlock()

	s.wg.Wait()

	if err := s.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	s.motion.Close()
	if d := s.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	if s.config.Store != nil && id != "" {
		if err := s.config.Store.Sessions().End(id, frames); err != nil {
			log.Printf("record session end: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// handleDetection evaluates one detection result. It returns the
// events to publish; significant moments are persisted and queued for
// interpretation as a side effect.
func (s *Session) handleDetection(now time.Time, result *detector.Result) []Event {
	if result == nil || len(result.Faces) == 0 {
		return nil
	}

	s.mu.Lock()
	s.frames++
	offset := now.Sub(s.startedAt).Seconds()
	s.mu.Unlock()

	var bodyGestures []string
	if s.config.BodyRules && result.Pose != nil {
		bodyGestures = s.evaluator.EvaluateBody(result.Pose)
	}

	var out []Event
	for i := range result.Faces {
		face := &result.Faces[i]
		gestures := s.evaluator.Evaluate(face)
		if len(bodyGestures) > 0 {
			gestures = append(gestures, bodyGestures...)
		}

		s.mu.Lock()
		cd, ok := s.change[i]
		if !ok {
			cd = gesture.NewChangeDetector(s.config.Threshold, 0)
			s.change[i] = cd
		}
		score, significant := cd.Observe(now, face, gestures)
		if !significant {
			s.mu.Unlock()
			continue
		}

		// The cooldown suppresses a sustained state from re-firing;
		// the moment stays significant even if every name is quiet.
		fresh := s.cooldown.Filter(now, gestures)
		s.mu.Unlock()
		if len(fresh) == 0 {
			continue
		}

		ev := Event{
			FaceIndex: i,
			Gestures:  fresh,
			Score:     score,
			At:        now,
		}
		out = append(out, ev)

		s.mu.Lock()
		s.lastGestures = fresh
		s.mu.Unlock()

		s.persist(offset, fresh, score)
		s.enqueue(interpretJob{faceIndex: i, gestures: fresh, score: score, at: now})
	}
	return out
}

func (s *Session) persist(offset float64, gestures []string, score float64) {
	if s.config.Store == nil {
		return
	}

	err := s.config.Store.Analyses().Create(&store.Analysis{
		SessionID: s.ID(),
		Offset:    offset,
		Gestures:  gestures,
		Score:     score,
		Mode:      string(s.config.Mode),
	})
	if err != nil {
		log.Printf("persist analysis: %v", err)
	}

	if err := s.config.Store.Stats().Record(gestures...); err != nil {
		log.Printf("record stats: %v", err)
	}
}

// enqueue hands a job to the interpretation worker. The queue holds a
// single slot; a newer detection replaces an older queued one.
func (s *Session) enqueue(job interpretJob) {
	if s.config.Interpreter == nil {
		return
	}
	for {
		select {
		case s.jobs <- job:
			return
		default:
		}
		select {
		case <-s.jobs:
		default:
		}
	}
}

// publish fans an event out to every subscriber without blocking the
// pipeline.
func (s *Session) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
