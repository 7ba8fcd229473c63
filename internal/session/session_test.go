package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/emoticon-ai/emoticon/internal/detector"
	"github.com/emoticon-ai/emoticon/internal/gesture"
	"github.com/emoticon-ai/emoticon/internal/interpret"
	"github.com/emoticon-ai/emoticon/internal/landmark"
	"github.com/emoticon-ai/emoticon/internal/store"
	"github.com/emoticon-ai/emoticon/testdata"
)

// newTestSession builds a session without opening a camera or
// spawning the pipeline goroutines.
func newTestSession(st *store.Store, interp interpret.Interpreter) *Session {
	return &Session{
		config: Config{
			Store:       st,
			Interpreter: interp,
			Mode:        interpret.ModeFace,
		},
		evaluator: gesture.NewEvaluator(gesture.DefaultRules(gesture.DefaultThresholds()), nil),
		cooldown:  gesture.NewCooldownTracker(gesture.DefaultCooldown),
		change:    make(map[int]*gesture.ChangeDetector),
		jobs:      make(chan interpretJob, 1),
		startedAt: time.Now(),
	}
}

func singleFace(f *landmark.Face) *detector.Result {
	return &detector.Result{Faces: []landmark.Face{*f}}
}

func TestHandleDetectionPrimesThenFires(t *testing.T) {
	s := newTestSession(nil, nil)
	now := time.Now()

	first := s.handleDetection(now, singleFace(testdata.NeutralFace()))
	if len(first) != 0 {
		t.Fatalf("first frame must prime the baseline, got %+v", first)
	}

	events := s.handleDetection(now.Add(time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !containsName(events[0].Gestures, "mouth open") {
		t.Errorf("expected %q in %v", "mouth open", events[0].Gestures)
	}
	if events[0].FaceIndex != 0 {
		t.Errorf("expected face index 0, got %d", events[0].FaceIndex)
	}
	if !containsName(s.LastGestures(), "mouth open") {
		t.Errorf("LastGestures not updated: %v", s.LastGestures())
	}
}

func TestHandleDetectionCooldownSuppressesRepeat(t *testing.T) {
	s := newTestSession(nil, nil)
	now := time.Now()

	s.handleDetection(now, singleFace(testdata.NeutralFace()))
	s.handleDetection(now.Add(time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))
	s.handleDetection(now.Add(2*time.Second), singleFace(testdata.NeutralFace()))

	// The mouth reopens inside the cooldown window: the moment is
	// significant again but every name is still cooling down.
	events := s.handleDetection(now.Add(3*time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))
	if len(events) != 0 {
		t.Fatalf("expected cooldown to suppress the repeat, got %+v", events)
	}

	// Past the window the same gestures fire again.
	s.handleDetection(now.Add(4*time.Second), singleFace(testdata.NeutralFace()))
	events = s.handleDetection(now.Add(8*time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))
	if len(events) != 1 {
		t.Fatalf("expected a fire after the window elapsed, got %d events", len(events))
	}
}

func TestHandleDetectionIgnoresEmptyResults(t *testing.T) {
	s := newTestSession(nil, nil)

	if events := s.handleDetection(time.Now(), nil); events != nil {
		t.Errorf("nil result: got %+v", events)
	}
	if events := s.handleDetection(time.Now(), &detector.Result{}); events != nil {
		t.Errorf("no faces: got %+v", events)
	}
}

func TestHandleDetectionTracksFacesIndependently(t *testing.T) {
	s := newTestSession(nil, nil)
	now := time.Now()

	two := &detector.Result{Faces: []landmark.Face{
		*testdata.NeutralFace(),
		*testdata.NeutralFace(),
	}}
	s.handleDetection(now, two)

	// Only the second face changes.
	two = &detector.Result{Faces: []landmark.Face{
		*testdata.NeutralFace(),
		*testdata.MouthOpen(testdata.NeutralFace()),
	}}
	events := s.handleDetection(now.Add(time.Second), two)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].FaceIndex != 1 {
		t.Errorf("expected face index 1, got %d", events[0].FaceIndex)
	}
}

func TestHandleDetectionPersists(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	s := newTestSession(st, nil)
	s.sessionID = "live-test"
	if err := st.Sessions().Create(&store.Session{
		ID:        s.sessionID,
		Kind:      store.SessionLive,
		Source:    "camera",
		StartedAt: s.startedAt,
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	now := time.Now()
	s.handleDetection(now, singleFace(testdata.NeutralFace()))
	s.handleDetection(now.Add(time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))

	analyses, err := st.Analyses().ListBySession(s.sessionID)
	if err != nil {
		t.Fatalf("list analyses: %v", err)
	}
	if len(analyses) != 1 {
		t.Fatalf("expected 1 persisted analysis, got %d", len(analyses))
	}
	if !containsName(analyses[0].Gestures, "mouth open") {
		t.Errorf("persisted gestures %v missing %q", analyses[0].Gestures, "mouth open")
	}

	count, err := st.Stats().Get("mouth open")
	if err != nil {
		t.Fatalf("get stat: %v", err)
	}
	if count.Count != 1 {
		t.Errorf("expected count 1 for mouth open, got %d", count.Count)
	}
}

func TestEnqueueLatestWins(t *testing.T) {
	s := newTestSession(nil, interpret.NewMock())

	s.enqueue(interpretJob{faceIndex: 0, gestures: []string{"frown"}})
	s.enqueue(interpretJob{faceIndex: 1, gestures: []string{"wide smile"}})

	job := <-s.jobs
	if job.faceIndex != 1 || !containsName(job.gestures, "wide smile") {
		t.Errorf("expected the newer job to win, got %+v", job)
	}

	select {
	case extra := <-s.jobs:
		t.Errorf("queue should hold one job, got extra %+v", extra)
	default:
	}
}

func TestEnqueueNoopWithoutInterpreter(t *testing.T) {
	s := newTestSession(nil, nil)
	s.enqueue(interpretJob{gestures: []string{"frown"}})

	select {
	case job := <-s.jobs:
		t.Errorf("nothing should be queued without an interpreter, got %+v", job)
	default:
	}
}

func TestInterpreterWorkerEmitsEvent(t *testing.T) {
	s := newTestSession(nil, interpret.NewMock())
	events := s.Events()

	stopCh := make(chan struct{})
	s.wg.Add(1)
	go s.runInterpreter(stopCh)
	defer func() {
		close(stopCh)
		s.wg.Wait()
	}()

	at := time.Now()
	s.enqueue(interpretJob{faceIndex: 0, gestures: []string{"wide smile"}, score: 0.2, at: at})

	select {
	case ev := <-events:
		if ev.Interpretation == "" {
			t.Error("expected an interpretation on the worker event")
		}
		if !containsName(ev.Gestures, "wide smile") {
			t.Errorf("unexpected gestures %v", ev.Gestures)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the interpretation event")
	}
}

func TestSetEnabled(t *testing.T) {
	s := newTestSession(nil, nil)
	if s.IsEnabled() {
		t.Error("detection should start disabled")
	}
	s.SetEnabled(true)
	if !s.IsEnabled() {
		t.Error("SetEnabled(true) did not stick")
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	s := newTestSession(nil, nil)
	events := s.Events()
	for i := 0; i < EventBufferSize+5; i++ {
		s.publish(Event{FaceIndex: i})
	}
	if len(events) != EventBufferSize {
		t.Errorf("expected the buffer to cap at %d, got %d", EventBufferSize, len(events))
	}
}

func TestEventsFansOutToAllSubscribers(t *testing.T) {
	s := newTestSession(nil, nil)
	dashboard := s.Events()
	tray := s.Events()

	s.publish(Event{Gestures: []string{"wide smile"}})

	for name, ch := range map[string]<-chan Event{"dashboard": dashboard, "tray": tray} {
		select {
		case ev := <-ch:
			if !containsName(ev.Gestures, "wide smile") {
				t.Errorf("%s subscriber got gestures %v", name, ev.Gestures)
			}
		default:
			t.Errorf("%s subscriber missed the event", name)
		}
	}
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestSetCooldownWindowAppliesImmediately(t *testing.T) {
	s := newTestSession(nil, nil)
	now := time.Now()

	s.handleDetection(now, singleFace(testdata.NeutralFace()))
	events := s.handleDetection(now.Add(time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))
	if len(events) != 1 {
		t.Fatalf("expected the first mouth open to fire, got %d events", len(events))
	}

	// Shrink the window and the same gesture re-fires after a short
	// gap instead of waiting out the default five seconds.
	s.SetCooldownWindow(500 * time.Millisecond)

	s.handleDetection(now.Add(2*time.Second), singleFace(testdata.NeutralFace()))
	events = s.handleDetection(now.Add(3*time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))
	if len(events) != 1 {
		t.Fatalf("expected a re-fire under the shortened window, got %d events", len(events))
	}
	if !containsName(events[0].Gestures, "mouth open") {
		t.Errorf("gestures = %v, want mouth open", events[0].Gestures)
	}
}

func TestSetThresholdDiscardsBaselines(t *testing.T) {
	s := newTestSession(nil, nil)
	now := time.Now()

	s.handleDetection(now, singleFace(testdata.NeutralFace()))
	if len(s.change) != 1 {
		t.Fatalf("expected one primed baseline, got %d", len(s.change))
	}

	s.SetThreshold(0.3)
	if len(s.change) != 0 {
		t.Error("baselines should be discarded on a threshold change")
	}

	// The next frame primes again rather than firing.
	events := s.handleDetection(now.Add(time.Second), singleFace(testdata.MouthOpen(testdata.NeutralFace())))
	if len(events) != 0 {
		t.Errorf("frame after re-prime fired %d events, want 0", len(events))
	}
}

func TestConfigThreadsDetectorTuning(t *testing.T) {
	dc := Config{MaxFaces: 4, BodyRules: true}.detectorConfig()
	if dc.MaxFaces != 4 {
		t.Errorf("MaxFaces = %d, want 4", dc.MaxFaces)
	}
	if !dc.WithPose {
		t.Error("body rules should enable pose detection")
	}

	dc = Config{}.detectorConfig()
	if dc.MaxFaces != detector.DefaultConfig().MaxFaces {
		t.Errorf("unset MaxFaces = %d, want the detector default", dc.MaxFaces)
	}
	if dc.WithPose {
		t.Error("pose detection should stay off without body rules")
	}
}

func TestInterpreterDiscardsQueuedJobOnStop(t *testing.T) {
	mock := interpret.NewMock()
	s := newTestSession(nil, mock)

	s.enqueue(interpretJob{gestures: []string{"frown"}, at: time.Now()})

	stopCh := make(chan struct{})
	close(stopCh)
	s.wg.Add(1)
	s.runInterpreter(stopCh)

	if n := len(mock.Requests()); n != 0 {
		t.Errorf("queued job was flushed on stop: %d interpret calls", n)
	}
}

// blockingInterpreter holds an interpretation open until its context
// is canceled.
type blockingInterpreter struct {
	started chan struct{}
}

func (b *blockingInterpreter) Interpret(ctx context.Context, req *interpret.Request) (*interpret.Interpretation, error) {
	close(b.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingInterpreter) InterpretTimeline(ctx context.Context, moments []interpret.Moment) (*interpret.Interpretation, error) {
	return nil, ctx.Err()
}

func (b *blockingInterpreter) Health(ctx context.Context) error { return nil }
func (b *blockingInterpreter) Close() error                     { return nil }

func TestStopCancelsInFlightInterpretation(t *testing.T) {
	bi := &blockingInterpreter{started: make(chan struct{})}
	s := newTestSession(nil, bi)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	stopCh := make(chan struct{})
	s.wg.Add(1)
	go s.runInterpreter(stopCh)

	s.enqueue(interpretJob{gestures: []string{"frown"}, at: time.Now()})

	select {
	case <-bi.started:
	case <-time.After(2 * time.Second):
		t.Fatal("interpretation never started")
	}

	close(stopCh)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop promptly after cancel")
	}
}
