package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/emoticon-ai/emoticon/internal/analyzer"
	"github.com/emoticon-ai/emoticon/internal/config"
	"github.com/emoticon-ai/emoticon/internal/detector"
	"github.com/emoticon-ai/emoticon/internal/gesture"
	"github.com/emoticon-ai/emoticon/internal/interpret"
	"github.com/emoticon-ai/emoticon/internal/server"
	"github.com/emoticon-ai/emoticon/internal/server/api"
	"github.com/emoticon-ai/emoticon/internal/session"
	"github.com/emoticon-ai/emoticon/internal/store"
	"github.com/emoticon-ai/emoticon/internal/tray"
)

func main() {
	fmt.Println("Emoticon - Facial Expression Analysis")

	cfg := config.Load()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	applyStoredSettings(st, &cfg)

	interpreter := newInterpreter(cfg)

	sess := session.New(session.Config{
		Store:           st,
		Interpreter:     interpreter,
		CameraID:        cfg.CameraID,
		MotionThreshold: cfg.MotionThreshold,
		CooldownWindow:  cfg.CooldownWindow,
		Threshold:       cfg.Threshold,
		Mode:            interpretMode(cfg),
		MaxFaces:        cfg.MaxFaces,
		BodyRules:       cfg.BodyRules,
	})

	videoConfig := analyzer.DefaultVideoConfig()
	videoConfig.Threshold = cfg.Threshold
	videoConfig.FrameSkip = cfg.FrameSkip
	videoConfig.Mode = interpretMode(cfg)
	videoAnalyzer := analyzer.NewVideoAnalyzer(
		newDetector(cfg), newEvaluator(cfg), interpreter, st, videoConfig,
	)

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Camera:    sess.Camera(),
		Session:   sess,
		Analyzer:  videoAnalyzer,
	})

	if err := sess.Start(); err != nil {
		log.Printf("Live detection unavailable: %v", err)
	} else {
		sess.SetEnabled(true)
		defer sess.Stop()
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New(tray.Callbacks{
		Toggle: func(enabled bool) {
			sess.SetEnabled(enabled)
		},
		Dashboard: func() {
			openBrowser("http://" + cfg.Addr)
		},
		Quit: func() {
			sess.Stop()
		},
	})

	go watchEvents(sess, t)

	t.Run()
}

// applyStoredSettings overrides environment defaults with tunables
// saved through the settings endpoint.
func applyStoredSettings(st *store.Store, cfg *config.Config) {
	if v, ok := storedFloat(st, api.SettingSignificanceThreshold); ok {
		cfg.Threshold = v
	}
	if v, ok := storedFloat(st, api.SettingMotionThreshold); ok {
		cfg.MotionThreshold = v
	}
	if v, ok := storedFloat(st, api.SettingCooldownSeconds); ok {
		cfg.CooldownWindow = time.Duration(v * float64(time.Second))
	}
}

func storedFloat(st *store.Store, key string) (float64, bool) {
	raw, err := st.Settings().Get(key)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// newDetector prefers the MediaPipe runtime and falls back to the mock.
func newDetector(cfg config.Config) detector.Detector {
	dc := detector.DefaultConfig()
	if cfg.MaxFaces > 0 {
		dc.MaxFaces = cfg.MaxFaces
	}
	dc.WithPose = cfg.BodyRules
	if mp, err := detector.NewMediaPipeDetector(dc); err == nil {
		return mp
	}
	return detector.NewMockDetector()
}

// newEvaluator builds the rule sets for batch analysis.
func newEvaluator(cfg config.Config) *gesture.Evaluator {
	var body *gesture.BodyRuleSet
	if cfg.BodyRules {
		body = gesture.DefaultBodyRules(gesture.DefaultBodyThresholds())
	}
	return gesture.NewEvaluator(gesture.DefaultRules(gesture.DefaultThresholds()), body)
}

// newInterpreter builds the OpenAI client, or nil when no key is
// configured so detection still runs offline.
func newInterpreter(cfg config.Config) interpret.Interpreter {
	if cfg.OpenAIKey == "" {
		log.Println("OPENAI_API_KEY not set, interpretation disabled")
		return nil
	}

	opts := []interpret.Option{interpret.WithAPIKey(cfg.OpenAIKey)}
	if cfg.OpenAIModel != "" {
		opts = append(opts, interpret.WithModel(cfg.OpenAIModel))
	}

	client, err := interpret.NewClient(opts...)
	if err != nil {
		log.Printf("Interpretation client unavailable: %v", err)
		return nil
	}
	return client
}

func interpretMode(cfg config.Config) interpret.Mode {
	if cfg.BodyRules {
		return interpret.ModeCombined
	}
	return interpret.ModeFace
}

// watchEvents mirrors live events onto the tray display.
func watchEvents(sess *session.Session, t *tray.Tray) {
	for ev := range sess.Events() {
		if ev.Interpretation != "" {
			t.SetMood(ev.Interpretation)
			continue
		}
		t.SetExpression(ev.Gestures)
	}
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches common locations for the dashboard assets.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".emoticon", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
