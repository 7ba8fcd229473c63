package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// MediaPipeDetector implements Detector using a Python MediaPipe
// face-mesh subprocess. Frames go over stdin as length-prefixed JPEG;
// results come back as one JSON line per frame.
type MediaPipeDetector struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := findFaceMeshScript()
	if scriptPath == "" {
		return nil, fmt.Errorf("face_mesh_service.py not found")
	}

	return &MediaPipeDetector{
		config: config,
	}, nil
}

// Detect analyzes a frame and returns detected face and pose landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	if err := d.writeFrame(frame); err != nil {
		return nil, err
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	result, err := decodeResult(line)
	if err != nil {
		return nil, err
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()

	return result, nil
}

// writeFrame sends one frame to the service as a 4-byte big-endian
// length followed by the JPEG bytes.
func (d *MediaPipeDetector) writeFrame(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))

	if _, err := d.stdin.Write(header[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	scriptPath := findFaceMeshScript()
	if scriptPath == "" {
		return fmt.Errorf("face_mesh_service.py not found")
	}

	python := findVenvPython()
	if python == "" {
		python = "python3"
	}

	cmd := exec.Command(python, d.serviceArgs(scriptPath)...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start face mesh service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.lastUsed = time.Now()
	return nil
}

func (d *MediaPipeDetector) serviceArgs(scriptPath string) []string {
	args := []string{
		scriptPath,
		fmt.Sprintf("--max-faces=%d", d.config.MaxFaces),
		fmt.Sprintf("--min-confidence=%g", d.config.MinConfidence),
		fmt.Sprintf("--min-tracking=%g", d.config.MinTrackingConf),
	}
	if d.config.RefineIris {
		args = append(args, "--refine-iris")
	}
	if d.config.WithPose {
		args = append(args, "--with-pose")
	}
	return args
}

// idleShutdown is how long the subprocess stays alive with no frames
// before it is reaped. It restarts transparently on the next Detect.
const idleShutdown = 30 * time.Second

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

// findFaceMeshScript locates the landmark service script near the
// binary, the working directory, or the user data directory.
func findFaceMeshScript() string {
	return firstExisting(
		"scripts/face_mesh_service.py",
		"../scripts/face_mesh_service.py",
		filepath.Join(execDir(), "scripts/face_mesh_service.py"),
		filepath.Join(os.Getenv("HOME"), ".emoticon/scripts/face_mesh_service.py"),
	)
}

// findVenvPython prefers a project virtualenv interpreter over the
// system python3.
func findVenvPython() string {
	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir(), "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".emoticon/venv/bin/python"),
	)
}

func execDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(execPath)
}

// firstExisting returns the first candidate path that exists, made
// absolute when possible.
func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// jsonFrame represents the JSON structure from the Python service.
type jsonFrame struct {
	Faces []jsonSubject `json:"faces"`
	Pose  *jsonSubject  `json:"pose"`
}

type jsonSubject struct {
	Points []jsonPoint `json:"points"`
	Score  float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// decodeResult parses one response line from the service.
func decodeResult(line []byte) (*Result, error) {
	var frame jsonFrame
	if err := json.Unmarshal(line, &frame); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := &Result{
		Faces: make([]landmark.Face, len(frame.Faces)),
	}
	for i, f := range frame.Faces {
		result.Faces[i] = landmark.Face{
			Points: toPoints(f.Points),
			Score:  f.Score,
		}
	}
	if frame.Pose != nil {
		result.Pose = &landmark.Pose{
			Points: toPoints(frame.Pose.Points),
			Score:  frame.Pose.Score,
		}
	}

	return result, nil
}

func toPoints(in []jsonPoint) []landmark.Point3D {
	out := make([]landmark.Point3D, len(in))
	for i, p := range in {
		out[i] = landmark.Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}
