package session

import (
	"context"
	"log"
	"time"

	"github.com/emoticon-ai/emoticon/internal/interpret"
)

// runPipeline is the camera loop. It owns the frame cadence:
//
//  1. Tick at IdleFPS while the scene is still.
//  2. On motion, switch to ActiveFPS and run landmark detection.
//  3. After IdleTimeout without motion, drop back to idle and reset
//     the per-face baselines.
func (s *Session) runPipeline(stopCh chan struct{}) {
	defer s.wg.Done()

	activeMode := false
	lastMotion := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !s.IsEnabled() {
				continue
			}

			frame, err := s.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			moving, _ := s.motion.Check(frame)
			if moving {
				lastMotion = time.Now()
				if !activeMode {
					activeMode = true
					s.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode && time.Since(lastMotion) > IdleTimeout {
				activeMode = false
				s.camera.SetFPS(IdleFPS)
				frameInterval = time.Second / time.Duration(IdleFPS)
				ticker.Reset(frameInterval)
				s.resetBaselines()
				log.Println("Switched to idle mode")
			}

			det := s.Detector()
			if !activeMode || det == nil {
				frame.Close()
				continue
			}

			result, err := det.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting landmarks: %v", err)
				continue
			}

			for _, ev := range s.handleDetection(time.Now(), result) {
				s.publish(ev)
			}
		}
	}
}

// runInterpreter drains the single-slot job queue and attaches
// interpretations to fresh events. One request is in flight at a time.
func (s *Session) runInterpreter(stopCh chan struct{}) {
	defer s.wg.Done()

	for {
		select {
		case <-stopCh:
			return
		case job := <-s.jobs:
			// Stop discards an already-queued job rather than flushing
			// it; the select above may have picked the job at random.
			select {
			case <-stopCh:
				return
			default:
			}

			mode := s.config.Mode
			if mode == "" {
				mode = interpret.ModeFace
			}

			ctx, cancel := context.WithTimeout(s.lifetime(), 30*time.Second)
			result, err := s.config.Interpreter.Interpret(ctx, &interpret.Request{
				Gestures: job.gestures,
				Mode:     mode,
			})
			cancel()
			if err != nil {
				log.Printf("interpret gestures: %v", err)
				continue
			}

			s.publish(Event{
				FaceIndex:      job.faceIndex,
				Gestures:       job.gestures,
				Score:          job.score,
				Interpretation: result.Text,
				At:             job.at,
			})
		}
	}
}
