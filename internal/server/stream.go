package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/emoticon-ai/emoticon/internal/capture"
)

// streamInterval paces the preview at roughly 15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves an MJPEG preview of the camera.
type StreamHandler struct {
	camera capture.Camera
}

// NewStreamHandler creates a StreamHandler for the given camera.
func NewStreamHandler(camera capture.Camera) *StreamHandler {
	return &StreamHandler{camera: camera}
}

// ServeHTTP streams MJPEG frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for r.Context().Err() == nil {
		frame, err := h.camera.ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		writeMJPEGPart(w, buf.GetBytes())
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamInterval)
	}
}

// writeMJPEGPart emits one multipart frame.
func writeMJPEGPart(w http.ResponseWriter, jpeg []byte) {
	fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg))
	w.Write(jpeg)
	fmt.Fprint(w, "\r\n")
}
