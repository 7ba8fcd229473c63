package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/emoticon-ai/emoticon/internal/analyzer"
	"github.com/emoticon-ai/emoticon/internal/capture"
)

// VideosHandler accepts a video upload and runs the batch analysis.
type VideosHandler struct {
	analyzer *analyzer.VideoAnalyzer
	maxBytes int64
}

// NewVideosHandler creates a VideosHandler. A non-positive maxBytes
// uses the capture default.
func NewVideosHandler(a *analyzer.VideoAnalyzer, maxBytes int64) *VideosHandler {
	if maxBytes <= 0 {
		maxBytes = capture.MaxVideoBytes
	}
	return &VideosHandler{analyzer: a, maxBytes: maxBytes}
}

// ServeHTTP handles POST /api/videos. The video arrives as a multipart
// form with a "video" field; the response is the full analysis result.
func (h *VideosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing video field")
		return
	}
	defer file.Close()

	path, err := h.saveUpload(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	defer os.Remove(path)

	result, err := h.analyzer.Analyze(r.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrVideoTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Video file too large")
		case errors.Is(err, capture.ErrVideoUnreadable):
			writeError(w, http.StatusUnprocessableEntity, "Video file unreadable")
		default:
			writeError(w, http.StatusInternalServerError, "Analysis failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// saveUpload spools the upload to a temp file keeping the original
// extension, which the video decoder uses to pick a demuxer.
func (h *VideosHandler) saveUpload(src io.Reader, name string) (string, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".mp4"
	}

	dst, err := os.CreateTemp("", "upload-"+uuid.New().String()+"-*"+ext)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
