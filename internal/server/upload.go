package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/timeutil"
)

const maxUploadBytes = 512 << 20 // 512MB export zips exist

// handleUpload accepts an archive zip, analyzes it, and swaps it
// in as the current run. The previous analysis stays in place
// when the upload cannot be analyzed.
func (s *Server) handleUpload(
	w http.ResponseWriter, r *http.Request,
) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".zip") {
		writeError(w, http.StatusBadRequest, "file must be .zip")
		return
	}

	tmp, err := os.CreateTemp("", "gramview-upload-*.zip")
	if err != nil {
		log.Printf("upload: creating temp file: %v", err)
		writeError(w, http.StatusInternalServerError,
			"internal server error")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmp, file)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Printf("upload: saving %s: %v",
			filepath.Base(header.Filename), err)
		writeError(w, http.StatusInternalServerError,
			"failed to save upload")
		return
	}

	if err := s.LoadArchive(r.Context(), tmpPath); err != nil {
		if errors.Is(err, event.ErrInsufficientData) {
			writeUnavailable(w, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest,
			"could not analyze archive: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.stats())
}

// stats summarizes the server's current analysis state.
func (s *Server) stats() map[string]any {
	result, reason := s.current()
	if result == nil {
		return map[string]any{
			"loaded": false,
			"reason": reason,
		}
	}

	first, last := result.Stream.Span()
	return map[string]any{
		"loaded":   true,
		"events":   len(result.Stream),
		"sessions": len(result.Sessions),
		"themes":   len(result.Themes),
		"first":    timeutil.Format(first),
		"last":     timeutil.Format(last),
		"sources":  result.Sources,
	}
}

func (s *Server) handleStats(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.stats())
}
