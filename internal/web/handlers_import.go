package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/idoblueprint/guestlist/internal/guestimport"
)

// PreviewResponse is the payload for the preview endpoint: the parsed file,
// the inferred column mappings, and the validation findings. Nothing is
// persisted when previewing.
type PreviewResponse struct {
	Preview    *guestimport.ImportPreview         `json:"preview"`
	Mappings   []guestimport.ColumnMapping        `json:"mappings"`
	Validation guestimport.ImportValidationResult `json:"validation"`
}

// handleImportTemplate downloads a blank CSV with the canonical column set,
// ready to fill in and import.
func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := guestimport.ExportCSV(nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="guest_import_template.csv"`)
	w.Write(data)
}

// handleImportPreview parses an uploaded file and reports headers, inferred
// mappings, and validation findings without touching the store.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	data, fileName, ok := s.readImportFile(w, r)
	if !ok {
		return
	}

	preview, mappings, validation, err := s.imports.Preview(fileName, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PreviewResponse{
		Preview:    preview,
		Mappings:   mappings,
		Validation: validation,
	})
}

// handleStartImport runs an import. By default the run is asynchronous and
// the response carries the import id; pass wait=true to block until the run
// finishes and receive the full result.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	coupleID, ok := s.coupleID(r)
	if !ok {
		s.badRequest(w, r, "malformed "+coupleIDHeader+" header")
		return
	}

	data, fileName, ok := s.readImportFile(w, r)
	if !ok {
		return
	}

	mode, ok := guestimport.ParseImportMode(r.FormValue("mode"))
	if !ok {
		s.badRequest(w, r, "mode must be add_only or sync")
		return
	}

	// Mappings are optional; when absent they are inferred from headers
	var mappings []guestimport.ColumnMapping
	if raw := r.FormValue("mappings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mappings); err != nil {
			s.badRequest(w, r, "invalid mappings format")
			return
		}
	}

	if r.FormValue("wait") == "true" {
		result, err := s.imports.Run(r.Context(), coupleID, fileName, data, mode, mappings)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	id := s.imports.Start(coupleID, fileName, data, mode, mappings)
	writeJSON(w, http.StatusAccepted, map[string]string{"importId": id})
}

// readImportFile pulls the uploaded file out of the multipart form, bounded
// by the configured size limit.
func (s *Server) readImportFile(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.badRequest(w, r, "file too large or invalid form")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, r, "no file provided")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err)
		return nil, "", false
	}
	return data, header.Filename, true
}

// handleImportProgress returns the current progress snapshot of a run.
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.imports.Progress(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// handleImportEvents streams progress updates via Server-Sent Events until
// the run finishes or the client disconnects.
func (s *Server) handleImportEvents(w http.ResponseWriter, r *http.Request) {
	progressCh, err := s.imports.SubscribeProgress(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.badRequest(w, r, "streaming not supported")
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				// Channel closed - run finished
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleImportResult blocks until the run completes and returns its outcome.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.imports.Result(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleImportHistory returns recent import results, newest first.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	history := s.imports.History()
	if history == nil {
		history = []guestimport.ImportResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imports": history,
		"total":   len(history),
	})
}
