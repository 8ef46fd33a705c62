package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/phenocheck/internal/core"
	"github.com/JonMunkholm/phenocheck/internal/logging"
	"github.com/JonMunkholm/phenocheck/internal/store"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files.
const multipartMemory = 32 << 20

// runResponse is the JSON shape of a run.
type runResponse struct {
	store.Run
	Passed bool `json:"passed"`
}

func newRunResponse(run store.Run) runResponse {
	return runResponse{Run: run, Passed: run.Passed()}
}

// handleHealth reports liveness and run slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"runs":   s.service.Limiter().Status(),
	})
}

// handleValidate validates an uploaded data file against an uploaded
// dictionary. Validation findings are returned with 200; only failures to
// run at all are errors.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	// Room for both files plus form overhead; per-file limits are enforced by the service.
	maxBody := 2*s.cfg.Validation.MaxFileSize + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: %w: request exceeds %d bytes", core.ErrInvalidInput, core.ErrFileTooLarge, maxBody))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: parse form: %w", core.ErrInvalidInput, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := core.Request{Format: r.FormValue("format")}

	file, fileName, err := formFile(r, "file")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
		req.Content, req.FileName = file, fileName
	}

	dict, dictName, err := formFile(r, "dictionary")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if dict != nil {
		defer dict.Close()
		req.Dictionary, req.DictionaryName = dict, dictName
	}

	ctx := withRequestMetadata(r.Context(), r)
	run, err := s.service.ValidateFile(ctx, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(ctx).Debug("run stored", "run_id", run.ID, "passed", run.Passed())
	writeJSON(w, r, http.StatusOK, newRunResponse(*run))
}

// formFile returns the named upload, or a nil reader when the field is absent.
func formFile(r *http.Request, field string) (io.ReadCloser, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", core.ErrInvalidInput, field, err)
	}
	return file, header.Filename, nil
}

// handleListRuns returns recent runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.Runs(r.Context(), parseIntParam(r, "limit", store.DefaultListLimit))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, newRunResponse(run))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"runs": resp})
}

// handleGetRun returns one run as JSON.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, newRunResponse(run))
}

// handleRunPage renders one run as an HTML report.
func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, runReport(run))
}

// handleIndex renders the recent runs page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.Runs(r.Context(), store.DefaultListLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, runList(runs))
}

// loadRun resolves the {runID} URL parameter, writing the error response
// itself when the run cannot be loaded.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (store.Run, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondErrorStatus(w, r, fmt.Errorf("invalid run id: %w", store.ErrRunNotFound), http.StatusNotFound)
		return store.Run{}, false
	}

	run, err := s.service.Run(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return store.Run{}, false
	}
	return run, true
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
