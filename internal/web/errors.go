package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err) or respondErrorStatus with an explicit code
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. Technical error + context is logged with the request ID for correlation
//  5. User message is rendered as JSON for API clients, HTML otherwise

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/phenocheck/internal/core"
	"github.com/JonMunkholm/phenocheck/internal/logging"
	"github.com/JonMunkholm/phenocheck/internal/store"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Action    string `json:"action,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to a status and a user-friendly response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorStatus(w, r, err, statusFor(err))
}

// respondErrorStatus logs the technical error server-side and writes the
// user message in the format the client asked for.
func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		respondErrorJSON(w, r, userMsg, statusCode)
		return
	}
	respondErrorHTML(w, r, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	writeJSON(w, r, statusCode, ErrorResponse{
		Error:     msg.Message,
		Message:   msg.Message,
		Action:    msg.Action,
		Code:      msg.Code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// respondErrorHTML renders the error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	render(w, r, statusCode, errorPage(msg))
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
