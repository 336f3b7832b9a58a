package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	apierrors "github.com/jrsteele09/mc-auth/internal/errors"
)

const (
	contentTypeHTML      = "text/html; charset=utf-8"
	contentTypeJSON      = "application/json; charset=utf-8"
	contentTypeJSONMedia = "application/json"
	contentTypeForm      = "application/x-www-form-urlencoded"

	maxBodyBytes = 64 << 10
)

type errorBody struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the client facing form of err: JSON on API routes
// and the error page otherwise.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.From(err)
	ev := s.log.Debug()
	if apiErr.Log {
		ev = s.log.Error()
	}
	ev.Err(err).
		Str("request_id", requestID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", apiErr.Status).
		Msg(apiErr.Message)

	w.Header().Set("Cache-Control", "no-store")
	if wantsJSON(r) {
		writeJSON(w, apiErr.Status, errorBody{Error: apiErr.Status, Message: apiErr.Message})
		return
	}
	s.render(w, apiErr.Status, "error.html", apiErr)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("failed rendering template")
	}
}

// decodeJSON reads a size limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apierrors.InvalidJSONBody
		}
		return apierrors.InvalidJSONBody.WithCause(err)
	}
	return nil
}

func isNumericID(s string) bool {
	if len(s) == 0 || len(s) > 18 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HealthHandler reports 200 while the database answers.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.log.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.sessions.Read(r)
		s.render(w, http.StatusOK, "index.html", indexPage{
			AppName: s.config.GetAppName(),
			Session: session,
		})
	}
}

type indexPage struct {
	AppName string
	Session *Session
}
