package server

import (
	"net/http"

	"github.com/jrsteele09/mc-auth/apps"
)

// appWithSecret is only returned to the owner, on creation and rotation.
type appWithSecret struct {
	*apps.Application
	Secret string `json:"secret"`
}

func (s *Server) ListAppsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.apps.List(r.Context(), sessionFrom(r.Context()).AccountID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) CreateAppHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apps.NewApplication
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		app, err := s.apps.Create(r.Context(), sessionFrom(r.Context()).AccountID, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.log.Info().Str("app", app.ID).Str("owner", app.Owner).Msg("application created")
		writeJSON(w, http.StatusCreated, appWithSecret{Application: app, Secret: app.Secret})
	}
}

func (s *Server) UpdateRedirectURIsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RedirectURIs []string `json:"redirect_uris"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		err := s.apps.UpdateRedirectURIs(r.Context(), sessionFrom(r.Context()).AccountID, r.PathValue("id"), req.RedirectURIs)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RegenerateSecretHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID := r.PathValue("id")
		secret, err := s.apps.RegenerateSecret(r.Context(), sessionFrom(r.Context()).AccountID, appID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.log.Info().Str("app", appID).Msg("application secret rotated")
		writeJSON(w, http.StatusOK, map[string]string{"secret": secret})
	}
}

// DeleteAppHandler needs a fresh one-time password from the owner.
func (s *Server) DeleteAppHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OTP string `json:"otp"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		appID := r.PathValue("id")
		if err := s.apps.Delete(r.Context(), sessionFrom(r.Context()).AccountID, appID, req.OTP); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.log.Info().Str("app", appID).Msg("application deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}
