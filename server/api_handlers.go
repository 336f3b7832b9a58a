package server

import (
	"net/http"

	"github.com/jrsteele09/mc-auth/auth"
	"github.com/jrsteele09/mc-auth/scopes"
)

// ProfileHandler returns the Minecraft profile of the account behind the
// bearer token. The token needs the profile scope.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grant := grantFrom(r.Context())
		if err := auth.RequireScope(grant, scopes.Profile); err != nil {
			s.writeError(w, r, err)
			return
		}
		profile, err := s.grants.Profile(r.Context(), grant)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}
