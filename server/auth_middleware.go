package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/mc-auth/auth"
	"github.com/jrsteele09/mc-auth/grants"
	apierrors "github.com/jrsteele09/mc-auth/internal/errors"
)

// RequireSession is middleware for routes that act on behalf of a logged in
// account. HTML routes redirect to the login page, API routes answer 401.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.sessions.Read(r)
			if err != nil {
				if wantsJSON(r) {
					s.writeError(w, r, apierrors.Unauthorized.WithCause(err))
					return
				}
				http.Redirect(w, r, loginRedirect(r), http.StatusSeeOther)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireBearer is middleware for API routes that expect an access token in
// the Authorization header.
func (s *Server) RequireBearer() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			accessToken, ok := auth.ExtractBearer(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				s.writeError(w, r, apierrors.MissingBearer)
				return
			}
			grant, err := s.grants.ResolveAccessToken(r.Context(), accessToken)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				s.writeError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyGrant, grant)
			next(w, r.WithContext(ctx))
		}
	}
}

func sessionFrom(ctx context.Context) *Session {
	session, _ := ctx.Value(ContextKeySession).(*Session)
	return session
}

func grantFrom(ctx context.Context) *grants.Grant {
	grant, _ := ctx.Value(ContextKeyGrant).(*grants.Grant)
	return grant
}
