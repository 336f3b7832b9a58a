package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/mc-auth/auth"
	apierrors "github.com/jrsteele09/mc-auth/internal/errors"
	"github.com/pkg/errors"
)

type loginPage struct {
	AppName  string
	Username string
	Return   string
	Error    string
}

// LoginPageHandler renders the OTP login form. A logged in account is sent
// straight on to the return path.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnTo := safeReturn(r.URL.Query().Get("return"))
		if _, err := s.sessions.Read(r); err == nil {
			http.Redirect(w, r, returnTo, http.StatusSeeOther)
			return
		}
		s.render(w, http.StatusOK, "login.html", loginPage{
			AppName:  s.config.GetAppName(),
			Username: r.URL.Query().Get("username"),
			Return:   returnTo,
		})
	}
}

// LoginSubmissionHandler authenticates a username with the one-time password
// shown in game and starts a session.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, apierrors.InvalidBodyParam("form").WithCause(err))
			return
		}
		username := strings.TrimSpace(r.PostForm.Get("username"))
		code := r.PostForm.Get("otp")
		keepLogin := r.PostForm.Get("keepLogin") == "on"
		returnTo := safeReturn(r.PostForm.Get("return"))

		account, err := s.grants.Login(r.Context(), username, code)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.render(w, http.StatusUnauthorized, "login.html", loginPage{
				AppName:  s.config.GetAppName(),
				Username: username,
				Return:   returnTo,
				Error:    "Invalid username or one-time password",
			})
			return
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.sessions.Issue(w, account, keepLogin); err != nil {
			s.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Clear(w)
		http.Redirect(w, r, safeReturn(r.URL.Query().Get("return")), http.StatusSeeOther)
	}
}
