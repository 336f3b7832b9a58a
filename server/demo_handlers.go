package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	apierrors "github.com/jrsteele09/mc-auth/internal/errors"
	"github.com/jrsteele09/mc-auth/scopes"
	"github.com/jrsteele09/mc-auth/server/authflowrepo"
	"golang.org/x/oauth2"
)

const demoFlowTTL = 10 * time.Minute

func newDemoConfig(baseURL, clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   baseURL + RouteOAuth2Authorize,
			TokenURL:  baseURL + RouteOAuth2Token,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: baseURL + RouteDemoLogin,
		Scopes:      []string{scopes.Profile},
	}
}

// DemoLoginHandler is a relying party living on this server. Without a code
// it starts the code flow; on the way back it exchanges the code and shows
// what a client receives.
func (s *Server) DemoLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if errCode := query.Get("error"); errCode != "" {
			s.writeError(w, r, apierrors.AuthorizationFailed(errCode, query.Get("error_description")))
			return
		}

		code := query.Get("code")
		if code == "" {
			now := s.nowTime()
			s.demoFlows.DeleteCreatedBefore(now.Add(-demoFlowTTL))
			state := uuid.NewString()
			if err := s.demoFlows.Upsert(state, &authflowrepo.AuthFlowState{ReturnURL: RouteDemoLogin, CreatedAt: now}); err != nil {
				s.writeError(w, r, err)
				return
			}
			http.Redirect(w, r, s.demo.AuthCodeURL(state), http.StatusFound)
			return
		}

		flow, err := s.demoFlows.Take(query.Get("state"))
		if err != nil || flow.CreatedAt.Before(s.nowTime().Add(-demoFlowTTL)) {
			s.writeError(w, r, apierrors.InvalidQueryArg("state"))
			return
		}

		tok, err := s.demo.Exchange(r.Context(), code)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token_type": tok.TokenType,
			"expiry":     tok.Expiry,
			"scope":      tok.Extra("scope"),
			"data":       tok.Extra("data"),
		})
	}
}
