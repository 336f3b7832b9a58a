package server

import (
	"mime"
	"net/http"

	"github.com/jrsteele09/mc-auth/apps"
	"github.com/jrsteele09/mc-auth/auth"
	"github.com/jrsteele09/mc-auth/grants"
	apierrors "github.com/jrsteele09/mc-auth/internal/errors"
	"github.com/jrsteele09/mc-auth/oauthmodel"
	"github.com/jrsteele09/mc-auth/scopes"
	"github.com/pkg/errors"
)

var supportedTokenContentTypes = []string{contentTypeJSONMedia, contentTypeForm}

type consentPage struct {
	AppName  string
	Account  *Session
	App      *apps.Application
	Grant    *grants.Grant
	Scopes   []string
	Implicit bool
}

// AuthorizeHandler validates an authorization request and renders the
// consent page for the pending grant.
func (s *Server) AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r.Context())
		params := oauthmodel.ParseAuthorizationParameters(r.URL.Query())

		if !isNumericID(params.ClientID) {
			s.writeError(w, r, apierrors.InvalidQueryArg("client_id"))
			return
		}
		if !params.HasValidRedirectOrigin() {
			s.writeError(w, r, apierrors.InvalidQueryArg("redirect_uri"))
			return
		}

		pending, err := s.grants.BeginAuthorization(r.Context(), auth.AuthorizationRequest{
			ClientID:     params.ClientID,
			RedirectURI:  params.RedirectURI,
			ResponseType: params.ResponseType,
			State:        params.State,
			Scopes:       scopes.Parse(params.Scope),
			UserID:       session.AccountID,
		})

		var scopeErr *scopes.InvalidScopeError
		switch {
		case errors.Is(err, auth.ErrUnsupportedResponseType):
			http.Redirect(w, r, auth.AuthorizationErrorRedirect(params.RedirectURI, params.ResponseType, oauthmodel.ErrorUnsupportedResponseType, "", params.State), http.StatusSeeOther)
		case errors.As(err, &scopeErr):
			http.Redirect(w, r, auth.AuthorizationErrorRedirect(params.RedirectURI, params.ResponseType, oauthmodel.ErrorInvalidScope, scopeErr.Scope, params.State), http.StatusSeeOther)
		case err != nil:
			// Unknown application or unverified redirect_uri: never redirect
			s.writeError(w, r, err)
		default:
			w.Header().Set("Cache-Control", "no-store")
			s.render(w, http.StatusOK, "authorize.html", consentPage{
				AppName:  s.config.GetAppName(),
				Account:  session,
				App:      pending.App,
				Grant:    pending.Grant,
				Scopes:   pending.Grant.Scopes,
				Implicit: pending.Grant.ResponseType == grants.ResponseTypeToken,
			})
		}
	}
}

// ConsentHandler records the decision submitted from the consent page and
// redirects back to the client.
func (s *Server) ConsentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r.Context())
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, apierrors.InvalidBodyParam("form").WithCause(err))
			return
		}

		grantID := r.PostForm.Get("authenticity_token")
		clientID := r.PostForm.Get("client_id")
		if !isNumericID(grantID) {
			s.writeError(w, r, apierrors.InvalidBodyParam("authenticity_token"))
			return
		}
		if !isNumericID(clientID) {
			s.writeError(w, r, apierrors.InvalidBodyParam("client_id"))
			return
		}

		outcome, err := s.grants.Decide(r.Context(), auth.DecisionRequest{
			GrantID:  grantID,
			ClientID: clientID,
			UserID:   session.AccountID,
			Agreed:   r.PostForm.Get("result") == "1",
		})
		if outcome != nil {
			// Also taken when token issuance failed: the outcome carries server_error
			http.Redirect(w, r, outcome.RedirectURL, http.StatusSeeOther)
			return
		}
		s.writeError(w, r, err)
	}
}

// TokenHandler exchanges an authorization code for an access token.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseTokenRequest(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		result, err := s.grants.ExchangeCode(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, oauthmodel.TokenResponse{
			AccessToken: result.AccessToken,
			TokenType:   result.TokenType,
			ExpiresIn:   result.ExpiresIn,
			Scope:       result.Scope,
			State:       result.State,
			Data: oauthmodel.TokenData{
				UUID:    result.UserID,
				Profile: result.Profile,
			},
		})
	}
}

// parseTokenRequest reads a JSON or form encoded token request. Client
// credentials missing from the body are taken from HTTP Basic auth.
func parseTokenRequest(w http.ResponseWriter, r *http.Request) (auth.ExchangeRequest, error) {
	var body oauthmodel.TokenRequest
	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case contentTypeJSONMedia:
		if err := decodeJSON(w, r, &body); err != nil {
			return auth.ExchangeRequest{}, err
		}
	case contentTypeForm:
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return auth.ExchangeRequest{}, apierrors.InvalidBodyParam("form").WithCause(err)
		}
		body = oauthmodel.TokenRequestFromForm(r.PostForm)
	default:
		return auth.ExchangeRequest{}, apierrors.UnsupportedContentType(contentType, supportedTokenContentTypes)
	}

	req := auth.ExchangeRequest{
		ClientID:     string(body.ClientID),
		ClientSecret: body.ClientSecret,
		Code:         body.Code,
		RedirectURI:  body.RedirectURI,
		GrantType:    body.GrantType,
	}
	if req.ClientID == "" && req.ClientSecret == "" {
		if id, secret, ok := r.BasicAuth(); ok {
			req.ClientID, req.ClientSecret = id, secret
		}
	}
	if !isNumericID(req.ClientID) {
		return req, auth.ErrInvalidClientCredentials
	}
	return req, nil
}
