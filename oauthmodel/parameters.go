package oauthmodel

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/mc-auth/internal/utils"
)

// AuthorizationParameters holds parameters for the OAuth2 authorization request.
// These are received as query parameters at the /oauth2/authorize endpoint.
type AuthorizationParameters struct {
	// ClientID identifies the application requesting authorization.
	// Required: Yes
	// Example: "42" (application ids are numeric)
	ClientID string

	// ResponseType specifies what the authorization endpoint should return.
	// Required: Yes
	// Supported values: "code", "token" (implicit)
	ResponseType string

	// RedirectURI is where the authorization response will be sent.
	// Required: Yes
	// Example: "https://myapp.com/callback"
	// Validated against: apps.Application.RedirectURIs, ignoring the query string
	RedirectURI string

	// Scope specifies the permissions being requested.
	// Required: No
	// Example: "profile"
	// Separators: space, comma or plus
	Scope string

	// State is an opaque value used by the client to maintain state between request and callback.
	// Required: Recommended (CSRF protection)
	// Server stores it with the grant and echoes it back in every redirect
	State *string

	// LoginHint pre-fills the Minecraft username on the login page.
	// Query parameter: mcauth.username
	// Security: Only used for UI pre-population
	LoginHint string
}

// ParseAuthorizationParameters reads the authorization request from query.
// An empty state is treated as absent.
func ParseAuthorizationParameters(query url.Values) AuthorizationParameters {
	return AuthorizationParameters{
		ClientID:     strings.TrimSpace(query.Get("client_id")),
		ResponseType: query.Get("response_type"),
		RedirectURI:  query.Get("redirect_uri"),
		Scope:        query.Get("scope"),
		State:        utils.NilIfEmpty(query.Get("state")),
		LoginHint:    query.Get("mcauth.username"),
	}
}

// HasValidRedirectOrigin reports whether RedirectURI is absolute, so that it
// has an origin that errors could be sent back to.
func (p AuthorizationParameters) HasValidRedirectOrigin() bool {
	if p.RedirectURI == "" {
		return false
	}
	u, err := url.Parse(p.RedirectURI)
	return err == nil && u.Scheme != "" && u.Host != ""
}
