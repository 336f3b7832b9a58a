package oauthmodel

import "github.com/jrsteele09/mc-auth/identity"

// TokenResponse represents the response from a successful token request.
type TokenResponse struct {
	// AccessToken is the opaque token used to access /api/v2/profile.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: 3600 seconds
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in"`

	// Scope indicates the access token's granted permissions.
	// Example: "profile"
	Scope string `json:"scope"`

	// State echoes the state of the authorization request, when one was sent.
	State *string `json:"state,omitempty"`

	// Data identifies the Minecraft account that consented.
	Data TokenData `json:"data"`
}

// TokenData is the account section of a TokenResponse.
type TokenData struct {
	// UUID is the Minecraft profile id without dashes.
	UUID string `json:"uuid"`

	// Profile is only present when the profile scope was granted.
	Profile *identity.Profile `json:"profile,omitempty"`
}
