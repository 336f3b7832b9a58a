package oauthmodel

import (
	"encoding/json"
	"net/url"
)

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /oauth2/token endpoint, either
// as JSON or form encoded.
type TokenRequest struct {
	// ClientID identifies the application making the request.
	// Required: Yes (in the body or via HTTP Basic auth)
	// Example: "42" or 42 in JSON
	ClientID FlexString `json:"client_id"`

	// ClientSecret is the application secret.
	// Required: Yes (in the body or via HTTP Basic auth)
	// Security: Never log or expose this value
	ClientSecret string `json:"client_secret"`

	// Code is the authorization code received from the authorization endpoint.
	// Required: Yes
	// Usage: Exchanged once, then becomes invalid
	Code string `json:"code"`

	// RedirectURI must equal the redirect_uri of the authorization request,
	// compared case-insensitively.
	// Required: Yes
	RedirectURI string `json:"redirect_uri"`

	// GrantType must be "authorization_code".
	// Required: Yes
	GrantType string `json:"grant_type"`
}

// TokenRequestFromForm reads a form encoded token request.
func TokenRequestFromForm(form url.Values) TokenRequest {
	return TokenRequest{
		ClientID:     FlexString(form.Get("client_id")),
		ClientSecret: form.Get("client_secret"),
		Code:         form.Get("code"),
		RedirectURI:  form.Get("redirect_uri"),
		GrantType:    form.Get("grant_type"),
	}
}

// FlexString decodes a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
