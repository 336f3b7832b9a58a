package oauthmodel

// ResponseModeType denotes how the authorization response parameters are returned to the client.
type ResponseModeType string

const (
	// QueryResponseMode returns parameters in the URL query string.
	// Used in: Authorization Code Flow, and for errors of that flow
	// Example: https://client.example.com/callback?code=ABC123&state=xyz
	QueryResponseMode ResponseModeType = "query"

	// FragmentResponseMode returns parameters in the URL fragment (after #).
	// Used in: Implicit Flow (response_type=token), including its errors
	// Example: https://client.example.com/callback#access_token=ABC123&state=xyz
	// Security: Fragment not sent to the client's server, only readable by the page
	FragmentResponseMode ResponseModeType = "fragment"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for an access token.
	// Token request includes: code, client_id, client_secret, redirect_uri
	// Returns: access_token and the Minecraft profile when the profile scope was granted
	AuthorizationCodeGrant GrantType = "authorization_code"
)

// TokenTypeBearer is the only token type issued.
// Usage: "Authorization: Bearer <access_token>"
const TokenTypeBearer = "Bearer"

// ErrorCode is the value of the "error" parameter sent back to a redirect URI.
type ErrorCode string

const (
	// ErrorAccessDenied is sent when the user denies the consent request.
	// Always paired with error_description=resource_owner_denied_request
	ErrorAccessDenied ErrorCode = "access_denied"

	// ErrorInvalidScope is sent when a requested scope is not whitelisted.
	// error_description names the offending scope
	ErrorInvalidScope ErrorCode = "invalid_scope"

	// ErrorUnsupportedResponseType is sent for any response_type other than code or token.
	ErrorUnsupportedResponseType ErrorCode = "unsupported_response_type"

	// ErrorServerError is sent when the user consented but no token could be issued.
	ErrorServerError ErrorCode = "server_error"
)

// DescriptionDeniedByOwner accompanies ErrorAccessDenied.
const DescriptionDeniedByOwner = "resource_owner_denied_request"
