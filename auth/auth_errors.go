package auth

import (
	"errors"

	"github.com/jrsteele09/mc-auth/scopes"
)

var (
	ErrUnknownApplication           = errors.New("unknown application")
	ErrInvalidRedirectURI           = errors.New("invalid redirect_uri for application")
	ErrUnsupportedResponseType      = errors.New("unsupported response_type")
	ErrInvalidScope                 = scopes.ErrInvalidScope
	ErrGrantNotFound                = errors.New("grant not found")
	ErrGrantExpiredOrAlreadyDecided = errors.New("grant already decided or expired")
	ErrInvalidCodeForExchange       = errors.New("invalid code for token exchange")
	ErrInvalidClientCredentials     = errors.New("client_id does not exist or does not match client_secret")
	ErrInvalidGrantType             = errors.New("invalid grant_type")
	ErrTokenGenerationFailed        = errors.New("token generation failed")
	ErrProfileFetchFailed           = errors.New("failed fetching minecraft profile")

	ErrInvalidAccessToken = errors.New("invalid or expired access token")
	ErrMissingScope       = errors.New("access token is missing a required scope")
	ErrInvalidCredentials = errors.New("invalid username or one-time password")
)
