package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/mc-auth/apps"
	"github.com/jrsteele09/mc-auth/auth"
	"github.com/jrsteele09/mc-auth/otp"
	"github.com/jrsteele09/mc-auth/scopes"
	"github.com/pkg/errors"
)

// APIError is an error that is safe to show to the client. Log marks errors
// that point at a server fault.
type APIError struct {
	Status  int
	Message string
	Log     bool

	cause error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of the template carrying err for logging.
func (e *APIError) WithCause(err error) *APIError {
	c := *e
	c.cause = err
	return &c
}

func template(status int, message string, log bool) *APIError {
	return &APIError{Status: status, Message: message, Log: log}
}

// 4xx
var (
	NotFound            = template(http.StatusNotFound, "The requested page does not exist", false)
	Unauthorized        = template(http.StatusUnauthorized, "Unauthorized", false)
	Forbidden           = template(http.StatusForbidden, "Forbidden", false)
	MethodNotAllowed    = template(http.StatusMethodNotAllowed, "Method Not Allowed (check Allow-Header)", false)
	UnknownApplication  = template(http.StatusNotFound, "Unknown application", false)
	InvalidJSONBody     = template(http.StatusBadRequest, "Invalid JSON body", false)
	InvalidClient       = template(http.StatusBadRequest, "client_id does not exist or does not match client_secret", false)
	InvalidRedirectURI  = template(http.StatusBadRequest, "Invalid redirect_uri - Please contact the administrator of the page that sent you here", false)
	InvalidGrantType    = template(http.StatusBadRequest, "Invalid grant_type", false)
	InvalidCode         = template(http.StatusBadRequest, "Invalid code! expired? Wrong redirect_uri?", false)
	GrantNotFound       = template(http.StatusNotFound, "Unknown or foreign grant", false)
	GrantNotDecidable   = template(http.StatusBadRequest, "Grant already fulfilled or expired", false)
	MissingBearer       = template(http.StatusUnauthorized, "Missing or invalid access_token in Authorization header (Bearer)", false)
	InvalidAccessToken  = template(http.StatusUnauthorized, "Invalid or expired access_token", false)
	MissingScope        = template(http.StatusForbidden, "The access_token has not been granted the required scope", false)
	InvalidCredentials  = template(http.StatusUnauthorized, "Invalid username or one-time password", false)
	InvalidOTP          = template(http.StatusBadRequest, "Invalid or expired one-time password", false)
	InvalidScope        = template(http.StatusBadRequest, "Invalid value for query argument scope", false)
	UnsupportedResponse = template(http.StatusBadRequest, "Invalid value for query argument response_type", false)
)

// 5xx
var (
	InternalServerError   = template(http.StatusInternalServerError, "An unknown server error occurred", true)
	NoDatabase            = template(http.StatusInternalServerError, "No database connection", true)
	GeneratingAccessToken = template(http.StatusInternalServerError, "Failed generating access_token", true)
	FetchingProfile       = template(http.StatusInternalServerError, "Failed fetching minecraft profile", true)
)

func InvalidQueryArg(name string) *APIError {
	return template(http.StatusBadRequest, "Invalid value for query argument "+name, false)
}

func InvalidBodyParam(name string) *APIError {
	return template(http.StatusBadRequest, "Invalid body parameter: "+name, false)
}

// AuthorizationFailed reports an error code returned to a redirect URI.
func AuthorizationFailed(code, description string) *APIError {
	msg := "Authorization failed: " + code
	if description != "" {
		msg += " - " + description
	}
	return template(http.StatusBadRequest, msg, false)
}

func UnsupportedContentType(given string, supported []string) *APIError {
	return template(http.StatusBadRequest,
		fmt.Sprintf("Provided Content-Type '%s' must be one of the following: %s", given, strings.Join(supported, ", ")),
		false)
}

var domainErrors = []struct {
	target error
	api    *APIError
}{
	{auth.ErrUnknownApplication, UnknownApplication},
	{auth.ErrInvalidRedirectURI, InvalidRedirectURI},
	{auth.ErrUnsupportedResponseType, UnsupportedResponse},
	{scopes.ErrInvalidScope, InvalidScope},
	{auth.ErrGrantNotFound, GrantNotFound},
	{auth.ErrGrantExpiredOrAlreadyDecided, GrantNotDecidable},
	{auth.ErrInvalidCodeForExchange, InvalidCode},
	{auth.ErrInvalidClientCredentials, InvalidClient},
	{auth.ErrInvalidGrantType, InvalidGrantType},
	{auth.ErrTokenGenerationFailed, GeneratingAccessToken},
	{auth.ErrProfileFetchFailed, FetchingProfile},
	{auth.ErrInvalidAccessToken, InvalidAccessToken},
	{auth.ErrMissingScope, MissingScope},
	{auth.ErrInvalidCredentials, InvalidCredentials},
	{otp.ErrInvalidOTP, InvalidOTP},
	{apps.ErrNotFound, UnknownApplication},
	{apps.ErrNotOwner, UnknownApplication},
	{apps.ErrInvalidName, InvalidBodyParam("name")},
	{apps.ErrInvalidRedirectURI, InvalidBodyParam("redirect_uris")},
}

// From maps err to the APIError the client should see. Errors that are not
// part of the domain taxonomy become InternalServerError.
func From(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.target) {
			return d.api.WithCause(err)
		}
	}
	return InternalServerError.WithCause(err)
}
