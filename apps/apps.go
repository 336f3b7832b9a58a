package apps

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by a Registry for unknown application ids.
var ErrNotFound = errors.New("application not found")

// Application is a registered OAuth client.
type Application struct {
	ID           string    `json:"id"`
	Owner        string    `json:"owner"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Website      string    `json:"website"`
	Secret       string    `json:"-"`
	RedirectURIs []string  `json:"redirectURIs"`
	Deleted      bool      `json:"deleted"`
	Verified     bool      `json:"verified"`
	Created      time.Time `json:"created"`
}

// Registry resolves and mutates applications.
type Registry interface {
	Get(ctx context.Context, id string) (*Application, error)
	Create(ctx context.Context, app *Application) (*Application, error)
	ListByOwner(ctx context.Context, owner string) ([]*Application, error)
	SetRedirectURIs(ctx context.Context, id string, uris []string) error
	SetSecret(ctx context.Context, id, secret string) error
	SetDeleted(ctx context.Context, id string) error
}

// MatchRedirectURI reports whether uri matches one of the registered
// redirect URIs. The query string is ignored on both sides and the rest is
// compared case-insensitively, so clients may add their own query parameters.
func (a *Application) MatchRedirectURI(uri string) bool {
	want := stripQuery(uri)
	for _, registered := range a.RedirectURIs {
		if strings.EqualFold(stripQuery(registered), want) {
			return true
		}
	}
	return false
}

// SecretMatches compares secret to the current application secret in
// constant time.
func (a *Application) SecretMatches(secret string) bool {
	if a.Secret == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.Secret), []byte(secret)) == 1
}

// Usable reports whether the application can take part in new flows.
func (a *Application) Usable() bool {
	return a != nil && !a.Deleted
}

func stripQuery(uri string) string {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		return uri[:i]
	}
	return uri
}
