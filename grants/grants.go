package grants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("grant not found")
	// ErrTokenCollision is returned when a generated token violates the
	// store's uniqueness constraint. Callers regenerate and retry.
	ErrTokenCollision = errors.New("token already in use")
)

// Result is the consent state of a grant. Storage keeps it as a nullable
// column where NULL means Pending.
type Result int

const (
	Pending Result = iota
	Granted
	Denied
	Revoked
)

func (r Result) String() string {
	switch r {
	case Pending:
		return "PENDING"
	case Granted:
		return "GRANTED"
	case Denied:
		return "DENIED"
	case Revoked:
		return "REVOKED"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Nullable converts r to its storage form. Pending maps to nil.
func (r Result) Nullable() *string {
	if r == Pending {
		return nil
	}
	s := r.String()
	return &s
}

// ResultFromNullable is the inverse of Nullable.
func ResultFromNullable(s *string) (Result, error) {
	if s == nil {
		return Pending, nil
	}
	switch strings.ToUpper(*s) {
	case "GRANTED":
		return Granted, nil
	case "DENIED":
		return Denied, nil
	case "REVOKED":
		return Revoked, nil
	default:
		return Pending, fmt.Errorf("unknown grant result %q", *s)
	}
}

// ResponseType selects between the authorization code and implicit flows.
type ResponseType string

const (
	ResponseTypeCode  ResponseType = "code"
	ResponseTypeToken ResponseType = "token"
)

// ParseResponseType is case-insensitive.
func ParseResponseType(s string) (ResponseType, bool) {
	switch ResponseType(strings.ToLower(strings.TrimSpace(s))) {
	case ResponseTypeCode:
		return ResponseTypeCode, true
	case ResponseTypeToken:
		return ResponseTypeToken, true
	}
	return "", false
}

// Grant records one authorization request, its consent decision and its
// token exchange.
type Grant struct {
	ID                string
	AppID             string
	UserID            string
	RedirectURI       string
	ResponseType      ResponseType
	Scopes            []string
	State             *string
	Result            Result
	AccessToken       *string
	AccessTokenIssued *time.Time
	ExchangeToken     *string
	Issued            time.Time
}

// Exchanged reports whether an access token has been issued.
func (g *Grant) Exchanged() bool {
	return g.AccessToken != nil
}

// DecidableAt reports whether a consent decision is still possible at now.
func (g *Grant) DecidableAt(now time.Time, window time.Duration) bool {
	return g.Result == Pending && g.Issued.After(now.Add(-window))
}

// NewGrant holds the fields supplied when creating a grant.
type NewGrant struct {
	AppID        string
	UserID       string
	RedirectURI  string
	ResponseType ResponseType
	Scopes       []string
	State        *string
	Issued       time.Time
}

// ExchangeQuery identifies the grant an authorization code belongs to.
// IssuedAfter bounds the exchange window.
type ExchangeQuery struct {
	AppID       string
	Code        string
	RedirectURI string
	IssuedAfter time.Time
	AccessToken string
	IssuedAt    time.Time
}

// Store persists grants. The *IfUnset and Consume operations must each be a
// single conditional write so that concurrent callers across processes see
// exactly one winner.
type Store interface {
	Create(ctx context.Context, g NewGrant) (*Grant, error)
	Get(ctx context.Context, id string) (*Grant, error)
	// SetResultIfUnset sets the result only while it is still pending and the
	// grant was issued after issuedAfter. It reports whether this call did it.
	SetResultIfUnset(ctx context.Context, id string, result Result, issuedAfter time.Time) (bool, error)
	// SetExchangeTokenIfUnset returns nil when an exchange token already exists
	// or the grant is missing.
	SetExchangeTokenIfUnset(ctx context.Context, id, token string) (*string, error)
	// SetAccessTokenIfUnset returns nil when an access token already exists or
	// the grant is missing.
	SetAccessTokenIfUnset(ctx context.Context, id, token string, issuedAt time.Time) (*string, error)
	// ConsumeExchangeToken sets the access token on the granted grant matching
	// q whose access token is still unset, returning nil when none matches.
	ConsumeExchangeToken(ctx context.Context, q ExchangeQuery) (*Grant, error)
	GetByAccessToken(ctx context.Context, token string) (*Grant, error)
	// Revoke returns false when the grant is missing or already revoked.
	Revoke(ctx context.Context, id string) (bool, error)
	// DeleteIssuedBefore removes grants issued before cutoff whose access
	// token, if any, was issued before tokenCutoff.
	DeleteIssuedBefore(ctx context.Context, cutoff, tokenCutoff time.Time) (int64, error)
}
