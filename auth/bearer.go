package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/mc-auth/grants"
	"github.com/jrsteele09/mc-auth/identity"
	"github.com/jrsteele09/mc-auth/scopes"
	"github.com/jrsteele09/mc-auth/token"
	"github.com/pkg/errors"
)

// ExtractBearer returns the token of an "Authorization: Bearer <token>"
// header value.
func ExtractBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// ResolveAccessToken returns the granted, unexpired grant an access token was
// issued for.
func (gs *GrantService) ResolveAccessToken(ctx context.Context, accessToken string) (*grants.Grant, error) {
	if !gs.tokens.CheckSyntax(token.Access, accessToken) {
		return nil, ErrInvalidAccessToken
	}
	grant, err := gs.repos.Grants.GetByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, grants.ErrNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, errors.Wrap(err, "[ResolveAccessToken]")
	}
	if grant.Result != grants.Granted || grant.AccessTokenIssued == nil {
		return nil, ErrInvalidAccessToken
	}
	if !grant.AccessTokenIssued.After(gs.now().Add(-gs.accessTokenTTL)) {
		return nil, ErrInvalidAccessToken
	}
	return grant, nil
}

// RequireScope fails with ErrMissingScope naming the first absent scope.
func RequireScope(grant *grants.Grant, required ...string) error {
	for _, s := range required {
		if !scopes.Contains(grant.Scopes, s) {
			return errors.Wrap(ErrMissingScope, s)
		}
	}
	return nil
}

// Profile returns the Minecraft profile of the grant's account.
func (gs *GrantService) Profile(ctx context.Context, grant *grants.Grant) (*identity.Profile, error) {
	profile, err := gs.identity.ProfileByID(ctx, grant.UserID)
	if err != nil {
		gs.metrics.RecordProfileFetchFailure()
		gs.log.Error().Err(err).Str("uuid", grant.UserID).Msg("failed fetching minecraft profile")
		return nil, errors.Wrap(ErrProfileFetchFailed, err.Error())
	}
	return profile, nil
}
