package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/mc-auth/grants"
	"github.com/jrsteele09/mc-auth/identity"
	"github.com/jrsteele09/mc-auth/metrics"
	"github.com/jrsteele09/mc-auth/oauthmodel"
	"github.com/jrsteele09/mc-auth/scopes"
	"github.com/jrsteele09/mc-auth/token"
	"github.com/pkg/errors"
)

// ExchangeRequest is a parsed POST /oauth2/token body.
type ExchangeRequest struct {
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
	GrantType    string
}

// TokenResult is a successful code exchange.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	Scope       string
	State       *string
	UserID      string
	// Profile is set when the grant includes the profile scope and the lookup
	// succeeded.
	Profile *identity.Profile
}

// ExchangeCode trades an authorization code for an access token. The code is
// consumed by a single conditional write, so a replayed, expired or foreign
// code all yield ErrInvalidCodeForExchange.
//
// If the grant includes the profile scope and the profile lookup fails, the
// committed token is still returned together with ErrProfileFetchFailed.
func (gs *GrantService) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenResult, error) {
	if err := gs.authenticateClient(ctx, req.ClientID, req.ClientSecret); err != nil {
		return nil, err
	}
	if !strings.EqualFold(req.GrantType, string(oauthmodel.AuthorizationCodeGrant)) {
		return nil, ErrInvalidGrantType
	}
	if !gs.tokens.CheckSyntax(token.Exchange, req.Code) {
		gs.metrics.RecordExchange(metrics.OutcomeInvalid)
		return nil, ErrInvalidCodeForExchange
	}

	now := gs.now()
	var grant *grants.Grant
	_, err := gs.issue(ctx, token.Access, func(tok string) (*string, error) {
		g, err := gs.repos.Grants.ConsumeExchangeToken(ctx, grants.ExchangeQuery{
			AppID:       req.ClientID,
			Code:        req.Code,
			RedirectURI: req.RedirectURI,
			IssuedAfter: now.Add(-gs.exchangeWindow),
			AccessToken: tok,
			IssuedAt:    now,
		})
		if err != nil || g == nil {
			return nil, err
		}
		grant = g
		return g.AccessToken, nil
	})
	if err != nil {
		gs.metrics.RecordTokenGenerationFailure(token.Access.String())
		gs.log.Error().Err(err).Str("app", req.ClientID).Msg("failed generating access token")
		return nil, errors.Wrap(ErrTokenGenerationFailed, err.Error())
	}
	if grant == nil {
		gs.metrics.RecordExchange(metrics.OutcomeInvalid)
		return nil, ErrInvalidCodeForExchange
	}
	if grant.AccessToken == nil {
		gs.metrics.RecordTokenGenerationFailure(token.Access.String())
		return nil, ErrTokenGenerationFailed
	}
	gs.metrics.RecordExchange(metrics.OutcomeSuccess)

	result := &TokenResult{
		AccessToken: *grant.AccessToken,
		TokenType:   oauthmodel.TokenTypeBearer,
		ExpiresIn:   int(gs.accessTokenTTL.Seconds()),
		Scope:       scopes.Join(grant.Scopes),
		State:       grant.State,
		UserID:      grant.UserID,
	}

	if scopes.Contains(grant.Scopes, scopes.Profile) {
		profile, err := gs.identity.ProfileByID(ctx, grant.UserID)
		if err != nil {
			gs.metrics.RecordProfileFetchFailure()
			gs.log.Error().Err(err).Str("grant", grant.ID).Str("uuid", grant.UserID).Msg("failed fetching minecraft profile")
			return result, errors.Wrap(ErrProfileFetchFailed, err.Error())
		}
		result.Profile = profile
	}
	return result, nil
}

func (gs *GrantService) authenticateClient(ctx context.Context, clientID, secret string) error {
	if clientID == "" || secret == "" {
		return ErrInvalidClientCredentials
	}
	app, err := gs.usableApp(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrUnknownApplication) {
			return ErrInvalidClientCredentials
		}
		return err
	}
	if !app.SecretMatches(secret) {
		return ErrInvalidClientCredentials
	}
	return nil
}
