package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/jrsteele09/mc-auth/accounts"
	"github.com/jrsteele09/mc-auth/apps"
	"github.com/jrsteele09/mc-auth/grants"
	"github.com/jrsteele09/mc-auth/identity"
	"github.com/jrsteele09/mc-auth/internal/config"
	"github.com/jrsteele09/mc-auth/metrics"
	"github.com/jrsteele09/mc-auth/oauthmodel"
	"github.com/jrsteele09/mc-auth/otp"
	"github.com/jrsteele09/mc-auth/scopes"
	"github.com/jrsteele09/mc-auth/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultDecisionWindow = 24 * time.Hour
	defaultExchangeWindow = 5 * time.Minute
	defaultAccessTokenTTL = time.Hour
	defaultRetention      = 24 * time.Hour
)

// TokenGenerator creates and syntactically checks tokens.
type TokenGenerator interface {
	Generate(kind token.Kind) (string, error)
	CheckSyntax(kind token.Kind, s string) bool
}

// Repos holds all repository dependencies for the GrantService
type Repos struct {
	Apps     apps.Registry
	Grants   grants.Store
	OTPs     otp.Store
	Accounts accounts.Repo
}

// GrantService runs the grant lifecycle: authorization requests, consent,
// code exchange and bearer token resolution. It holds no locks; every
// exactly-once guarantee comes from a conditional write in the store.
type GrantService struct {
	repos    Repos
	tokens   TokenGenerator
	identity identity.Lookup
	scopes   *scopes.Validator
	otps     *otp.Verifier
	metrics  metrics.Recorder
	log      zerolog.Logger
	nowTime  func() time.Time

	decisionWindow time.Duration
	exchangeWindow time.Duration
	accessTokenTTL time.Duration
	retention      time.Duration
}

// GrantServiceOption defines a function type to modify the GrantService instance.
type GrantServiceOption func(*GrantService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GrantServiceOption {
	return func(gs *GrantService) {
		gs.nowTime = nowFunc
	}
}

func WithLogger(l zerolog.Logger) GrantServiceOption {
	return func(gs *GrantService) {
		gs.log = l
	}
}

func WithMetrics(m metrics.Recorder) GrantServiceOption {
	return func(gs *GrantService) {
		gs.metrics = m
	}
}

// WithScopeValidator overrides the default {"profile"} whitelist.
func WithScopeValidator(v *scopes.Validator) GrantServiceOption {
	return func(gs *GrantService) {
		gs.scopes = v
	}
}

// WithOAuthConfig takes the timing windows from configuration.
func WithOAuthConfig(c config.OAuthConfig) GrantServiceOption {
	return func(gs *GrantService) {
		gs.decisionWindow = c.GetDecisionWindow()
		gs.exchangeWindow = c.GetExchangeWindow()
		gs.accessTokenTTL = c.GetAccessTokenExpiry()
		gs.retention = c.GetRetention()
	}
}

// NewGrantService initializes a new GrantService with required dependencies.
func NewGrantService(
	repos Repos,
	tokens TokenGenerator,
	lookup identity.Lookup,
	options ...GrantServiceOption,
) (*GrantService, error) {
	if repos.Apps == nil {
		return nil, errors.New("[NewGrantService] Apps registry is required")
	}
	if repos.Grants == nil {
		return nil, errors.New("[NewGrantService] Grants store is required")
	}
	if repos.OTPs == nil {
		return nil, errors.New("[NewGrantService] OTPs store is required")
	}
	if repos.Accounts == nil {
		return nil, errors.New("[NewGrantService] Accounts repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewGrantService] token generator is required")
	}
	if lookup == nil {
		return nil, errors.New("[NewGrantService] identity lookup is required")
	}

	gs := &GrantService{
		repos:          repos,
		tokens:         tokens,
		identity:       lookup,
		scopes:         scopes.NewValidator(),
		metrics:        metrics.NewNoop(),
		log:            log.Logger,
		nowTime:        time.Now,
		decisionWindow: defaultDecisionWindow,
		exchangeWindow: defaultExchangeWindow,
		accessTokenTTL: defaultAccessTokenTTL,
		retention:      defaultRetention,
	}

	for _, opt := range options {
		opt(gs)
	}

	gs.otps = otp.NewVerifier(repos.OTPs, otp.WithNowTime(gs.now))
	return gs, nil
}

func (gs *GrantService) now() time.Time {
	return gs.nowTime().UTC()
}

// AuthorizationRequest is a parsed GET /oauth2/authorize request made by an
// authenticated user.
type AuthorizationRequest struct {
	ClientID     string
	RedirectURI  string
	ResponseType string
	State        *string
	Scopes       []string
	UserID       string
}

// PendingAuthorization is a created grant awaiting the user's decision.
type PendingAuthorization struct {
	Grant *grants.Grant
	App   *apps.Application
}

// BeginAuthorization validates an authorization request and persists a
// pending grant. Checks run in order: application, redirect URI, response
// type, scopes. Only ErrUnsupportedResponseType and ErrInvalidScope leave the
// redirect URI trusted.
func (gs *GrantService) BeginAuthorization(ctx context.Context, req AuthorizationRequest) (*PendingAuthorization, error) {
	app, err := gs.usableApp(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if req.RedirectURI == "" || !app.MatchRedirectURI(req.RedirectURI) {
		return nil, ErrInvalidRedirectURI
	}
	responseType, ok := grants.ParseResponseType(req.ResponseType)
	if !ok {
		return nil, ErrUnsupportedResponseType
	}
	canonical, err := gs.scopes.Validate(req.Scopes)
	if err != nil {
		return nil, err
	}

	grant, err := gs.repos.Grants.Create(ctx, grants.NewGrant{
		AppID:        app.ID,
		UserID:       req.UserID,
		RedirectURI:  req.RedirectURI,
		ResponseType: responseType,
		Scopes:       canonical,
		State:        req.State,
		Issued:       gs.now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[BeginAuthorization] creating grant")
	}
	gs.metrics.RecordGrantCreated(string(responseType))
	return &PendingAuthorization{Grant: grant, App: app}, nil
}

// DecisionRequest is the consent form submission.
type DecisionRequest struct {
	GrantID  string
	ClientID string
	UserID   string
	Agreed   bool
}

// DecisionOutcome tells the web layer where to send the user agent.
type DecisionOutcome struct {
	Result      grants.Result
	RedirectURL string
}

// Decide records the user's consent exactly once and builds the redirect
// back to the client. When token issuance fails after the result was stored,
// both a server_error outcome and ErrTokenGenerationFailed are returned.
func (gs *GrantService) Decide(ctx context.Context, req DecisionRequest) (*DecisionOutcome, error) {
	grant, err := gs.repos.Grants.Get(ctx, req.GrantID)
	if err != nil {
		if errors.Is(err, grants.ErrNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, errors.Wrap(err, "[Decide] loading grant")
	}
	if grant.UserID != req.UserID || (req.ClientID != "" && req.ClientID != grant.AppID) {
		return nil, ErrGrantNotFound
	}

	now := gs.now()
	if !grant.DecidableAt(now, gs.decisionWindow) {
		gs.metrics.RecordDecision(metrics.OutcomeRejected)
		return nil, ErrGrantExpiredOrAlreadyDecided
	}
	if _, err := gs.usableApp(ctx, grant.AppID); err != nil {
		return nil, err
	}

	result := grants.Denied
	if req.Agreed {
		result = grants.Granted
	}
	won, err := gs.repos.Grants.SetResultIfUnset(ctx, grant.ID, result, now.Add(-gs.decisionWindow))
	if err != nil {
		return nil, errors.Wrap(err, "[Decide] setting result")
	}
	if !won {
		gs.metrics.RecordDecision(metrics.OutcomeRejected)
		return nil, ErrGrantExpiredOrAlreadyDecided
	}
	grant.Result = result

	if result == grants.Denied {
		gs.metrics.RecordDecision(metrics.OutcomeDenied)
		return &DecisionOutcome{
			Result: result,
			RedirectURL: errorRedirect(grant.RedirectURI, grant.ResponseType,
				p("error", string(oauthmodel.ErrorAccessDenied)),
				p("error_description", oauthmodel.DescriptionDeniedByOwner),
				param{"state", grant.State}),
		}, nil
	}
	gs.metrics.RecordDecision(metrics.OutcomeGranted)

	switch grant.ResponseType {
	case grants.ResponseTypeCode:
		code, err := gs.issue(ctx, token.Exchange, func(tok string) (*string, error) {
			return gs.repos.Grants.SetExchangeTokenIfUnset(ctx, grant.ID, tok)
		})
		if err != nil || code == nil {
			return gs.serverError(grant, err), ErrTokenGenerationFailed
		}
		return &DecisionOutcome{
			Result: result,
			RedirectURL: appendQuery(grant.RedirectURI,
				p("code", *code),
				p("expires_in", seconds(gs.exchangeWindow)),
				param{"state", grant.State}),
		}, nil

	case grants.ResponseTypeToken:
		access, err := gs.issue(ctx, token.Access, func(tok string) (*string, error) {
			return gs.repos.Grants.SetAccessTokenIfUnset(ctx, grant.ID, tok, now)
		})
		if err != nil || access == nil {
			return gs.serverError(grant, err), ErrTokenGenerationFailed
		}
		return &DecisionOutcome{
			Result: result,
			RedirectURL: appendFragment(grant.RedirectURI,
				p("access_token", *access),
				p("token_type", oauthmodel.TokenTypeBearer),
				p("expires_in", seconds(gs.accessTokenTTL)),
				p("scope", scopes.Join(grant.Scopes)),
				param{"state", grant.State}),
		}, nil
	}

	return gs.serverError(grant, errors.Errorf("unhandled response_type %q", grant.ResponseType)), ErrTokenGenerationFailed
}

// Revoke marks a grant REVOKED from any state. Revoking twice is a no-op.
func (gs *GrantService) Revoke(ctx context.Context, grantID string) error {
	changed, err := gs.repos.Grants.Revoke(ctx, grantID)
	if err != nil {
		return errors.Wrap(err, "[Revoke]")
	}
	if changed {
		gs.log.Info().Str("grant", grantID).Msg("grant revoked")
		return nil
	}
	if _, err := gs.repos.Grants.Get(ctx, grantID); err != nil {
		if errors.Is(err, grants.ErrNotFound) {
			return ErrGrantNotFound
		}
		return errors.Wrap(err, "[Revoke] loading grant")
	}
	return nil
}

// ReapResult counts rows removed by Reap.
type ReapResult struct {
	Grants int64
	OTPs   int64
}

// Reap deletes grants and OTPs past the retention period. Grants whose access
// token is still valid are kept. Correctness never depends on it having run.
func (gs *GrantService) Reap(ctx context.Context) (ReapResult, error) {
	now := gs.now()
	cutoff := now.Add(-gs.retention)

	var res ReapResult
	var err error
	if res.Grants, err = gs.repos.Grants.DeleteIssuedBefore(ctx, cutoff, now.Add(-gs.accessTokenTTL)); err != nil {
		return res, errors.Wrap(err, "[Reap] grants")
	}
	if res.OTPs, err = gs.otps.Purge(ctx, cutoff); err != nil {
		return res, errors.Wrap(err, "[Reap] otps")
	}
	gs.metrics.RecordReaped("grants", res.Grants)
	gs.metrics.RecordReaped("otps", res.OTPs)
	return res, nil
}

func (gs *GrantService) usableApp(ctx context.Context, id string) (*apps.Application, error) {
	if id == "" {
		return nil, ErrUnknownApplication
	}
	app, err := gs.repos.Apps.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apps.ErrNotFound) {
			return nil, ErrUnknownApplication
		}
		return nil, errors.Wrap(err, "loading application")
	}
	if !app.Usable() {
		return nil, ErrUnknownApplication
	}
	return app, nil
}

// issue generates a token and hands it to persist, regenerating when the
// store reports a uniqueness collision. A nil token from persist means the
// conditional write matched nothing.
func (gs *GrantService) issue(ctx context.Context, kind token.Kind, persist func(tok string) (*string, error)) (*string, error) {
	for attempt := 1; attempt <= token.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := gs.tokens.Generate(kind)
		if err != nil {
			return nil, err
		}
		stored, err := persist(tok)
		if errors.Is(err, grants.ErrTokenCollision) {
			gs.log.Warn().Stringer("kind", kind).Int("attempt", attempt).Msg("token collision, regenerating")
			continue
		}
		return stored, err
	}
	return nil, errors.Wrapf(token.ErrGenerationFailed, "%s token: %d collisions", kind, token.MaxAttempts)
}

func (gs *GrantService) serverError(grant *grants.Grant, cause error) *DecisionOutcome {
	gs.metrics.RecordTokenGenerationFailure(string(grant.ResponseType))
	gs.log.Error().Err(cause).
		Str("grant", grant.ID).
		Str("app", grant.AppID).
		Str("response_type", string(grant.ResponseType)).
		Msg("failed issuing token after consent")
	return &DecisionOutcome{
		Result:      grant.Result,
		RedirectURL: errorRedirect(grant.RedirectURI, grant.ResponseType, p("error", string(oauthmodel.ErrorServerError)), param{"state", grant.State}),
	}
}

// errorRedirect puts error params where the flow expects its response.
func errorRedirect(base string, rt grants.ResponseType, params ...param) string {
	if responseMode(rt) == oauthmodel.FragmentResponseMode {
		return appendFragment(base, params...)
	}
	return appendQuery(base, params...)
}

// AuthorizationErrorRedirect builds the redirect for an authorization request
// rejected after the redirect URI was verified. An empty description is
// omitted.
func AuthorizationErrorRedirect(redirectURI, responseType string, code oauthmodel.ErrorCode, description string, state *string) string {
	rt, _ := grants.ParseResponseType(responseType)
	desc := param{key: "error_description"}
	if description != "" {
		desc = p("error_description", description)
	}
	return errorRedirect(redirectURI, rt, p("error", string(code)), desc, param{"state", state})
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
