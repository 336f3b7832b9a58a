package auth_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	fakeaccountrepo "github.com/jrsteele09/mc-auth/accounts/fakerepo"
	"github.com/jrsteele09/mc-auth/apps"
	fakeapprepo "github.com/jrsteele09/mc-auth/apps/fakerepo"
	"github.com/jrsteele09/mc-auth/auth"
	"github.com/jrsteele09/mc-auth/grants"
	fakegrantrepo "github.com/jrsteele09/mc-auth/grants/fakerepo"
	"github.com/jrsteele09/mc-auth/identity"
	"github.com/jrsteele09/mc-auth/identity/fakelookup"
	"github.com/jrsteele09/mc-auth/internal/utils"
	fakeotprepo "github.com/jrsteele09/mc-auth/otp/fakerepo"
	"github.com/jrsteele09/mc-auth/token"
	"github.com/stretchr/testify/require"
)

const (
	testAppID       = "42"
	testAppSecret   = "secret"
	testUserID      = "user-1"
	testUserName    = "Steve"
	testRedirectURI = "https://app.example/cb"
	testState       = "xyz"
)

// testFixture holds all test dependencies
type testFixture struct {
	apps     *fakeapprepo.FakeAppRepo
	grants   *fakegrantrepo.FakeGrantRepo
	otps     *fakeotprepo.FakeOTPRepo
	accounts *fakeaccountrepo.FakeAccountRepo
	lookup   *fakelookup.FakeLookup
	tokens   *scriptedGenerator
	service  *auth.GrantService

	clock sync.Mutex
	now   time.Time
}

func (f *testFixture) setNow(t time.Time) {
	f.clock.Lock()
	defer f.clock.Unlock()
	f.now = t
}

func (f *testFixture) advance(d time.Duration) {
	f.clock.Lock()
	defer f.clock.Unlock()
	f.now = f.now.Add(d)
}

func (f *testFixture) currentTime() time.Time {
	f.clock.Lock()
	defer f.clock.Unlock()
	return f.now
}

// scriptedGenerator hands out queued tokens before falling back to random
// ones.
type scriptedGenerator struct {
	*token.Generator
	lock   sync.Mutex
	queued []string
}

func (g *scriptedGenerator) Generate(kind token.Kind) (string, error) {
	g.lock.Lock()
	if len(g.queued) > 0 {
		next := g.queued[0]
		g.queued = g.queued[1:]
		g.lock.Unlock()
		return next, nil
	}
	g.lock.Unlock()
	return g.Generator.Generate(kind)
}

func (g *scriptedGenerator) queue(tokens ...string) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.queued = append(g.queued, tokens...)
}

// setupTestFixture creates a new test fixture with app 42 registered
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		apps:     fakeapprepo.NewFakeAppRepo(),
		grants:   fakegrantrepo.NewFakeGrantRepo(),
		otps:     fakeotprepo.NewFakeOTPRepo(),
		accounts: fakeaccountrepo.NewFakeAccountRepo(),
		lookup: fakelookup.NewFakeLookup(&identity.Profile{
			ID:   testUserID,
			Name: testUserName,
		}),
		tokens: &scriptedGenerator{Generator: token.NewGenerator()},
		now:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	f.apps.Put(&apps.Application{
		ID:           testAppID,
		Owner:        "owner-1",
		Name:         "Example",
		Secret:       testAppSecret,
		RedirectURIs: []string{testRedirectURI},
	})

	svc, err := auth.NewGrantService(auth.Repos{
		Apps:     f.apps,
		Grants:   f.grants,
		OTPs:     f.otps,
		Accounts: f.accounts,
	}, f.tokens, f.lookup, auth.WithNowTime(f.currentTime))
	require.NoError(t, err)
	f.service = svc
	return f
}

func (f *testFixture) begin(t *testing.T, responseType string, state *string, scopes ...string) *grants.Grant {
	t.Helper()
	pending, err := f.service.BeginAuthorization(context.Background(), auth.AuthorizationRequest{
		ClientID:     testAppID,
		RedirectURI:  testRedirectURI,
		ResponseType: responseType,
		State:        state,
		Scopes:       scopes,
		UserID:       testUserID,
	})
	require.NoError(t, err)
	return pending.Grant
}

func (f *testFixture) approveCode(t *testing.T, scopes ...string) (*grants.Grant, string) {
	t.Helper()
	grant := f.begin(t, "code", utils.Ptr(testState), scopes...)
	outcome, err := f.service.Decide(context.Background(), auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: true})
	require.NoError(t, err)
	return grant, codeFrom(t, outcome.RedirectURL)
}

var codeRedirect = regexp.MustCompile(`^https://app\.example/cb\?code=([0-9A-Za-z]{32})&expires_in=300&state=xyz$`)

func codeFrom(t *testing.T, redirect string) string {
	t.Helper()
	m := codeRedirect.FindStringSubmatch(redirect)
	require.NotNil(t, m, redirect)
	return m[1]
}

func exchangeRequest(code string) auth.ExchangeRequest {
	return auth.ExchangeRequest{
		ClientID:     testAppID,
		ClientSecret: testAppSecret,
		Code:         code,
		RedirectURI:  testRedirectURI,
		GrantType:    "authorization_code",
	}
}

func TestNewGrantServiceRequiresDependencies(t *testing.T) {
	_, err := auth.NewGrantService(auth.Repos{}, token.NewGenerator(), fakelookup.NewFakeLookup())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Apps registry is required")

	_, err = auth.NewGrantService(auth.Repos{
		Apps:     fakeapprepo.NewFakeAppRepo(),
		Grants:   fakegrantrepo.NewFakeGrantRepo(),
		OTPs:     fakeotprepo.NewFakeOTPRepo(),
		Accounts: fakeaccountrepo.NewFakeAccountRepo(),
	}, nil, fakelookup.NewFakeLookup())
	require.Error(t, err)
	require.Contains(t, err.Error(), "token generator is required")
}

func TestBeginAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending grant with canonical scopes", func(t *testing.T) {
		f := setupTestFixture(t)
		pending, err := f.service.BeginAuthorization(ctx, auth.AuthorizationRequest{
			ClientID:     testAppID,
			RedirectURI:  testRedirectURI,
			ResponseType: "code",
			State:        utils.Ptr(testState),
			Scopes:       []string{"Profile", " profile "},
			UserID:       testUserID,
		})
		require.NoError(t, err)
		require.Equal(t, grants.Pending, pending.Grant.Result)
		require.Equal(t, []string{"profile"}, pending.Grant.Scopes)
		require.Equal(t, testAppID, pending.App.ID)
		require.Equal(t, f.currentTime(), pending.Grant.Issued)

		stored, err := f.grants.Get(ctx, pending.Grant.ID)
		require.NoError(t, err)
		require.Equal(t, testState, utils.Value(stored.State))
	})

	t.Run("redirect uri with extra query matches", func(t *testing.T) {
		f := setupTestFixture(t)
		pending, err := f.service.BeginAuthorization(ctx, auth.AuthorizationRequest{
			ClientID: testAppID, RedirectURI: "https://APP.example/cb?lang=en", ResponseType: "token", UserID: testUserID,
		})
		require.NoError(t, err)
		require.Equal(t, "https://APP.example/cb?lang=en", pending.Grant.RedirectURI)
		require.Empty(t, pending.Grant.Scopes)
	})

	tests := []struct {
		name string
		req  auth.AuthorizationRequest
		want error
	}{
		{"unknown application", auth.AuthorizationRequest{ClientID: "7", RedirectURI: testRedirectURI, ResponseType: "code"}, auth.ErrUnknownApplication},
		{"invalid redirect", auth.AuthorizationRequest{ClientID: testAppID, RedirectURI: "https://evil.example/cb", ResponseType: "code"}, auth.ErrInvalidRedirectURI},
		{"redirect checked before scope", auth.AuthorizationRequest{ClientID: testAppID, RedirectURI: "https://evil.example/cb", ResponseType: "code", Scopes: []string{"email"}}, auth.ErrInvalidRedirectURI},
		{"unsupported response type", auth.AuthorizationRequest{ClientID: testAppID, RedirectURI: testRedirectURI, ResponseType: "id_token"}, auth.ErrUnsupportedResponseType},
		{"invalid scope", auth.AuthorizationRequest{ClientID: testAppID, RedirectURI: testRedirectURI, ResponseType: "code", Scopes: []string{"profile", "email"}}, auth.ErrInvalidScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tt.req.UserID = testUserID
			_, err := f.service.BeginAuthorization(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("invalid scope names the scope", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.BeginAuthorization(ctx, auth.AuthorizationRequest{
			ClientID: testAppID, RedirectURI: testRedirectURI, ResponseType: "code", Scopes: []string{"email"}, UserID: testUserID,
		})
		require.Contains(t, err.Error(), "email")
	})

	t.Run("deleted application", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.apps.SetDeleted(ctx, testAppID))
		_, err := f.service.BeginAuthorization(ctx, auth.AuthorizationRequest{
			ClientID: testAppID, RedirectURI: testRedirectURI, ResponseType: "code", UserID: testUserID,
		})
		require.ErrorIs(t, err, auth.ErrUnknownApplication)
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("code flow redirect", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", utils.Ptr(testState), "profile")

		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, ClientID: testAppID, UserID: testUserID, Agreed: true})
		require.NoError(t, err)
		require.Equal(t, grants.Granted, outcome.Result)
		code := codeFrom(t, outcome.RedirectURL)

		stored, err := f.grants.Get(ctx, grant.ID)
		require.NoError(t, err)
		require.Equal(t, grants.Granted, stored.Result)
		require.Equal(t, code, utils.Value(stored.ExchangeToken))
		require.Nil(t, stored.AccessToken)
	})

	t.Run("denied redirect", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", utils.Ptr(testState))

		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: false})
		require.NoError(t, err)
		require.Equal(t, grants.Denied, outcome.Result)
		require.Equal(t, "https://app.example/cb?error=access_denied&error_description=resource_owner_denied_request&state=xyz", outcome.RedirectURL)
	})

	t.Run("state omitted when absent", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", nil)

		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: false})
		require.NoError(t, err)
		require.NotContains(t, outcome.RedirectURL, "state=")
	})

	t.Run("state is url encoded", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", utils.Ptr("a b&c=d"))

		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: false})
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(outcome.RedirectURL, "&state=a%20b%26c%3Dd"), outcome.RedirectURL)
	})

	t.Run("implicit flow uses fragment", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "token", utils.Ptr(testState), "profile")

		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: true})
		require.NoError(t, err)
		require.Regexp(t, `^https://app\.example/cb#access_token=[0-9A-Za-z]{32}&token_type=Bearer&expires_in=3600&scope=profile&state=xyz$`, outcome.RedirectURL)

		stored, err := f.grants.Get(ctx, grant.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AccessToken)
		require.Nil(t, stored.ExchangeToken)
		require.Equal(t, f.currentTime(), utils.Value(stored.AccessTokenIssued))
	})

	t.Run("implicit denial uses fragment", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "token", utils.Ptr(testState))

		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: false})
		require.NoError(t, err)
		require.Equal(t, "https://app.example/cb#error=access_denied&error_description=resource_owner_denied_request&state=xyz", outcome.RedirectURL)
	})

	t.Run("second decision rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", nil)

		_, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: false})
		require.NoError(t, err)
		_, err = f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: true})
		require.ErrorIs(t, err, auth.ErrGrantExpiredOrAlreadyDecided)
	})

	t.Run("concurrent decisions have one winner", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", nil)

		const callers = 16
		var wg sync.WaitGroup
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: i%2 == 0})
			}(i)
		}
		wg.Wait()

		var ok int
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, auth.ErrGrantExpiredOrAlreadyDecided)
		}
		require.Equal(t, 1, ok)

		stored, err := f.grants.Get(ctx, grant.ID)
		require.NoError(t, err)
		require.Contains(t, []grants.Result{grants.Granted, grants.Denied}, stored.Result)
	})

	t.Run("decision window boundary", func(t *testing.T) {
		f := setupTestFixture(t)
		start := f.currentTime()
		inside := f.begin(t, "code", nil)
		outside := f.begin(t, "code", nil)

		f.setNow(start.Add(23*time.Hour + 59*time.Minute + 59*time.Second))
		_, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: inside.ID, UserID: testUserID, Agreed: true})
		require.NoError(t, err)

		f.setNow(start.Add(24*time.Hour + time.Second))
		_, err = f.service.Decide(ctx, auth.DecisionRequest{GrantID: outside.ID, UserID: testUserID, Agreed: true})
		require.ErrorIs(t, err, auth.ErrGrantExpiredOrAlreadyDecided)
	})

	t.Run("other user cannot decide", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", nil)

		_, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: "user-2", Agreed: true})
		require.ErrorIs(t, err, auth.ErrGrantNotFound)
		_, err = f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, ClientID: "43", UserID: testUserID, Agreed: true})
		require.ErrorIs(t, err, auth.ErrGrantNotFound)
		_, err = f.service.Decide(ctx, auth.DecisionRequest{GrantID: "999", UserID: testUserID, Agreed: true})
		require.ErrorIs(t, err, auth.ErrGrantNotFound)
	})

	t.Run("application deleted before consent", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", nil)
		require.NoError(t, f.apps.SetDeleted(ctx, testAppID))

		_, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: true})
		require.ErrorIs(t, err, auth.ErrUnknownApplication)

		stored, err := f.grants.Get(ctx, grant.ID)
		require.NoError(t, err)
		require.Equal(t, grants.Pending, stored.Result)
	})

	t.Run("token collision is retried", func(t *testing.T) {
		f := setupTestFixture(t)
		_, taken := f.approveCode(t)

		grant := f.begin(t, "code", utils.Ptr(testState))
		f.tokens.queue(taken)
		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: true})
		require.NoError(t, err)
		require.NotEqual(t, taken, codeFrom(t, outcome.RedirectURL))
	})

	t.Run("exhausted collisions redirect with server_error", func(t *testing.T) {
		f := setupTestFixture(t)
		_, taken := f.approveCode(t)

		grant := f.begin(t, "code", utils.Ptr(testState))
		f.tokens.queue(taken, taken, taken)
		outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: true})
		require.ErrorIs(t, err, auth.ErrTokenGenerationFailed)
		require.NotNil(t, outcome)
		require.Equal(t, "https://app.example/cb?error=server_error&state=xyz", outcome.RedirectURL)
	})
}

func TestExchangeCode(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip with profile", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t, "PROFILE")

		res, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.NoError(t, err)
		require.Len(t, res.AccessToken, token.BodyLength)
		require.Equal(t, "Bearer", res.TokenType)
		require.Equal(t, 3600, res.ExpiresIn)
		require.Equal(t, "profile", res.Scope)
		require.Equal(t, testState, utils.Value(res.State))
		require.Equal(t, testUserID, res.UserID)
		require.NotNil(t, res.Profile)
		require.Equal(t, testUserName, res.Profile.Name)
	})

	t.Run("second exchange fails", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t, "profile")

		_, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.NoError(t, err)
		_, err = f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.ErrorIs(t, err, auth.ErrInvalidCodeForExchange)
	})

	t.Run("concurrent exchanges have one winner", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)

		const callers = 16
		var wg sync.WaitGroup
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.service.ExchangeCode(ctx, exchangeRequest(code))
			}(i)
		}
		wg.Wait()

		var ok int
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, auth.ErrInvalidCodeForExchange)
		}
		require.Equal(t, 1, ok)
	})

	t.Run("no profile without scope", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)

		res, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.NoError(t, err)
		require.Nil(t, res.Profile)
		require.Equal(t, "", res.Scope)
	})

	t.Run("expired code", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)

		f.advance(5*time.Minute + time.Second)
		_, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.ErrorIs(t, err, auth.ErrInvalidCodeForExchange)
	})

	t.Run("redirect uri compared case-insensitively", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)

		req := exchangeRequest(code)
		req.RedirectURI = "https://APP.EXAMPLE/CB"
		_, err := f.service.ExchangeCode(ctx, req)
		require.NoError(t, err)
	})

	t.Run("wrong redirect uri", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)

		req := exchangeRequest(code)
		req.RedirectURI = "https://app.example/other"
		_, err := f.service.ExchangeCode(ctx, req)
		require.ErrorIs(t, err, auth.ErrInvalidCodeForExchange)
	})

	t.Run("client credentials", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)

		for _, req := range []auth.ExchangeRequest{
			{ClientID: testAppID, ClientSecret: "wrong", Code: code, RedirectURI: testRedirectURI, GrantType: "authorization_code"},
			{ClientID: "43", ClientSecret: testAppSecret, Code: code, RedirectURI: testRedirectURI, GrantType: "authorization_code"},
			{ClientID: testAppID, Code: code, RedirectURI: testRedirectURI, GrantType: "authorization_code"},
		} {
			_, err := f.service.ExchangeCode(ctx, req)
			require.ErrorIs(t, err, auth.ErrInvalidClientCredentials)
		}

		// the code survives failed client authentication
		_, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.NoError(t, err)
	})

	t.Run("secret rotated mid exchange", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)
		require.NoError(t, f.apps.SetSecret(ctx, testAppID, "rotated"))

		_, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.ErrorIs(t, err, auth.ErrInvalidClientCredentials)
	})

	t.Run("grant type", func(t *testing.T) {
		f := setupTestFixture(t)
		_, code := f.approveCode(t)

		req := exchangeRequest(code)
		req.GrantType = "refresh_token"
		_, err := f.service.ExchangeCode(ctx, req)
		require.ErrorIs(t, err, auth.ErrInvalidGrantType)

		req.GrantType = "Authorization_Code"
		_, err = f.service.ExchangeCode(ctx, req)
		require.NoError(t, err)
	})

	t.Run("malformed code", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.ExchangeCode(ctx, exchangeRequest("not-a-code"))
		require.ErrorIs(t, err, auth.ErrInvalidCodeForExchange)
	})

	t.Run("denied grant has no code", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := f.begin(t, "code", nil)
		_, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: false})
		require.NoError(t, err)

		_, err = f.service.ExchangeCode(ctx, exchangeRequest(strings.Repeat("a", token.BodyLength)))
		require.ErrorIs(t, err, auth.ErrInvalidCodeForExchange)
	})

	t.Run("revoked grant cannot be exchanged", func(t *testing.T) {
		f := setupTestFixture(t)
		grant, code := f.approveCode(t)
		require.NoError(t, f.service.Revoke(ctx, grant.ID))

		_, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.ErrorIs(t, err, auth.ErrInvalidCodeForExchange)
	})

	t.Run("profile failure keeps the token", func(t *testing.T) {
		f := setupTestFixture(t)
		grant, code := f.approveCode(t, "profile")
		f.lookup.FailWith(errors.New("mojang down"))

		res, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
		require.ErrorIs(t, err, auth.ErrProfileFetchFailed)
		require.NotNil(t, res)
		require.NotEmpty(t, res.AccessToken)

		stored, err := f.grants.Get(ctx, grant.ID)
		require.NoError(t, err)
		require.Equal(t, res.AccessToken, utils.Value(stored.AccessToken))
	})
}

func TestResolveAccessToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	grant, code := f.approveCode(t, "profile")
	res, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
	require.NoError(t, err)

	resolved, err := f.service.ResolveAccessToken(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, grant.ID, resolved.ID)
	require.NoError(t, auth.RequireScope(resolved, "profile"))
	require.ErrorIs(t, auth.RequireScope(resolved, "skins"), auth.ErrMissingScope)

	profile, err := f.service.Profile(ctx, resolved)
	require.NoError(t, err)
	require.Equal(t, testUserName, profile.Name)

	_, err = f.service.ResolveAccessToken(ctx, "garbage")
	require.ErrorIs(t, err, auth.ErrInvalidAccessToken)
	_, err = f.service.ResolveAccessToken(ctx, strings.Repeat("b", token.BodyLength))
	require.ErrorIs(t, err, auth.ErrInvalidAccessToken)

	f.advance(59 * time.Minute)
	_, err = f.service.ResolveAccessToken(ctx, res.AccessToken)
	require.NoError(t, err)

	f.advance(time.Minute)
	_, err = f.service.ResolveAccessToken(ctx, res.AccessToken)
	require.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestRevokedAccessToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	grant := f.begin(t, "token", nil)
	outcome, err := f.service.Decide(ctx, auth.DecisionRequest{GrantID: grant.ID, UserID: testUserID, Agreed: true})
	require.NoError(t, err)
	access := regexp.MustCompile(`access_token=([0-9A-Za-z]+)`).FindStringSubmatch(outcome.RedirectURL)[1]

	_, err = f.service.ResolveAccessToken(ctx, access)
	require.NoError(t, err)

	require.NoError(t, f.service.Revoke(ctx, grant.ID))
	require.NoError(t, f.service.Revoke(ctx, grant.ID))
	require.ErrorIs(t, f.service.Revoke(ctx, "999"), auth.ErrGrantNotFound)

	_, err = f.service.ResolveAccessToken(ctx, access)
	require.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestExtractBearer(t *testing.T) {
	tok, ok := auth.ExtractBearer("Bearer abc")
	require.True(t, ok)
	require.Equal(t, "abc", tok)

	tok, ok = auth.ExtractBearer("bearer abc ")
	require.True(t, ok)
	require.Equal(t, "abc", tok)

	_, ok = auth.ExtractBearer("Basic abc")
	require.False(t, ok)
	_, ok = auth.ExtractBearer("Bearer ")
	require.False(t, ok)
}

func TestAuthorizationErrorRedirect(t *testing.T) {
	require.Equal(t, "https://app.example/cb?x=1&error=unsupported_response_type&state=s",
		auth.AuthorizationErrorRedirect("https://app.example/cb?x=1", "id_token", "unsupported_response_type", "", utils.Ptr("s")))
	require.Equal(t, "https://app.example/cb#error=invalid_scope&error_description=email",
		auth.AuthorizationErrorRedirect("https://app.example/cb", "token", "invalid_scope", "email", nil))
}

func TestReap(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	start := f.currentTime()

	stale := f.begin(t, "code", nil)
	_, code := f.approveCode(t)
	_, err := f.service.ExchangeCode(ctx, exchangeRequest(code))
	require.NoError(t, err)
	require.NoError(t, f.otps.Issue(ctx, testUserID, "123456", start))

	f.setNow(start.Add(2 * time.Hour))
	fresh := f.begin(t, "code", nil)

	f.setNow(start.Add(25 * time.Hour))
	res, err := f.service.Reap(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Grants)
	require.Equal(t, int64(1), res.OTPs)

	_, err = f.grants.Get(ctx, stale.ID)
	require.ErrorIs(t, err, grants.ErrNotFound)
	_, err = f.grants.Get(ctx, fresh.ID)
	require.NoError(t, err)
}
