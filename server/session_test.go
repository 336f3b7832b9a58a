package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/mc-auth/accounts"
	"github.com/jrsteele09/mc-auth/internal/config"
	"github.com/jrsteele09/mc-auth/server"
	"github.com/stretchr/testify/require"
)

func newSessionManager(t *testing.T, secret, issuer string) *server.SessionManager {
	t.Helper()
	m, err := server.NewSessionManager(config.Security{
		SessionSecret:   secret,
		SessionMaxAge:   time.Hour,
		KeepLoginMaxAge: 24 * time.Hour,
	}, issuer)
	require.NoError(t, err)
	return m
}

func issuedCookie(t *testing.T, m *server.SessionManager, keepLogin bool) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, &accounts.Account{ID: testUserID, Name: testUserName}, keepLogin))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	m := newSessionManager(t, strings.Repeat("k", 32), "http://mc-auth.test")

	cookie := issuedCookie(t, m, false)
	require.Zero(t, cookie.MaxAge)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	session, err := m.Read(req)
	require.NoError(t, err)
	require.Equal(t, testUserID, session.AccountID)
	require.Equal(t, testUserName, session.Name)
	require.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	kept := issuedCookie(t, m, true)
	require.Equal(t, int((24 * time.Hour).Seconds()), kept.MaxAge)
}

func TestSessionRejected(t *testing.T) {
	m := newSessionManager(t, strings.Repeat("k", 32), "http://mc-auth.test")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Read(req)
	require.ErrorIs(t, err, server.ErrNoSession)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"other secret", issuedCookie(t, newSessionManager(t, strings.Repeat("x", 32), "http://mc-auth.test"), false)},
		{"other issuer", issuedCookie(t, newSessionManager(t, strings.Repeat("k", 32), "http://elsewhere.test"), false)},
		{"garbage", &http.Cookie{Name: "mcauth_session", Value: "not-a-jwt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(tt.cookie)
			_, err := m.Read(req)
			require.ErrorIs(t, err, server.ErrNoSession)
		})
	}
}

func TestSessionSecretLength(t *testing.T) {
	_, err := server.NewSessionManager(config.Security{SessionSecret: "short"}, "http://mc-auth.test")
	require.Error(t, err)
}
