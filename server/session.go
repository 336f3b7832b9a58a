package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/mc-auth/accounts"
	"github.com/jrsteele09/mc-auth/internal/config"
	"github.com/pkg/errors"
)

const (
	sessionCookieName = "mcauth_session"
	minSecretLength   = 32
)

var ErrNoSession = errors.New("no valid login session")

// Session is the logged in Minecraft account carried by the session cookie.
type Session struct {
	AccountID string
	Name      string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 signed session cookies.
type SessionManager struct {
	secret     []byte
	issuer     string
	secure     bool
	maxAge     time.Duration
	keepMaxAge time.Duration
	nowTime    func() time.Time
}

func NewSessionManager(cfg config.SecurityConfig, issuer string) (*SessionManager, error) {
	secret := cfg.GetSessionSecret()
	if len(secret) < minSecretLength {
		return nil, errors.Errorf("[NewSessionManager] session secret must be at least %d bytes", minSecretLength)
	}
	return &SessionManager{
		secret:     secret,
		issuer:     issuer,
		secure:     cfg.GetCookieSecure(),
		maxAge:     cfg.GetSessionMaxAge(),
		keepMaxAge: cfg.GetKeepLoginMaxAge(),
		nowTime:    time.Now,
	}, nil
}

// Issue sets the session cookie for account. Without keepLogin the cookie
// ends with the browser session.
func (m *SessionManager) Issue(w http.ResponseWriter, account *accounts.Account, keepLogin bool) error {
	now := m.nowTime()
	ttl := m.maxAge
	if keepLogin {
		ttl = m.keepMaxAge
	}
	claims := sessionClaims{
		Name: account.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   account.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return errors.Wrap(err, "[SessionManager Issue] signing session")
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if keepLogin {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// Read returns the session of r or ErrNoSession.
func (m *SessionManager) Read(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowTime),
	)
	if err != nil {
		return nil, errors.Wrap(ErrNoSession, err.Error())
	}
	if claims.Subject == "" {
		return nil, ErrNoSession
	}
	return &Session{
		AccountID: claims.Subject,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// loginRedirect sends the user agent to the login page and back to the
// current URL afterwards.
func loginRedirect(r *http.Request) string {
	target := RouteLogin + "?return=" + url.QueryEscape(r.URL.RequestURI())
	if username := r.URL.Query().Get("mcauth.username"); username != "" {
		target += "&username=" + url.QueryEscape(username)
	}
	return target
}

// safeReturn only accepts site relative paths so the login page cannot be
// used as an open redirect.
func safeReturn(target string) string {
	if target == "" || target[0] != '/' || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	if u, err := url.Parse(target); err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return target
}
