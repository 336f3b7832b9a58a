package config

import "time"

type SecurityConfig interface {
	GetSessionSecret() []byte
	GetCookieSecure() bool
	GetSessionMaxAge() time.Duration
	GetKeepLoginMaxAge() time.Duration
}

type Security struct {
	SessionSecret   string        `env:"SESSION_SECRET"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SessionMaxAge   time.Duration `env:"SESSION_MAX_AGE" envDefault:"12h"`
	KeepLoginMaxAge time.Duration `env:"KEEP_LOGIN_MAX_AGE" envDefault:"720h"`
}

var _ SecurityConfig = Security{}

func (s Security) GetSessionSecret() []byte {
	return []byte(s.SessionSecret)
}

func (s Security) GetCookieSecure() bool {
	return s.CookieSecure
}

// GetSessionMaxAge applies to sessions created without "keep me logged in".
func (s Security) GetSessionMaxAge() time.Duration {
	return s.SessionMaxAge
}

func (s Security) GetKeepLoginMaxAge() time.Duration {
	return s.KeepLoginMaxAge
}
