package config

import "time"

type OAuthConfig interface {
	GetDecisionWindow() time.Duration
	GetExchangeWindow() time.Duration
	GetAccessTokenExpiry() time.Duration
	GetOTPWindow() time.Duration
	GetAccessTokenPrefix() string
	GetExchangeTokenPrefix() string
	GetReaperInterval() time.Duration
	GetRetention() time.Duration
}

type OAuth struct {
	AccessTokenPrefix   string        `env:"ACCESS_TOKEN_PREFIX"`
	ExchangeTokenPrefix string        `env:"EXCHANGE_TOKEN_PREFIX"`
	ReaperInterval      time.Duration `env:"REAPER_INTERVAL" envDefault:"1h"`
}

var _ OAuthConfig = OAuth{}

// GetDecisionWindow is how long after creation a grant can still be
// approved or denied.
func (OAuth) GetDecisionWindow() time.Duration {
	return 24 * time.Hour
}

// GetExchangeWindow is how long an authorization code can be exchanged.
func (OAuth) GetExchangeWindow() time.Duration {
	return 5 * time.Minute
}

func (OAuth) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (OAuth) GetOTPWindow() time.Duration {
	return 5 * time.Minute
}

func (o OAuth) GetAccessTokenPrefix() string {
	return o.AccessTokenPrefix
}

func (o OAuth) GetExchangeTokenPrefix() string {
	return o.ExchangeTokenPrefix
}

func (o OAuth) GetReaperInterval() time.Duration {
	return o.ReaperInterval
}

// GetRetention is the age after which grants and OTPs are purged.
func (OAuth) GetRetention() time.Duration {
	return 24 * time.Hour
}
