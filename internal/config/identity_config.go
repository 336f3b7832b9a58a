package config

import "time"

type IdentityConfig interface {
	GetMojangAPIURL() string
	GetMojangSessionURL() string
	GetIdentityTimeout() time.Duration
	GetUserAgent() string
}

type Identity struct {
	MojangAPIURL     string        `env:"MOJANG_API_URL" envDefault:"https://api.mojang.com"`
	MojangSessionURL string        `env:"MOJANG_SESSION_URL" envDefault:"https://sessionserver.mojang.com"`
	Timeout          time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"5s"`
	UserAgent        string        `env:"HTTP_USER_AGENT" envDefault:"mc-auth (+https://github.com/jrsteele09/mc-auth)"`
}

var _ IdentityConfig = Identity{}

func (i Identity) GetMojangAPIURL() string {
	return i.MojangAPIURL
}

func (i Identity) GetMojangSessionURL() string {
	return i.MojangSessionURL
}

func (i Identity) GetIdentityTimeout() time.Duration {
	return i.Timeout
}

func (i Identity) GetUserAgent() string {
	return i.UserAgent
}
