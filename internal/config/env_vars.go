package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port           string `env:"PORT" envDefault:"8080"`
	AppName        string `env:"APP_NAME" envDefault:"Mc-Auth"`
	Env            string `env:"ENV" envDefault:"DEV"`
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

// GetBaseURL returns the public base URL (e.g. "https://mc-auth.com") used
// for login redirects and the demo client.
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.BaseURL, "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetMetricsEnabled() bool {
	return e.MetricsEnabled
}
