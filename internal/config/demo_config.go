package config

type DemoConfig interface {
	GetDemoClientID() string
	GetDemoClientSecret() string
}

// Demo configures the built-in relying party under /demo. It is disabled
// unless both values are set.
type Demo struct {
	ClientID     string `env:"DEMO_CLIENT_ID"`
	ClientSecret string `env:"DEMO_CLIENT_SECRET"`
}

var _ DemoConfig = Demo{}

func (d Demo) GetDemoClientID() string {
	return d.ClientID
}

func (d Demo) GetDemoClientSecret() string {
	return d.ClientSecret
}
