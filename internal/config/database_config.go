package config

type DatabaseConfig interface {
	GetDBDriver() string
	GetDBDSN() string
	GetDBMaxOpenConns() int
	GetDBDebug() bool
}

type Database struct {
	Driver       string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN          string `env:"DB_DSN" envDefault:"file:mcauth.db?_foreign_keys=on&_busy_timeout=5000"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	Debug        bool   `env:"DB_DEBUG" envDefault:"false"`
}

var _ DatabaseConfig = Database{}

// GetDBDriver is "postgres" or "sqlite3".
func (d Database) GetDBDriver() string {
	return d.Driver
}

func (d Database) GetDBDSN() string {
	return d.DSN
}

func (d Database) GetDBMaxOpenConns() int {
	return d.MaxOpenConns
}

func (d Database) GetDBDebug() bool {
	return d.Debug
}
