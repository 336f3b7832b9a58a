package accounts

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("account not found")

// Account is a Minecraft account that has logged in at least once. ID is the
// undashed profile UUID.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	LastLogin time.Time `json:"lastLogin"`
}

// Repo stores accounts.
type Repo interface {
	// Upsert creates the account or refreshes its name and last login.
	Upsert(ctx context.Context, id, name string, lastLogin time.Time) (*Account, error)
	Get(ctx context.Context, id string) (*Account, error)
}
