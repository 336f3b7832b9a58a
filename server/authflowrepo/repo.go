package authflowrepo

import (
	"errors"
	"time"
)

// ErrUnknownState is returned for a state that was never issued, was already
// used or has expired.
var ErrUnknownState = errors.New("unknown or expired state")

// AuthFlowState is what a relying party remembers between sending the user
// to /oauth2/authorize and receiving the redirect back.
type AuthFlowState struct {
	ReturnURL string
	CreatedAt time.Time
}

type Repo interface {
	Upsert(state string, flow *AuthFlowState) error
	// Take returns and removes the flow for state, so each state is used once.
	Take(state string) (*AuthFlowState, error)
	DeleteCreatedBefore(cutoff time.Time) int
}
