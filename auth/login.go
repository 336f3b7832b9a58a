package auth

import (
	"context"

	"github.com/jrsteele09/mc-auth/accounts"
	"github.com/jrsteele09/mc-auth/identity"
	"github.com/jrsteele09/mc-auth/otp"
	"github.com/pkg/errors"
)

// Login authenticates a Minecraft username with a one-time password issued
// in game. Unknown usernames, wrong codes and expired codes all return
// ErrInvalidCredentials.
func (gs *GrantService) Login(ctx context.Context, username, code string) (*accounts.Account, error) {
	if !identity.ValidUsername(username) {
		gs.metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}
	if _, ok := otp.Normalize(code); !ok {
		gs.metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	profile, err := gs.identity.ProfileByName(ctx, username)
	if err != nil {
		gs.metrics.RecordLogin(false)
		if errors.Is(err, identity.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Login] resolving username")
	}

	if err := gs.otps.Verify(ctx, profile.ID, code); err != nil {
		gs.metrics.RecordLogin(false)
		if errors.Is(err, otp.ErrInvalidOTP) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Login] verifying otp")
	}

	account, err := gs.repos.Accounts.Upsert(ctx, profile.ID, profile.Name, gs.now())
	if err != nil {
		return nil, errors.Wrap(err, "[Login] updating account")
	}
	gs.metrics.RecordLogin(true)
	gs.log.Debug().Str("uuid", account.ID).Msg("login")
	return account, nil
}

// VerifyOTP consumes a one-time password for a destructive confirmation.
func (gs *GrantService) VerifyOTP(ctx context.Context, account, code string) error {
	return gs.otps.Verify(ctx, account, code)
}
