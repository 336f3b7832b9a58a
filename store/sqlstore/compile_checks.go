package sqlstore

import (
	"github.com/jrsteele09/mc-auth/accounts"
	"github.com/jrsteele09/mc-auth/apps"
	"github.com/jrsteele09/mc-auth/grants"
	"github.com/jrsteele09/mc-auth/otp"
)

var (
	_ grants.Store  = (*GrantStore)(nil)
	_ apps.Registry = (*AppStore)(nil)
	_ otp.Store     = (*OTPStore)(nil)
	_ accounts.Repo = (*AccountStore)(nil)
)
