package sqlstore

import (
	"strings"
	"time"

	"github.com/jrsteele09/mc-auth/accounts"
	"github.com/jrsteele09/mc-auth/apps"
	"github.com/jrsteele09/mc-auth/grants"
	"github.com/uptrace/bun"
)

type accountRecord struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,nullzero"`
	LastLogin time.Time `bun:"last_login,notnull"`
}

func (r *accountRecord) toDomain() *accounts.Account {
	return &accounts.Account{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		LastLogin: r.LastLogin.UTC(),
	}
}

type appRecord struct {
	bun.BaseModel `bun:"table:apps,alias:app"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Owner        string    `bun:"owner,notnull"`
	Name         string    `bun:"name,notnull"`
	Description  string    `bun:"description,notnull"`
	Website      string    `bun:"website,notnull"`
	Secret       string    `bun:"secret,notnull"`
	RedirectURIs []string  `bun:"redirect_uris,type:jsonb,notnull"`
	Deleted      bool      `bun:"deleted,notnull"`
	Verified     bool      `bun:"verified,notnull"`
	Created      time.Time `bun:"created,nullzero,notnull,default:current_timestamp"`
}

func newAppRecord(a *apps.Application) *appRecord {
	uris := a.RedirectURIs
	if uris == nil {
		uris = []string{}
	}
	rec := &appRecord{
		Owner:        a.Owner,
		Name:         a.Name,
		Description:  a.Description,
		Website:      a.Website,
		Secret:       a.Secret,
		RedirectURIs: uris,
		Deleted:      a.Deleted,
		Verified:     a.Verified,
	}
	if !a.Created.IsZero() {
		rec.Created = dbTime(a.Created)
	}
	return rec
}

func (r *appRecord) toDomain() *apps.Application {
	return &apps.Application{
		ID:           formatID(r.ID),
		Owner:        r.Owner,
		Name:         r.Name,
		Description:  r.Description,
		Website:      r.Website,
		Secret:       r.Secret,
		RedirectURIs: r.RedirectURIs,
		Deleted:      r.Deleted,
		Verified:     r.Verified,
		Created:      r.Created.UTC(),
	}
}

type grantRecord struct {
	bun.BaseModel `bun:"table:grants,alias:g"`

	ID                int64      `bun:"id,pk,autoincrement"`
	AppID             int64      `bun:"app,notnull"`
	Account           string     `bun:"account,notnull"`
	RedirectURI       string     `bun:"redirect_uri,notnull"`
	ResponseType      string     `bun:"response_type,notnull"`
	Scopes            string     `bun:"scopes,notnull"`
	State             *string    `bun:"state"`
	Result            *string    `bun:"result"`
	AccessToken       *string    `bun:"access_token"`
	AccessTokenIssued *time.Time `bun:"access_token_issued"`
	ExchangeToken     *string    `bun:"exchange_token"`
	Issued            time.Time  `bun:"issued,notnull"`
}

func (r *grantRecord) toDomain() (*grants.Grant, error) {
	result, err := grants.ResultFromNullable(r.Result)
	if err != nil {
		return nil, err
	}
	g := &grants.Grant{
		ID:            formatID(r.ID),
		AppID:         formatID(r.AppID),
		UserID:        r.Account,
		RedirectURI:   r.RedirectURI,
		ResponseType:  grants.ResponseType(r.ResponseType),
		Scopes:        strings.Fields(r.Scopes),
		State:         r.State,
		Result:        result,
		AccessToken:   r.AccessToken,
		ExchangeToken: r.ExchangeToken,
		Issued:        r.Issued.UTC(),
	}
	if r.AccessTokenIssued != nil {
		t := r.AccessTokenIssued.UTC()
		g.AccessTokenIssued = &t
	}
	return g, nil
}

type otpRecord struct {
	bun.BaseModel `bun:"table:otps,alias:o"`

	Account string    `bun:"account,notnull"`
	Code    string    `bun:"code,notnull"`
	Issued  time.Time `bun:"issued,notnull"`
}
