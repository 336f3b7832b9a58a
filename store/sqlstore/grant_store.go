package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jrsteele09/mc-auth/grants"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// GrantStore keeps grants in the grants table. Every state transition is a
// single conditional UPDATE so the database arbitrates concurrent callers.
type GrantStore struct {
	db bun.IDB
}

func NewGrantStore(db bun.IDB) *GrantStore {
	return &GrantStore{db: db}
}

func (s *GrantStore) Create(ctx context.Context, g grants.NewGrant) (*grants.Grant, error) {
	appID, ok := parseID(g.AppID)
	if !ok {
		return nil, errors.Errorf("sqlstore: invalid app id %q", g.AppID)
	}
	rec := &grantRecord{
		AppID:        appID,
		Account:      g.UserID,
		RedirectURI:  g.RedirectURI,
		ResponseType: string(g.ResponseType),
		Scopes:       strings.Join(g.Scopes, " "),
		State:        g.State,
		Issued:       dbTime(g.Issued),
	}
	if _, err := s.db.NewInsert().Model(rec).Returning("*").Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "sqlstore: insert grant")
	}
	return rec.toDomain()
}

func (s *GrantStore) Get(ctx context.Context, id string) (*grants.Grant, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, grants.ErrNotFound
	}
	return s.getWhere(ctx, "g.id = ?", n)
}

func (s *GrantStore) GetByAccessToken(ctx context.Context, token string) (*grants.Grant, error) {
	if token == "" {
		return nil, grants.ErrNotFound
	}
	return s.getWhere(ctx, "g.access_token = ?", token)
}

func (s *GrantStore) getWhere(ctx context.Context, where string, arg any) (*grants.Grant, error) {
	rec := new(grantRecord)
	err := s.db.NewSelect().Model(rec).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, grants.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: select grant")
	}
	return rec.toDomain()
}

func (s *GrantStore) SetResultIfUnset(ctx context.Context, id string, result grants.Result, issuedAfter time.Time) (bool, error) {
	n, ok := parseID(id)
	if !ok {
		return false, nil
	}
	res, err := s.db.NewRaw(
		"UPDATE grants SET result = ? WHERE id = ? AND result IS NULL AND issued > ?",
		result.Nullable(), n, dbTime(issuedAfter),
	).Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "sqlstore: set grant result")
	}
	return affected(res)
}

func (s *GrantStore) SetExchangeTokenIfUnset(ctx context.Context, id, token string) (*string, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return s.setTokenIfUnset(ctx,
		"UPDATE grants SET exchange_token = ? WHERE id = ? AND exchange_token IS NULL RETURNING exchange_token",
		token, n)
}

func (s *GrantStore) SetAccessTokenIfUnset(ctx context.Context, id, token string, issuedAt time.Time) (*string, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return s.setTokenIfUnset(ctx,
		"UPDATE grants SET access_token = ?, access_token_issued = ? WHERE id = ? AND access_token IS NULL RETURNING access_token",
		token, dbTime(issuedAt), n)
}

func (s *GrantStore) setTokenIfUnset(ctx context.Context, query string, args ...any) (*string, error) {
	var tokens []string
	err := s.db.NewRaw(query, args...).Scan(ctx, &tokens)
	if isUniqueViolation(err) {
		return nil, grants.ErrTokenCollision
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: set grant token")
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return &tokens[0], nil
}

func (s *GrantStore) ConsumeExchangeToken(ctx context.Context, q grants.ExchangeQuery) (*grants.Grant, error) {
	appID, ok := parseID(q.AppID)
	if !ok || q.Code == "" {
		return nil, nil
	}
	var records []grantRecord
	err := s.db.NewRaw(`UPDATE grants SET access_token = ?, access_token_issued = ?
WHERE app = ? AND exchange_token = ? AND lower(redirect_uri) = lower(?)
AND result = 'GRANTED' AND access_token IS NULL AND issued >= ?
RETURNING *`,
		q.AccessToken, dbTime(q.IssuedAt), appID, q.Code, q.RedirectURI, dbTime(q.IssuedAfter),
	).Scan(ctx, &records)
	if isUniqueViolation(err) {
		return nil, grants.ErrTokenCollision
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: consume exchange token")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain()
}

func (s *GrantStore) Revoke(ctx context.Context, id string) (bool, error) {
	n, ok := parseID(id)
	if !ok {
		return false, nil
	}
	res, err := s.db.NewRaw(
		"UPDATE grants SET result = 'REVOKED' WHERE id = ? AND (result IS NULL OR result <> 'REVOKED')", n,
	).Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "sqlstore: revoke grant")
	}
	return affected(res)
}

func (s *GrantStore) DeleteIssuedBefore(ctx context.Context, cutoff, tokenCutoff time.Time) (int64, error) {
	res, err := s.db.NewRaw(
		"DELETE FROM grants WHERE issued < ? AND (access_token_issued IS NULL OR access_token_issued < ?)",
		dbTime(cutoff), dbTime(tokenCutoff),
	).Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "sqlstore: delete grants")
	}
	return res.RowsAffected()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
