package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jrsteele09/mc-auth/accounts"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type AccountStore struct {
	db bun.IDB
}

func NewAccountStore(db bun.IDB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Upsert(ctx context.Context, id, name string, lastLogin time.Time) (*accounts.Account, error) {
	rec := &accountRecord{ID: id, Name: name, LastLogin: dbTime(lastLogin)}
	_, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("last_login = EXCLUDED.last_login").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: upsert account")
	}
	return rec.toDomain(), nil
}

func (s *AccountStore) Get(ctx context.Context, id string) (*accounts.Account, error) {
	rec := new(accountRecord)
	err := s.db.NewSelect().Model(rec).Where("acc.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: select account")
	}
	return rec.toDomain(), nil
}
