package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/mc-auth/apps"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type AppStore struct {
	db bun.IDB
}

func NewAppStore(db bun.IDB) *AppStore {
	return &AppStore{db: db}
}

func (s *AppStore) Get(ctx context.Context, id string) (*apps.Application, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, apps.ErrNotFound
	}
	rec := new(appRecord)
	err := s.db.NewSelect().Model(rec).Where("app.id = ?", n).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apps.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: select app")
	}
	return rec.toDomain(), nil
}

func (s *AppStore) Create(ctx context.Context, app *apps.Application) (*apps.Application, error) {
	rec := newAppRecord(app)
	if _, err := s.db.NewInsert().Model(rec).Returning("*").Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "sqlstore: insert app")
	}
	return rec.toDomain(), nil
}

// ListByOwner returns the owner's applications that have not been deleted,
// oldest first.
func (s *AppStore) ListByOwner(ctx context.Context, owner string) ([]*apps.Application, error) {
	var records []appRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("app.owner = ?", owner).
		Where("app.deleted = ?", false).
		Order("app.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: list apps")
	}
	out := make([]*apps.Application, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

func (s *AppStore) SetRedirectURIs(ctx context.Context, id string, uris []string) error {
	if uris == nil {
		uris = []string{}
	}
	return s.updateColumn(ctx, id, &appRecord{RedirectURIs: uris}, "redirect_uris")
}

func (s *AppStore) SetSecret(ctx context.Context, id, secret string) error {
	return s.updateColumn(ctx, id, &appRecord{Secret: secret}, "secret")
}

func (s *AppStore) SetDeleted(ctx context.Context, id string) error {
	return s.updateColumn(ctx, id, &appRecord{Deleted: true}, "deleted")
}

func (s *AppStore) updateColumn(ctx context.Context, id string, rec *appRecord, column string) error {
	n, ok := parseID(id)
	if !ok {
		return apps.ErrNotFound
	}
	rec.ID = n
	res, err := s.db.NewUpdate().Model(rec).Column(column).WherePK().Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "sqlstore: update app %s", column)
	}
	updated, err := affected(res)
	if err != nil {
		return err
	}
	if !updated {
		return apps.ErrNotFound
	}
	return nil
}
