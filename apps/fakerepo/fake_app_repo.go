package fakeapprepo

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/mc-auth/apps"
)

var _ apps.Registry = (*FakeAppRepo)(nil)

type FakeAppRepo struct {
	apps   map[string]*apps.Application
	nextID int
	lock   sync.RWMutex
}

func NewFakeAppRepo() *FakeAppRepo {
	return &FakeAppRepo{
		apps: make(map[string]*apps.Application),
	}
}

// Put stores app as is, keeping its ID when set.
func (r *FakeAppRepo) Put(app *apps.Application) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if app.ID == "" {
		r.nextID++
		app.ID = strconv.Itoa(r.nextID)
	}
	clone := *app
	r.apps[app.ID] = &clone
}

func (r *FakeAppRepo) Get(_ context.Context, id string) (*apps.Application, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, apps.ErrNotFound
	}
	clone := *app
	clone.RedirectURIs = append([]string(nil), app.RedirectURIs...)
	return &clone, nil
}

func (r *FakeAppRepo) Create(_ context.Context, app *apps.Application) (*apps.Application, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextID++
	clone := *app
	clone.ID = strconv.Itoa(r.nextID)
	if clone.Created.IsZero() {
		clone.Created = time.Now().UTC()
	}
	r.apps[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *FakeAppRepo) ListByOwner(_ context.Context, owner string) ([]*apps.Application, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	list := make([]*apps.Application, 0)
	for _, app := range r.apps {
		if app.Owner == owner {
			clone := *app
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *FakeAppRepo) SetRedirectURIs(_ context.Context, id string, uris []string) error {
	return r.update(id, func(app *apps.Application) {
		app.RedirectURIs = append([]string(nil), uris...)
	})
}

func (r *FakeAppRepo) SetSecret(_ context.Context, id, secret string) error {
	return r.update(id, func(app *apps.Application) {
		app.Secret = secret
	})
}

func (r *FakeAppRepo) SetDeleted(_ context.Context, id string) error {
	return r.update(id, func(app *apps.Application) {
		app.Deleted = true
	})
}

func (r *FakeAppRepo) update(id string, fn func(*apps.Application)) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return apps.ErrNotFound
	}
	fn(app)
	return nil
}
