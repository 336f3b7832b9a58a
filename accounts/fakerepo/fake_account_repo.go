package fakeaccountrepo

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/mc-auth/accounts"
)

var _ accounts.Repo = (*FakeAccountRepo)(nil)

type FakeAccountRepo struct {
	accounts map[string]*accounts.Account
	lock     sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*accounts.Account),
	}
}

func (r *FakeAccountRepo) Upsert(_ context.Context, id, name string, lastLogin time.Time) (*accounts.Account, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		acc = &accounts.Account{ID: id}
		r.accounts[id] = acc
	}
	acc.Name = name
	acc.LastLogin = lastLogin
	clone := *acc
	return &clone, nil
}

func (r *FakeAccountRepo) Get(_ context.Context, id string) (*accounts.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	acc, ok := r.accounts[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	clone := *acc
	return &clone, nil
}
