package fakelookup

import (
	"context"
	"strings"
	"sync"

	"github.com/jrsteele09/mc-auth/identity"
)

var _ identity.Lookup = (*FakeLookup)(nil)

type FakeLookup struct {
	profiles map[string]*identity.Profile
	err      error
	lock     sync.RWMutex
}

func NewFakeLookup(profiles ...*identity.Profile) *FakeLookup {
	f := &FakeLookup{profiles: make(map[string]*identity.Profile)}
	for _, p := range profiles {
		f.profiles[identity.NormalizeID(p.ID)] = p
	}
	return f
}

// FailWith makes every lookup return err until called again with nil.
func (f *FakeLookup) FailWith(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.err = err
}

func (f *FakeLookup) ProfileByID(_ context.Context, id string) (*identity.Profile, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[identity.NormalizeID(id)]
	if !ok {
		return nil, identity.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *FakeLookup) ProfileByName(_ context.Context, name string) (*identity.Profile, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.profiles {
		if strings.EqualFold(p.Name, name) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, identity.ErrProfileNotFound
}
