package fakeotprepo

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/mc-auth/otp"
)

var _ otp.Store = (*FakeOTPRepo)(nil)

type entry struct {
	account string
	code    string
	issued  time.Time
}

type FakeOTPRepo struct {
	codes []entry
	lock  sync.Mutex
}

func NewFakeOTPRepo() *FakeOTPRepo {
	return &FakeOTPRepo{}
}

func (r *FakeOTPRepo) Issue(_ context.Context, account, code string, issued time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.codes = append(r.codes, entry{account: account, code: code, issued: issued})
	return nil
}

func (r *FakeOTPRepo) Consume(_ context.Context, account, code string, issuedAfter time.Time) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for i, e := range r.codes {
		if e.account == account && e.code == code && !e.issued.Before(issuedAfter) {
			r.codes = append(r.codes[:i], r.codes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *FakeOTPRepo) DeleteIssuedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	kept := r.codes[:0]
	var deleted int64
	for _, e := range r.codes {
		if e.issued.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.codes = kept
	return deleted, nil
}

// Len returns the number of stored codes.
func (r *FakeOTPRepo) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.codes)
}
