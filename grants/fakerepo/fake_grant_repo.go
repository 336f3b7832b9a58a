package fakegrantrepo

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/mc-auth/grants"
)

var _ grants.Store = (*FakeGrantRepo)(nil)

// FakeGrantRepo is an in-memory grants.Store. A single mutex stands in for
// the row level atomicity of the SQL implementation.
type FakeGrantRepo struct {
	grants map[string]*grants.Grant
	nextID int
	lock   sync.Mutex
}

func NewFakeGrantRepo() *FakeGrantRepo {
	return &FakeGrantRepo{
		grants: make(map[string]*grants.Grant),
	}
}

func (r *FakeGrantRepo) Create(_ context.Context, g grants.NewGrant) (*grants.Grant, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextID++
	grant := &grants.Grant{
		ID:           strconv.Itoa(r.nextID),
		AppID:        g.AppID,
		UserID:       g.UserID,
		RedirectURI:  g.RedirectURI,
		ResponseType: g.ResponseType,
		Scopes:       append([]string(nil), g.Scopes...),
		State:        g.State,
		Issued:       g.Issued,
	}
	r.grants[grant.ID] = grant
	return clone(grant), nil
}

func (r *FakeGrantRepo) Get(_ context.Context, id string) (*grants.Grant, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	g, ok := r.grants[id]
	if !ok {
		return nil, grants.ErrNotFound
	}
	return clone(g), nil
}

func (r *FakeGrantRepo) SetResultIfUnset(_ context.Context, id string, result grants.Result, issuedAfter time.Time) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	g, ok := r.grants[id]
	if !ok || g.Result != grants.Pending || !g.Issued.After(issuedAfter) {
		return false, nil
	}
	g.Result = result
	return true, nil
}

func (r *FakeGrantRepo) SetExchangeTokenIfUnset(_ context.Context, id, token string) (*string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	g, ok := r.grants[id]
	if !ok || g.ExchangeToken != nil {
		return nil, nil
	}
	if r.tokenInUse(token) {
		return nil, grants.ErrTokenCollision
	}
	g.ExchangeToken = &token
	return &token, nil
}

func (r *FakeGrantRepo) SetAccessTokenIfUnset(_ context.Context, id, token string, issuedAt time.Time) (*string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	g, ok := r.grants[id]
	if !ok || g.AccessToken != nil {
		return nil, nil
	}
	if r.tokenInUse(token) {
		return nil, grants.ErrTokenCollision
	}
	g.AccessToken = &token
	g.AccessTokenIssued = &issuedAt
	return &token, nil
}

func (r *FakeGrantRepo) ConsumeExchangeToken(_ context.Context, q grants.ExchangeQuery) (*grants.Grant, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, g := range r.grants {
		if g.AppID != q.AppID || g.ExchangeToken == nil || *g.ExchangeToken != q.Code {
			continue
		}
		if !strings.EqualFold(g.RedirectURI, q.RedirectURI) || g.Result != grants.Granted {
			continue
		}
		if g.AccessToken != nil || g.Issued.Before(q.IssuedAfter) {
			continue
		}
		if r.tokenInUse(q.AccessToken) {
			return nil, grants.ErrTokenCollision
		}
		token, at := q.AccessToken, q.IssuedAt
		g.AccessToken = &token
		g.AccessTokenIssued = &at
		return clone(g), nil
	}
	return nil, nil
}

func (r *FakeGrantRepo) GetByAccessToken(_ context.Context, token string) (*grants.Grant, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, g := range r.grants {
		if g.AccessToken != nil && *g.AccessToken == token {
			return clone(g), nil
		}
	}
	return nil, grants.ErrNotFound
}

func (r *FakeGrantRepo) Revoke(_ context.Context, id string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	g, ok := r.grants[id]
	if !ok || g.Result == grants.Revoked {
		return false, nil
	}
	g.Result = grants.Revoked
	return true, nil
}

func (r *FakeGrantRepo) DeleteIssuedBefore(_ context.Context, cutoff, tokenCutoff time.Time) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var deleted int64
	for id, g := range r.grants {
		if !g.Issued.Before(cutoff) {
			continue
		}
		if g.AccessTokenIssued != nil && !g.AccessTokenIssued.Before(tokenCutoff) {
			continue
		}
		delete(r.grants, id)
		deleted++
	}
	return deleted, nil
}

// Backdate moves a grant's issued timestamp, for window tests.
func (r *FakeGrantRepo) Backdate(id string, issued time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if g, ok := r.grants[id]; ok {
		g.Issued = issued
	}
}

func (r *FakeGrantRepo) tokenInUse(token string) bool {
	for _, g := range r.grants {
		if (g.AccessToken != nil && *g.AccessToken == token) || (g.ExchangeToken != nil && *g.ExchangeToken == token) {
			return true
		}
	}
	return false
}

func clone(g *grants.Grant) *grants.Grant {
	c := *g
	c.Scopes = append([]string(nil), g.Scopes...)
	return &c
}
