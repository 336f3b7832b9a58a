package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/mc-auth/identity"
)

const (
	DefaultAPIURL     = "https://api.mojang.com"
	DefaultSessionURL = "https://sessionserver.mojang.com"
	defaultTimeout    = 5 * time.Second
	maxBodyBytes      = 1 << 20
)

var _ identity.Lookup = (*Client)(nil)

// Client resolves profiles against the Mojang HTTP APIs.
type Client struct {
	httpClient *http.Client
	apiURL     string
	sessionURL string
	userAgent  string
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURLs points the client at alternative API and session servers.
func WithBaseURLs(apiURL, sessionURL string) ClientOption {
	return func(cl *Client) {
		if apiURL != "" {
			cl.apiURL = strings.TrimRight(apiURL, "/")
		}
		if sessionURL != "" {
			cl.sessionURL = strings.TrimRight(sessionURL, "/")
		}
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.httpClient.Timeout = d
	}
}

func NewClient(options ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiURL:     DefaultAPIURL,
		sessionURL: DefaultSessionURL,
		userAgent:  "mc-auth",
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// ProfileByID fetches the full profile, including signed textures.
func (c *Client) ProfileByID(ctx context.Context, id string) (*identity.Profile, error) {
	id = identity.NormalizeID(id)
	if id == "" {
		return nil, identity.ErrProfileNotFound
	}
	endpoint := fmt.Sprintf("%s/session/minecraft/profile/%s?unsigned=false", c.sessionURL, url.PathEscape(id))
	return c.fetch(ctx, endpoint)
}

// ProfileByName resolves a username to id and name.
func (c *Client) ProfileByName(ctx context.Context, name string) (*identity.Profile, error) {
	if !identity.ValidUsername(name) {
		return nil, identity.ErrProfileNotFound
	}
	endpoint := fmt.Sprintf("%s/users/profiles/minecraft/%s", c.apiURL, url.PathEscape(name))
	return c.fetch(ctx, endpoint)
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*identity.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mojang: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mojang: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, identity.ErrProfileNotFound
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("mojang: unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	var profile identity.Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("mojang: decode profile: %w", err)
	}
	if profile.ID == "" {
		return nil, identity.ErrProfileNotFound
	}
	profile.ID = identity.NormalizeID(profile.ID)
	return &profile, nil
}
