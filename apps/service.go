package apps

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotOwner           = errors.New("application not owned by caller")
	ErrInvalidRedirectURI = errors.New("redirect uri must be an absolute http(s) url")
	ErrInvalidName        = errors.New("application name is required")
)

// SecretGenerator creates application secrets.
type SecretGenerator interface {
	GenerateSecret() (string, error)
}

// OTPVerifier confirms destructive actions with a one-time password.
type OTPVerifier interface {
	Verify(ctx context.Context, account, code string) error
}

const maxRedirectURIs = 10

// Service holds the owner facing operations that influence grant validity:
// creation, redirect URIs, secret rotation and deletion.
type Service struct {
	registry Registry
	secrets  SecretGenerator
	otps     OTPVerifier
}

func NewService(registry Registry, secrets SecretGenerator, otps OTPVerifier) (*Service, error) {
	if registry == nil {
		return nil, errors.New("[NewService] registry is required")
	}
	if secrets == nil {
		return nil, errors.New("[NewService] secret generator is required")
	}
	if otps == nil {
		return nil, errors.New("[NewService] otp verifier is required")
	}
	return &Service{registry: registry, secrets: secrets, otps: otps}, nil
}

// NewApplication describes an application to create.
type NewApplication struct {
	Name         string   `json:"name"`
	Website      string   `json:"website"`
	Description  string   `json:"description"`
	RedirectURIs []string `json:"redirect_uris"`
}

// Create registers an application owned by owner with a fresh secret.
func (s *Service) Create(ctx context.Context, owner string, req NewApplication) (*Application, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 128 {
		return nil, ErrInvalidName
	}
	uris, err := ValidateRedirectURIs(req.RedirectURIs)
	if err != nil {
		return nil, err
	}
	secret, err := s.secrets.GenerateSecret()
	if err != nil {
		return nil, errors.Wrap(err, "[Create] generating secret")
	}
	app, err := s.registry.Create(ctx, &Application{
		Owner:        owner,
		Name:         name,
		Website:      strings.TrimSpace(req.Website),
		Description:  strings.TrimSpace(req.Description),
		Secret:       secret,
		RedirectURIs: uris,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Create] storing application")
	}
	return app, nil
}

// List returns the caller's applications that are not deleted.
func (s *Service) List(ctx context.Context, owner string) ([]*Application, error) {
	all, err := s.registry.ListByOwner(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "[List]")
	}
	live := make([]*Application, 0, len(all))
	for _, app := range all {
		if !app.Deleted {
			live = append(live, app)
		}
	}
	return live, nil
}

// UpdateRedirectURIs replaces the registered redirect URIs.
func (s *Service) UpdateRedirectURIs(ctx context.Context, owner, appID string, uris []string) error {
	if _, err := s.owned(ctx, owner, appID); err != nil {
		return err
	}
	valid, err := ValidateRedirectURIs(uris)
	if err != nil {
		return err
	}
	return errors.Wrap(s.registry.SetRedirectURIs(ctx, appID, valid), "[UpdateRedirectURIs]")
}

// RegenerateSecret rotates the secret. The previous secret stops working
// immediately, including for exchanges already in flight.
func (s *Service) RegenerateSecret(ctx context.Context, owner, appID string) (string, error) {
	if _, err := s.owned(ctx, owner, appID); err != nil {
		return "", err
	}
	secret, err := s.secrets.GenerateSecret()
	if err != nil {
		return "", errors.Wrap(err, "[RegenerateSecret] generating secret")
	}
	if err := s.registry.SetSecret(ctx, appID, secret); err != nil {
		return "", errors.Wrap(err, "[RegenerateSecret] storing secret")
	}
	return secret, nil
}

// Delete marks the application deleted after the owner confirms with an OTP.
func (s *Service) Delete(ctx context.Context, owner, appID, code string) error {
	if _, err := s.owned(ctx, owner, appID); err != nil {
		return err
	}
	if err := s.otps.Verify(ctx, owner, code); err != nil {
		return err
	}
	return errors.Wrap(s.registry.SetDeleted(ctx, appID), "[Delete]")
}

func (s *Service) owned(ctx context.Context, owner, appID string) (*Application, error) {
	app, err := s.registry.Get(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.Deleted {
		return nil, ErrNotFound
	}
	if app.Owner != owner {
		return nil, ErrNotOwner
	}
	return app, nil
}

// ValidateRedirectURIs trims, deduplicates and checks that every uri is an
// absolute http or https URL.
func ValidateRedirectURIs(uris []string) ([]string, error) {
	seen := make(map[string]struct{}, len(uris))
	out := make([]string, 0, len(uris))
	for _, raw := range uris {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") || u.Fragment != "" {
			return nil, errors.Wrapf(ErrInvalidRedirectURI, "%q", raw)
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		out = append(out, raw)
	}
	if len(out) > maxRedirectURIs {
		return nil, errors.Wrapf(ErrInvalidRedirectURI, "at most %d redirect uris", maxRedirectURIs)
	}
	return out, nil
}
