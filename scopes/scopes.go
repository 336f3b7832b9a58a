package scopes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Profile grants read access to the Minecraft profile of the account.
const Profile = "profile"

// ErrInvalidScope matches every InvalidScopeError via errors.Is.
var ErrInvalidScope = errors.New("invalid scope")

// InvalidScopeError names the first requested scope that is not whitelisted.
type InvalidScopeError struct {
	Scope string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope %q", e.Scope)
}

func (e *InvalidScopeError) Is(target error) bool {
	return target == ErrInvalidScope
}

// Validator checks requested scopes against a fixed whitelist.
type Validator struct {
	allowed map[string]struct{}
}

// NewValidator returns a Validator accepting the given scopes. With no
// arguments only "profile" is accepted.
func NewValidator(allowed ...string) *Validator {
	if len(allowed) == 0 {
		allowed = []string{Profile}
	}
	v := &Validator{allowed: make(map[string]struct{}, len(allowed))}
	for _, s := range allowed {
		v.allowed[strings.ToLower(s)] = struct{}{}
	}
	return v
}

// Validate canonicalises the requested scopes (lowercase, deduplicated, sorted)
// and rejects the whole request if any of them is unknown.
func (v *Validator) Validate(requested []string) ([]string, error) {
	seen := make(map[string]struct{}, len(requested))
	canonical := make([]string, 0, len(requested))
	for _, raw := range requested {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		if _, ok := v.allowed[s]; !ok {
			return nil, &InvalidScopeError{Scope: raw}
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		canonical = append(canonical, s)
	}
	sort.Strings(canonical)
	return canonical, nil
}

// Parse splits a space separated scope parameter. Commas are accepted as
// separators too since some clients send them.
func Parse(scope string) []string {
	return strings.FieldsFunc(scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

// Join renders canonical scopes the way they appear in token responses.
func Join(scopes []string) string {
	return strings.Join(scopes, " ")
}

// Contains reports whether scope is present in scopes.
func Contains(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
