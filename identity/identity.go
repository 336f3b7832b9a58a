package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrProfileNotFound is returned when no Minecraft profile matches.
var ErrProfileNotFound = errors.New("minecraft profile not found")

// Property is a signed profile property such as "textures".
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// Profile is the public Minecraft profile of an account.
type Profile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties,omitempty"`
}

// Lookup resolves Minecraft profiles.
type Lookup interface {
	ProfileByID(ctx context.Context, id string) (*Profile, error)
	ProfileByName(ctx context.Context, name string) (*Profile, error)
}

// NormalizeID removes dashes and lowercases a profile UUID.
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}

// ValidUsername reports whether name could be a Minecraft username.
func ValidUsername(name string) bool {
	if len(name) == 0 || len(name) > 16 {
		return false
	}
	for _, r := range name {
		if !(r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}
