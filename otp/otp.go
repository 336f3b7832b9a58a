package otp

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Window is how long an issued code stays valid.
const Window = 5 * time.Minute

// ErrInvalidOTP covers unknown, expired and already used codes alike.
var ErrInvalidOTP = errors.New("invalid or expired one-time password")

// Store persists one-time passwords. Consume must find and delete the code in
// a single atomic statement so that a code can never be used twice.
type Store interface {
	Issue(ctx context.Context, account, code string, issued time.Time) error
	Consume(ctx context.Context, account, code string, issuedAfter time.Time) (bool, error)
	DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Normalize accepts a six digit code, optionally typed with one space
// ("123 456"), and returns the bare digits.
func Normalize(code string) (string, bool) {
	code = strings.Replace(strings.TrimSpace(code), " ", "", 1)
	if len(code) != 6 {
		return "", false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return code, true
}
