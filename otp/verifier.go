package otp

import (
	"context"
	"fmt"
	"time"
)

// CodeGenerator produces fresh codes for Issue.
type CodeGenerator interface {
	GenerateOTP() (string, error)
}

// Verifier checks and consumes one-time passwords bound to a Minecraft
// account id.
type Verifier struct {
	store     Store
	generator CodeGenerator
	nowTime   func() time.Time
}

type VerifierOption func(*Verifier)

// WithNowTime sets the clock (primarily for testing)
func WithNowTime(nowFunc func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.nowTime = nowFunc
	}
}

// WithGenerator enables Issue.
func WithGenerator(g CodeGenerator) VerifierOption {
	return func(v *Verifier) {
		v.generator = g
	}
}

func NewVerifier(store Store, options ...VerifierOption) *Verifier {
	v := &Verifier{
		store:   store,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Verify consumes code for account. It succeeds at most once per issued code.
func (v *Verifier) Verify(ctx context.Context, account, code string) error {
	normalized, ok := Normalize(code)
	if !ok || account == "" {
		return ErrInvalidOTP
	}
	consumed, err := v.store.Consume(ctx, account, normalized, v.nowTime().Add(-Window))
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		return ErrInvalidOTP
	}
	return nil
}

// Issue stores and returns a new code for account.
func (v *Verifier) Issue(ctx context.Context, account string) (string, error) {
	if v.generator == nil {
		return "", fmt.Errorf("issue otp: no generator configured")
	}
	code, err := v.generator.GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("issue otp: %w", err)
	}
	if err := v.store.Issue(ctx, account, code, v.nowTime()); err != nil {
		return "", fmt.Errorf("issue otp: %w", err)
	}
	return code, nil
}

// Purge removes codes issued before cutoff.
func (v *Verifier) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	return v.store.DeleteIssuedBefore(ctx, cutoff)
}
