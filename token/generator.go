package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind distinguishes the credentials produced by a Generator.
type Kind int

const (
	Access Kind = iota
	Exchange
	Secret
	OTP
)

func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case Exchange:
		return "exchange"
	case Secret:
		return "secret"
	case OTP:
		return "otp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"

	// BodyLength is the number of random characters in access, exchange and
	// secret tokens. 32 base62 characters carry about 190 bits.
	BodyLength = 32
	// OTPLength is the number of digits in a one-time password.
	OTPLength = 6
	// MaxAttempts bounds regeneration after a storage uniqueness collision.
	MaxAttempts = 3

	// largest multiple of len(alphabet) that fits in a byte
	alphabetCutoff = 248
	digitsCutoff   = 250
)

// ErrGenerationFailed is returned when random bytes cannot be read or when a
// caller exhausts MaxAttempts against the store's uniqueness constraint.
var ErrGenerationFailed = errors.New("token generation failed")

// Generator produces random, URL-safe token strings.
type Generator struct {
	random   io.Reader
	prefixes map[Kind]string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithPrefix namespaces every token of kind with prefix, e.g. "mcauth_A_".
func WithPrefix(kind Kind, prefix string) GeneratorOption {
	return func(g *Generator) {
		g.prefixes[kind] = prefix
	}
}

// WithRandom replaces crypto/rand as the entropy source (tests only).
func WithRandom(r io.Reader) GeneratorOption {
	return func(g *Generator) {
		g.random = r
	}
}

// NewGenerator returns a Generator reading from crypto/rand.
func NewGenerator(options ...GeneratorOption) *Generator {
	g := &Generator{
		random:   rand.Reader,
		prefixes: make(map[Kind]string),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Generate returns a new token of the given kind.
func (g *Generator) Generate(kind Kind) (string, error) {
	if kind == OTP {
		code, err := g.randomString(digits, OTPLength, digitsCutoff)
		if err != nil {
			return "", err
		}
		return code, nil
	}

	body, err := g.randomString(alphabet, BodyLength, alphabetCutoff)
	if err != nil {
		return "", err
	}
	return g.prefixes[kind] + body, nil
}

// CheckSyntax reports whether s could have been produced by Generate(kind).
// It lets callers reject garbage before a storage lookup.
func (g *Generator) CheckSyntax(kind Kind, s string) bool {
	if kind == OTP {
		return len(s) == OTPLength && onlyFrom(s, digits)
	}
	prefix := g.prefixes[kind]
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	body := s[len(prefix):]
	return len(body) == BodyLength && onlyFrom(body, alphabet)
}

func (g *Generator) randomString(chars string, length int, cutoff byte) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		for _, b := range buf {
			// rejection sampling keeps the distribution uniform
			if b >= cutoff {
				continue
			}
			out = append(out, chars[int(b)%len(chars)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

func onlyFrom(s, chars string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(chars, s[i]) < 0 {
			return false
		}
	}
	return true
}

// GenerateOTP returns a six digit one-time password.
func (g *Generator) GenerateOTP() (string, error) {
	return g.Generate(OTP)
}

// GenerateSecret returns a new application secret.
func (g *Generator) GenerateSecret() (string, error) {
	return g.Generate(Secret)
}
