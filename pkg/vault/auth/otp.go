package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"
)

// CodeVerifier issues and checks one-time verification codes. Verification
// always happens server-side; the client-supplied code is never trusted.
type CodeVerifier interface {
	// Issue triggers out-of-band delivery of a code for the phone number.
	Issue(ctx context.Context, phoneNumber string) error

	// Verify checks a submitted code. A false return with nil error means
	// the code simply did not match.
	Verify(ctx context.Context, phoneNumber, code string) (bool, error)
}

// Sender delivers a verification code out of band (SMS).
type Sender interface {
	SendCode(ctx context.Context, phoneNumber, code string) error
}

// LogSender logs codes instead of sending them. Development only.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendCode(ctx context.Context, phoneNumber, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("verification code issued", "phone_number", phoneNumber, "code", code)
	return nil
}

// StaticVerifier accepts a single deployment-wide code. The code is
// communicated out of band, so Issue is a no-op.
type StaticVerifier struct {
	Code string
}

func (v StaticVerifier) Issue(ctx context.Context, phoneNumber string) error {
	return nil
}

func (v StaticVerifier) Verify(ctx context.Context, phoneNumber, code string) (bool, error) {
	if v.Code == "" {
		return false, errors.New("deployment code not configured")
	}
	return subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) == 1, nil
}

// CodeStore holds issued codes and attempt counters with expiry. Injected
// so deployments can back it with Redis or keep it in process.
type CodeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns ("", nil) when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments a counter, creating it with the ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// IssuedVerifierConfig tunes per-identifier code issuance.
type IssuedVerifierConfig struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
}

// IssuedVerifier generates a fresh random code per phone number, holds it
// in the code store with a TTL and attempt cap, and delivers it via the
// sender.
type IssuedVerifier struct {
	store  CodeStore
	sender Sender
	config IssuedVerifierConfig
}

// NewIssuedVerifier creates a store-backed code verifier.
func NewIssuedVerifier(store CodeStore, sender Sender, config IssuedVerifierConfig) *IssuedVerifier {
	if config.Length <= 0 {
		config.Length = 6
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	return &IssuedVerifier{store: store, sender: sender, config: config}
}

func (v *IssuedVerifier) Issue(ctx context.Context, phoneNumber string) error {
	code, err := v.generateCode()
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	if err := v.store.Set(ctx, codeKey(phoneNumber), code, v.config.TTL); err != nil {
		return fmt.Errorf("storing code: %w", err)
	}
	if err := v.store.Delete(ctx, attemptsKey(phoneNumber)); err != nil {
		return fmt.Errorf("resetting attempts: %w", err)
	}

	if err := v.sender.SendCode(ctx, phoneNumber, code); err != nil {
		// Don't leave a deliverable code behind if delivery failed.
		_ = v.store.Delete(ctx, codeKey(phoneNumber))
		return fmt.Errorf("sending code: %w", err)
	}
	return nil
}

func (v *IssuedVerifier) Verify(ctx context.Context, phoneNumber, code string) (bool, error) {
	attempts, err := v.store.Incr(ctx, attemptsKey(phoneNumber), v.config.TTL)
	if err != nil {
		return false, fmt.Errorf("counting attempts: %w", err)
	}
	if attempts > int64(v.config.MaxAttempts) {
		_ = v.store.Delete(ctx, codeKey(phoneNumber), attemptsKey(phoneNumber))
		return false, ErrMaxAttempts
	}

	stored, err := v.store.Get(ctx, codeKey(phoneNumber))
	if err != nil {
		return false, fmt.Errorf("loading code: %w", err)
	}
	if stored == "" {
		return false, ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}

	// Single use.
	_ = v.store.Delete(ctx, codeKey(phoneNumber), attemptsKey(phoneNumber))
	return true, nil
}

func (v *IssuedVerifier) generateCode() (string, error) {
	max := big.NewInt(10)
	code := make([]byte, v.config.Length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

func codeKey(phoneNumber string) string {
	return "otp:code:" + phoneNumber
}

func attemptsKey(phoneNumber string) string {
	return "otp:att:" + phoneNumber
}
