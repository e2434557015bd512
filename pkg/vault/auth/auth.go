// Package auth implements the identity and session component: it turns a
// phone number plus an externally verified one-time code into a durable
// user and a bearer token pair, and turns a bearer token back into a user
// on every subsequent request. Tokens are stateless; signature and expiry
// are the only revocation mechanism.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/localvault/localvault/pkg/vault"
)

// Service is the identity and session component.
type Service struct {
	repository vault.Repository
	codes      CodeVerifier
	tokens     *TokenIssuer
	logger     *slog.Logger
}

// NewService creates an auth service.
func NewService(repository vault.Repository, codes CodeVerifier, tokens *TokenIssuer, logger *slog.Logger) (*Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if codes == nil {
		return nil, fmt.Errorf("code verifier is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, codes: codes, tokens: tokens, logger: logger}, nil
}

// RequestVerification triggers out-of-band issuance of a one-time code for
// the phone number.
func (s *Service) RequestVerification(ctx context.Context, phoneNumber string) error {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}

	if err := s.codes.Issue(ctx, phone); err != nil {
		return fmt.Errorf("issuing verification code: %w", err)
	}

	s.logger.Info("verification requested", "phone_fp", s.tokens.Fingerprint(phone))
	return nil
}

// ConfirmVerification validates the code, upserts the user (idempotent:
// re-verifying an existing user only re-asserts the verified/active flags)
// and issues a token pair.
func (s *Service) ConfirmVerification(ctx context.Context, phoneNumber, code string) (*TokenPair, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	ok, err := s.codes.Verify(ctx, phone, code)
	if err != nil {
		if errors.Is(err, ErrCodeExpired) || errors.Is(err, ErrMaxAttempts) {
			return nil, err
		}
		return nil, fmt.Errorf("verifying code: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	user, err := s.repository.UpsertVerifiedUser(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("phone verified", "user_id", user.ID)
	return pair, nil
}

// RefreshSession exchanges a valid refresh token for a fresh token pair.
// Access tokens are rejected here.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error) {
	user, err := s.resolve(ctx, refreshToken, PurposeRefresh)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(user)
}

// ResolveSession verifies an access token and loads its user. Fails with
// ErrUnauthorized when the user is missing or when the fingerprint of the
// stored phone number no longer matches the token (stale token after a
// phone-number change).
func (s *Service) ResolveSession(ctx context.Context, token string) (*vault.User, error) {
	return s.resolve(ctx, token, PurposeAccess)
}

func (s *Service) resolve(ctx context.Context, token string, purpose TokenPurpose) (*vault.User, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrUnauthorized
	}

	user, err := s.repository.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, vault.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.Active {
		return nil, ErrUnauthorized
	}
	if s.tokens.Fingerprint(user.PhoneNumber) != claims.PhoneFingerprint {
		s.logger.Warn("phone fingerprint mismatch", "user_id", user.ID)
		return nil, ErrUnauthorized
	}

	return user, nil
}
