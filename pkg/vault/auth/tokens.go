package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth"

	"github.com/localvault/localvault/pkg/vault"
)

// TokenPurpose distinguishes access tokens from refresh tokens.
type TokenPurpose string

// Token purpose constants (typed).
const (
	PurposeAccess  TokenPurpose = "access"
	PurposeRefresh TokenPurpose = "refresh"
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 30 * 24 * time.Hour
	DefaultRefreshTTL = 60 * 24 * time.Hour
)

// TokenPair is the credential set returned on successful verification.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionClaims is the decoded, verified claim set of a session token.
// Tokens carry a keyed hash of the phone number, never the number itself.
type SessionClaims struct {
	UserID           int64
	PhoneFingerprint string
	Purpose          TokenPurpose
	ExpiresAt        time.Time
}

// TokenIssuer mints and verifies HS256 session tokens. Both secrets are
// read-only after construction and safe to share across requests.
type TokenIssuer struct {
	ja             *jwtauth.JWTAuth
	fingerprintKey []byte
	accessTTL      time.Duration
	refreshTTL     time.Duration
}

// NewTokenIssuer creates a token issuer. Zero TTLs fall back to the
// defaults (30d access, 60d refresh).
func NewTokenIssuer(signingSecret, fingerprintSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenIssuer{
		ja:             jwtauth.New("HS256", []byte(signingSecret), nil),
		fingerprintKey: []byte(fingerprintSecret),
		accessTTL:      accessTTL,
		refreshTTL:     refreshTTL,
	}
}

// Fingerprint returns the keyed hash (HMAC-SHA256) of a phone number.
// Deterministic per server secret, so stored numbers can be re-checked
// against token claims without the token ever carrying the raw number.
func (t *TokenIssuer) Fingerprint(phoneNumber string) string {
	mac := hmac.New(sha256.New, t.fingerprintKey)
	mac.Write([]byte(phoneNumber))
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue mints an access/refresh token pair bound to the user.
func (t *TokenIssuer) Issue(user *vault.User) (*TokenPair, error) {
	access, err := t.mint(user, PurposeAccess, t.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}
	refresh, err := t.mint(user, PurposeRefresh, t.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("minting refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) mint(user *vault.User, purpose TokenPurpose, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"user_id":  user.ID,
		"phone_fp": t.Fingerprint(user.PhoneNumber),
		"purpose":  string(purpose),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, tokenString, err := t.ja.Encode(claims)
	return tokenString, err
}

// Decode verifies signature and expiry and extracts the session claims.
// Any malformed, expired or signature-invalid token yields ErrTokenExpired
// or ErrUnauthorized; raw parser detail never escapes.
func (t *TokenIssuer) Decode(tokenString string) (*SessionClaims, error) {
	token, err := jwtauth.VerifyToken(t.ja, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrUnauthorized
	}

	claims := &SessionClaims{ExpiresAt: token.Expiration()}

	rawID, ok := token.Get("user_id")
	if !ok {
		return nil, ErrUnauthorized
	}
	claims.UserID, ok = asInt64(rawID)
	if !ok || claims.UserID <= 0 {
		return nil, ErrUnauthorized
	}

	if fp, ok := token.Get("phone_fp"); ok {
		claims.PhoneFingerprint, _ = fp.(string)
	}
	if claims.PhoneFingerprint == "" {
		return nil, ErrUnauthorized
	}

	if purpose, ok := token.Get("purpose"); ok {
		s, _ := purpose.(string)
		claims.Purpose = TokenPurpose(s)
	}
	if claims.Purpose != PurposeAccess && claims.Purpose != PurposeRefresh {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

// asInt64 copes with the numeric types a JWT claim round-trips through.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
