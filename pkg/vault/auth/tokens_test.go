package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localvault/localvault/pkg/vault"
	"github.com/localvault/localvault/pkg/vault/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("signing-secret", "fp-secret", 0, 0)
	user := &vault.User{ID: 42, PhoneNumber: "919876543210"}

	pair, err := issuer.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := issuer.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), access.UserID)
	assert.Equal(t, auth.PurposeAccess, access.Purpose)
	assert.Equal(t, issuer.Fingerprint("919876543210"), access.PhoneFingerprint)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultAccessTTL), access.ExpiresAt, time.Minute)

	refresh, err := issuer.Decode(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, auth.PurposeRefresh, refresh.Purpose)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultRefreshTTL), refresh.ExpiresAt, time.Minute)
}

func TestDecodeExpiredToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("signing-secret", "fp-secret", time.Millisecond, time.Millisecond)
	user := &vault.User{ID: 1, PhoneNumber: "919876543210"}

	pair, err := issuer.Issue(user)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = issuer.Decode(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	issuer := auth.NewTokenIssuer("signing-secret", "fp-secret", 0, 0)
	forger := auth.NewTokenIssuer("other-secret", "fp-secret", 0, 0)
	user := &vault.User{ID: 1, PhoneNumber: "919876543210"}

	pair, err := forger.Issue(user)
	require.NoError(t, err)

	_, err = issuer.Decode(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	issuer := auth.NewTokenIssuer("signing-secret", "fp-secret", 0, 0)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Decode(token)
		assert.Error(t, err, token)
	}
}

func TestFingerprint(t *testing.T) {
	issuer := auth.NewTokenIssuer("signing-secret", "fp-secret", 0, 0)

	a := issuer.Fingerprint("919876543210")
	b := issuer.Fingerprint("919876543210")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex-encoded sha256
	assert.NotEqual(t, a, issuer.Fingerprint("918765432109"))

	other := auth.NewTokenIssuer("signing-secret", "different-fp-secret", 0, 0)
	assert.NotEqual(t, a, other.Fingerprint("919876543210"))
}
