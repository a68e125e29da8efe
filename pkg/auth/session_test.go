package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_IssueAndParse(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)

	raw, err := m.Issue("user-1", "a@x.edu")
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@x.edu", claims.Email)
}

func TestSessionManager_RejectsForeignSecret(t *testing.T) {
	raw, err := NewSessionManager("other", time.Hour).Issue("user-1", "a@x.edu")
	require.NoError(t, err)

	_, err = NewSessionManager("test-secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionManager_RejectsExpired(t *testing.T) {
	m := NewSessionManager("test-secret", -time.Minute)
	raw, err := m.Issue("user-1", "a@x.edu")
	require.NoError(t, err)

	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionManager_RejectsNoneAlg(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "alumni-talent-platform",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSessionManager("test-secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
