package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwkFor(kid string, pub *rsa.PublicKey) JSONWebKey {
	return JSONWebKey{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

func newKeyServer(t *testing.T, keys ...JSONWebKey) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_ = json.NewEncoder(w).Encode(JWKS{Keys: keys})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestKeySet_GetKeyCachesDocument(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv, hits := newKeyServer(t, jwkFor("k1", &priv.PublicKey))

	ks := NewKeySet(srv.URL)
	_, err = ks.GetKey(context.Background(), "k1")
	require.NoError(t, err)
	_, err = ks.GetKey(context.Background(), "k1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestGoogleProvider_VerifyIDToken(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv, _ := newKeyServer(t, jwkFor("k1", &priv.PublicKey))

	p := NewGoogleProvider(GoogleConfig{ClientID: "client-123"}, NewKeySet(srv.URL))

	sign := func(claims googleClaims) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		tok.Header["kid"] = "k1"
		raw, err := tok.SignedString(priv)
		require.NoError(t, err)
		return raw
	}
	base := jwt.RegisteredClaims{
		Issuer:    "https://accounts.google.com",
		Subject:   "google-sub",
		Audience:  jwt.ClaimStrings{"client-123"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	t.Run("valid", func(t *testing.T) {
		id, err := p.VerifyIDToken(sign(googleClaims{Email: "a@x.edu", EmailVerified: true, Name: "A", RegisteredClaims: base}))
		require.NoError(t, err)
		assert.Equal(t, "a@x.edu", id.Email)
		assert.Equal(t, "google-sub", id.Subject)
	})

	t.Run("unverified email", func(t *testing.T) {
		_, err := p.VerifyIDToken(sign(googleClaims{Email: "a@x.edu", RegisteredClaims: base}))
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := base
		claims.Audience = jwt.ClaimStrings{"someone-else"}
		_, err := p.VerifyIDToken(sign(googleClaims{Email: "a@x.edu", EmailVerified: true, RegisteredClaims: claims}))
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := base
		claims.Issuer = "https://evil.example"
		_, err := p.VerifyIDToken(sign(googleClaims{Email: "a@x.edu", EmailVerified: true, RegisteredClaims: claims}))
		assert.Error(t, err)
	})
}
