package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"alumni-talent-platform/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenCookieName is the readable cookie holding the token
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenHeaderName is the header that must echo the cookie on writes
	CSRFTokenHeaderName = "X-CSRF-Token"
	// 32 bytes = 64 hex chars
	csrfTokenBytes  = 32
	csrfTokenExpiry = 24 * time.Hour
)

// generateCSRFToken returns a random hex token from crypto/rand
func generateCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CSRFMiddleware implements the double-submit cookie pattern.
//
// How it works:
//  1. Any request without a csrf_token cookie gets a fresh one.
//  2. A POST, PUT, PATCH or DELETE that carries the session cookie must send
//     X-CSRF-Token with the same value as the csrf_token cookie.
//
// The frontend reads csrf_token and copies it into the header on every
// mutating request. A page on another origin can make the browser send both
// cookies but cannot read them, so it cannot forge the header.
//
// Requests without the session cookie are not checked. Bearer clients send
// no ambient credentials, and the Google sign-in routes run before any
// session exists; those are covered by the auth rate limit instead.
func CSRFMiddleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			token, err := generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			// HttpOnly is off so the frontend can read it
			c.SetCookie(CSRFTokenCookieName, token, int(csrfTokenExpiry.Seconds()), "/", "", secureCookie, false)
			csrfCookie = token
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if _, err := c.Cookie(SessionCookieName); err != nil {
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		if headerToken == "" {
			response.Error(c, http.StatusForbidden, "Missing CSRF token", nil)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1 {
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
