package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds the browser hardening headers to every
// response:
// - HSTS against protocol downgrade
// - nosniff, so uploads are never reinterpreted as another MIME type
// - X-Frame-Options and frame-ancestors against clickjacking
// - Referrer-Policy and Permissions-Policy against information leakage
//
// imageHost is the public object storage URL. Company logos are served from
// it, so the CSP lets images load from there and from Google avatars.
func SecurityHeadersMiddleware(imageHost string) gin.HandlerFunc {
	imgSrc := "img-src 'self' data: https://lh3.googleusercontent.com"
	if imageHost != "" {
		imgSrc += " " + imageHost
	}
	// form-action admits the Google consent screen the login redirect posts to
	csp := "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		imgSrc + "; " +
		"font-src 'self'; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self' https://accounts.google.com"

	return func(c *gin.Context) {
		// max-age=63072000 = 2 years
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		// full URL to same origin, only the origin cross-origin
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		// empty allowlist = feature disabled
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")
		c.Header("Content-Security-Policy", csp)

		// Session-bearing responses must not be cached. Shared caches
		// would otherwise hand one user's profile to the next.
		if _, err := c.Cookie(SessionCookieName); err == nil || c.GetHeader("Authorization") != "" {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
		}

		c.Next()
	}
}
