package middleware

import (
	"github.com/gin-gonic/gin"
)

// securityHeaders apply to every response. Payloads are per-user JSON, so
// nothing may frame or cache them.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Cache-Control", "no-store"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders adds security-related HTTP headers to all responses. HSTS is
// only sent in production, where TLS terminates in front of the server.
func SecurityHeaders(env string) gin.HandlerFunc {
	isProduction := env == "production"

	return func(c *gin.Context) {
		for _, h := range securityHeaders {
			c.Header(h[0], h[1])
		}
		if isProduction {
			c.Header("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}
