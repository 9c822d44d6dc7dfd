package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// wildcardOrigin is a parsed "scheme://*.domain" pattern. It matches exactly
// one subdomain label.
type wildcardOrigin struct {
	scheme string
	suffix string
}

// parseWildcardOrigin parses patterns like "https://*.example.com". It returns
// nil for exact origins and for patterns it does not accept.
func parseWildcardOrigin(pattern string) *wildcardOrigin {
	schemeEnd := strings.Index(pattern, "://")
	if schemeEnd <= 0 {
		return nil
	}
	scheme := pattern[:schemeEnd+3]
	host := pattern[schemeEnd+3:]

	if !strings.HasPrefix(host, "*.") || strings.Count(host, "*") != 1 {
		return nil
	}
	suffix := host[1:]
	// Require at least a second-level domain after the wildcard
	if strings.Count(suffix, ".") < 2 {
		return nil
	}

	return &wildcardOrigin{scheme: scheme, suffix: suffix}
}

func (w *wildcardOrigin) matches(origin string) bool {
	if !strings.HasPrefix(origin, w.scheme) {
		return false
	}
	host := origin[len(w.scheme):]
	if !strings.HasSuffix(host, w.suffix) {
		return false
	}
	label := host[:len(host)-len(w.suffix)]
	return label != "" && !strings.ContainsAny(label, "./:")
}

// CORS middleware to handle cross-origin requests. An empty allowedOrigins
// list allows every origin. Entries may be exact origins or single-label
// wildcards such as "https://*.stride-app.pages.dev".
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0

	exact := make(map[string]bool, len(allowedOrigins))
	var wildcards []*wildcardOrigin
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if w := parseWildcardOrigin(origin); w != nil {
			wildcards = append(wildcards, w)
			continue
		}
		exact[origin] = true
	}

	isAllowed := func(origin string) bool {
		if exact[origin] {
			return true
		}
		for _, w := range wildcards {
			if w.matches(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if isAllowed(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		} else if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(403)
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Idempotency-Key, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
