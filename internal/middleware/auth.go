package middleware

import (
	"context"
	"strings"

	"github.com/JonnyWalker81/stride/backend/internal/apierror"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves a bearer token to a user. *supabase.Client implements it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*supabase.User, error)
}

// Auth rejects requests without a valid Supabase bearer token and puts the
// user ID on both the gin context ("user_id") and the request context, where
// the logger picks it up.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			unauthorized(c, "missing or malformed authorization header", nil)
			return
		}

		user, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, "token verification failed", err)
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))

		c.Next()
	}
}

func unauthorized(c *gin.Context, reason string, err error) {
	log := logger.Ctx(c.Request.Context())
	if err != nil {
		log.Warn("authentication failed: "+reason, logger.Err(err))
	} else {
		log.Debug("authentication failed: " + reason)
	}
	apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
	c.Abort()
}
