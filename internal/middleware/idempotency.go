package middleware

import (
	"bytes"
	"net/http"

	"github.com/JonnyWalker81/stride/backend/internal/apierror"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
)

// capturingWriter tees the response body so it can be stored after the handler runs
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST carrying a known
// Idempotency-Key, so a client retrying a check-in or progress entry after a
// dropped response does not log the same day twice. Requests without the
// header pass through. Store failures never fail the request.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		log := logger.Ctx(ctx).With(
			logger.String("idempotency_key", key),
			logger.String("route", c.FullPath()),
		)
		route := c.Request.Method + " " + c.FullPath()

		stored, err := repo.Get(ctx, key, route, userID)
		if err != nil {
			log.Warn("idempotency lookup failed, processing request", logger.Err(err))
			c.Next()
			return
		}
		if stored != nil {
			replay(c, stored)
			log.Info("replayed idempotent response", logger.Int("status_code", stored.StatusCode))
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		if err := repo.Store(ctx, key, route, userID, w.body.Bytes(), status); err != nil {
			log.Warn("failed to store idempotency key", logger.Err(err))
		}
	}
}

func replay(c *gin.Context, stored *models.IdempotencyKey) {
	c.Header(IdempotencyReplayedHeader, "true")
	c.Data(stored.StatusCode, "application/json; charset=utf-8", stored.ResponseBody)
	c.Abort()
}
