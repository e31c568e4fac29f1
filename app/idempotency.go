package app

import (
	"log/slog"
	"net/http"
	"strings"

	"Gin_postgres_redis_tool_ledger/cache"

	"github.com/gin-gonic/gin"
)

const IdempotencyHeader = "Idempotency-Key"

// Idempotency refuses a second request carrying the same Idempotency-Key
// within the guard TTL. Requests without the header, or with redis
// unavailable, pass through. A failed request frees its key for a retry.
func Idempotency(g *cache.Guard, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" || !g.Enabled() {
			c.Next()
			return
		}
		scoped := c.Request.Method + ":" + c.FullPath() + ":" + key

		ok, err := g.Claim(c.Request.Context(), scoped)
		if err != nil {
			log.WarnContext(c.Request.Context(), "idempotency guard unavailable", "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, ErrorBody("DUPLICATE_REQUEST", "request with this Idempotency-Key was already received"))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := g.Release(c.Request.Context(), scoped); err != nil {
				log.WarnContext(c.Request.Context(), "idempotency key release failed", "err", err)
			}
		}
	}
}
