package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"

	maxIdempotencyKeyLen = 128
)

// idempotencyKey reads the optional Idempotency-Key header. Keys longer
// than maxIdempotencyKeyLen are rejected.
func idempotencyKey(c *gin.Context) (string, error) {
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		return "", newValidationError("idempotency_key", "invalid_idempotency_key", "idempotency key is too long")
	}
	return key, nil
}
