package middleware

import (
	"crypto/subtle"
	"net/http"

	"chatapi/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const HeaderAPIKey = "X-API-Key"

// APIKey requires X-API-Key to equal secret. When disabled it passes every
// request through.
func APIKey(enabled bool, secret string) gin.HandlerFunc {
	expected := []byte(secret)

	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderAPIKey)
		if key == "" {
			logAuthFailure(c, http.StatusUnauthorized, "api_key_missing")
			response.Abort(c, http.StatusUnauthorized, "API key is missing")
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			logAuthFailure(c, http.StatusUnauthorized, "api_key_invalid")
			response.Abort(c, http.StatusUnauthorized, "Invalid API key")
			return
		}

		c.Next()
	}
}

func logAuthFailure(c *gin.Context, status int, reason string) {
	logrus.WithFields(logrus.Fields{
		"status":     status,
		"path":       c.Request.URL.Path,
		"client_ip":  c.ClientIP(),
		"request_id": requestID(c),
		"reason":     reason,
	}).Warn("auth_failure")
}
