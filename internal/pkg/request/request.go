package request

import (
	"errors"
	"io"
	"net/http"

	"chatapi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the body into dst and writes a 400 envelope when it is
// missing or malformed. It reports whether the handler should continue.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.Error(c, http.StatusBadRequest, "No input data provided")
			return false
		}
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
