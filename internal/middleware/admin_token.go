package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

// AdminToken guards registrar endpoints with a static bearer token from
// configuration. A missing configured token locks the endpoints entirely.
func AdminToken(token string, resp *response.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, ok := bearerToken(c)
		if !ok || token == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			resp.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
