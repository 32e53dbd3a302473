package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

// ContextStudentKey is the gin context key storing applicant JWT claims.
const ContextStudentKey = "currentStudent"

// StudentJWT protects status-tracking routes by requiring a valid token.
func StudentJWT(authService *service.AuthService, resp *response.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			resp.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			resp.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextStudentKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
