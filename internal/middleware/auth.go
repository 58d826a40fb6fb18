package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bala2207022/face-attendance/internal/service"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
	"github.com/bala2207022/face-attendance/pkg/response"
)

// ContextUserKey is the gin context key storing token claims.
const ContextUserKey = "currentUser"

// AdminJWT protects administrative routes by requiring a valid bearer
// token issued by the token service.
func AdminJWT(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}
