package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flyttman/pkg/utils"
)

func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized,
				"Authorization header missing or invalid", "Autentisering saknas eller är ogiltig")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized,
				"Invalid or expired token", "Ogiltig eller utgången token")
			c.Abort()
			return
		}

		// Pass user information to the next handler
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RoleMiddleware lets the request through when the authenticated role is one
// of allowed. It must run after JWTAuthMiddleware.
func RoleMiddleware(allowed ...string) gin.HandlerFunc {

	return func(c *gin.Context) {
		role := c.GetString("role")

		for _, r := range allowed {
			if r == role {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden,
			"Forbidden: insufficient permissions", "Åtkomst nekad: otillräckliga behörigheter")
		c.Abort()
	}
}
