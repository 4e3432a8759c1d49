package middlewares

import (
	"net/http"

	"github.com/geocoder89/cafedir/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireAdmin lets only the user whose id equals user.AdminID through.
// There is no roles table; id 1 is the one admin.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)

		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		if u.ID != user.AdminID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin access required",
				},
			})
			return
		}
		c.Next()
	}
}
