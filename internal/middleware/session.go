package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepkit/ielts-backend/internal/model"
	"github.com/prepkit/ielts-backend/internal/response"
	"github.com/prepkit/ielts-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active login
// recorded in Redis. A mismatch means the user logged in elsewhere and this
// token was invalidated.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only students are pinned to a single device.
		if claims.Role != model.RoleUser {
			c.Next()
			return
		}

		if err := authService.ValidateUserSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
