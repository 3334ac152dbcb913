package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LavaJover/festival-order-service/internal/delivery/http/dto"
)

const AdminHeader = "X-Admin-Password"

// AdminAuth guards admin routes with the shared secret from the header or
// the password query parameter. An empty configured secret rejects every
// request rather than opening the routes.
func AdminAuth(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got := c.GetHeader(AdminHeader)
		if got == "" {
			got = c.Query("password")
		}
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}
