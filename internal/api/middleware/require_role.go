package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/utils"
)

// RequireRole lets the request through only when the token role is one of
// allowed.
func RequireRole(allowed ...models.UserRole) gin.HandlerFunc {
	allow := map[string]struct{}{}
	for _, a := range allowed {
		k := strings.TrimSpace(strings.ToLower(string(a)))
		if k != "" {
			allow[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		v, ok := c.Get("role")
		role, _ := v.(string)
		role = strings.ToLower(strings.TrimSpace(role))

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:    utils.CodeForbidden,
				Message: "forbidden",
			})
			return
		}

		if _, ok := allow[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:    utils.CodeForbidden,
				Message: "role " + role + " may not do this",
			})
			return
		}

		c.Next()
	}
}

// RequireParticipant admits mentors and mentees.
func RequireParticipant() gin.HandlerFunc {
	return RequireRole(models.RoleMentor, models.RoleMentee)
}
