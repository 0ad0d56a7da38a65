package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// RequireCapability rejects callers whose role lacks cap.
func RequireCapability(cap policy.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		if !policy.Can(role, cap) {
			utils.InfoLogger.WithFields(map[string]interface{}{
				"user_id":    CurrentUserID(c),
				"role":       role,
				"capability": cap,
			}).Warn("Capability check failed")
			utils.RespondAppError(c, utils.NewAuthorizationError("role %q may not perform %s", role, cap))
			return
		}
		c.Next()
	}
}
