package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextToken  = "token"
	ContextClaims = "claims"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header must use the Bearer scheme"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if !authenticate(c, tokenString) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate parses the token and stores the caller in the context.
func authenticate(c *gin.Context, tokenString string) bool {
	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return false
	}
	role, ok := policy.ParseRole(claims.Role)
	if !ok {
		return false
	}
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, role)
	c.Set(ContextToken, tokenString)
	c.Set(ContextClaims, claims)
	return true
}

// CurrentUserID returns the authenticated user id, or 0.
func CurrentUserID(c *gin.Context) uint {
	id, _ := c.Get(ContextUserID)
	userID, _ := id.(uint)
	return userID
}

// CurrentRole returns the authenticated role, or the empty role.
func CurrentRole(c *gin.Context) policy.Role {
	r, _ := c.Get(ContextRole)
	role, _ := r.(policy.Role)
	return role
}
