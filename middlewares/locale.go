package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// LanguageSource reports the store's configured fallback language.
type LanguageSource interface {
	DefaultLanguage(ctx context.Context) string
}

// StoreLanguage stamps the store's fallback language on the request so error
// titles follow it when Accept-Language is absent.
func StoreLanguage(src LanguageSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lang := src.DefaultLanguage(c.Request.Context()); lang != "" {
			c.Set(utils.FallbackLanguageKey, lang)
		}
		c.Next()
	}
}
