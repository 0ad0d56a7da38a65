package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// PaymentSecurityHeaders keeps money responses out of shared caches.
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// LogPaymentRequest writes an audit line for every payment or refund attempt,
// successful or not.
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"audit":      "payment",
			"request_id": c.GetString(ContextRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"order_id":   c.Param("id"),
			"user_id":    CurrentUserID(c),
			"role":       CurrentRole(c),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start),
		})
		if c.Writer.Status() >= 400 {
			entry.Warn("payment request rejected")
			return
		}
		entry.Info("payment request accepted")
	}
}
