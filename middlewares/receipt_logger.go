package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func ReceiptLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.InfoLogger.Printf("Generating receipt for order ID: %s", c.Param("id"))

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			utils.InfoLogger.Printf("Receipt generated for order ID: %s by user %d", c.Param("id"), CurrentUserID(c))
		} else {
			utils.ErrorLogger.Printf("Failed to generate receipt for order ID: %s (status %d)", c.Param("id"), c.Writer.Status())
		}
	}
}
