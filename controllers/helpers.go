package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const dateLayout = "2006-01-02"

// bindJSON decodes the body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid request body: %v", err))
		return false
	}
	return true
}

// idParam reads a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondAppError(c, utils.NewValidationError("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

// timeQuery accepts RFC3339 or a plain date. Unparseable values are treated as
// absent so that optional filters fall back to their defaults.
func timeQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t
	}
	utils.InfoLogger.WithField("param", name).Debugf("ignoring unparseable time %q", raw)
	return nil
}

func uintQuery(c *gin.Context, name string) *uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
