package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type SettingsController struct {
	Settings *services.SettingsService
}

func NewSettingsController(settings *services.SettingsService) *SettingsController {
	return &SettingsController{Settings: settings}
}

func (sc *SettingsController) GetSettings(c *gin.Context) {
	settings, err := sc.Settings.Get(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Store settings", settings)
}

func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var input services.UpdateSettingsInput
	if !bindJSON(c, &input) {
		return
	}
	settings, err := sc.Settings.Update(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Store settings updated", settings)
}
