package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type SettlementController struct {
	Settlements *services.SettlementService
}

func NewSettlementController(settlements *services.SettlementService) *SettlementController {
	return &SettlementController{Settlements: settlements}
}

func (sc *SettlementController) CreateSettlement(c *gin.Context) {
	var input services.CreateSettlementInput
	if !bindJSON(c, &input) {
		return
	}
	settlement, err := sc.Settlements.Create(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Settlement created", settlement)
}

func (sc *SettlementController) GetAllSettlements(c *gin.Context) {
	filter := services.SettlementFilter{Source: c.Query("source")}
	switch s := models.SettlementStatus(c.Query("status")); s {
	case models.SettlementStatusPending, models.SettlementStatusCompleted:
		filter.Status = &s
	}
	settlements, err := sc.Settlements.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settlements retrieved", settlements)
}

func (sc *SettlementController) GetSettlement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	settlement, err := sc.Settlements.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settlement retrieved", settlement)
}

// CompleteSettlement records the payout. A mismatch with the expected total is
// kept as a discrepancy rather than rejected.
func (sc *SettlementController) CompleteSettlement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.CompleteSettlementInput
	if !bindJSON(c, &input) {
		return
	}
	settlement, err := sc.Settlements.Complete(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settlement completed", settlement)
}
