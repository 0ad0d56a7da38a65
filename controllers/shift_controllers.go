package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ShiftController struct {
	Shifts *services.ShiftService
}

func NewShiftController(shifts *services.ShiftService) *ShiftController {
	return &ShiftController{Shifts: shifts}
}

func actorOf(c *gin.Context) services.Actor {
	return services.Actor{UserID: middlewares.CurrentUserID(c), Role: middlewares.CurrentRole(c)}
}

func (sc *ShiftController) StartShift(c *gin.Context) {
	var input struct {
		OpeningCash decimal.Decimal `json:"opening_cash"`
	}
	if !bindJSON(c, &input) {
		return
	}
	shift, err := sc.Shifts.Start(c.Request.Context(), middlewares.CurrentUserID(c), input.OpeningCash)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Shift started", shift)
}

func (sc *ShiftController) CurrentShift(c *gin.Context) {
	shift, err := sc.Shifts.Current(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active shift", shift)
}

// GetAllShifts lists the caller's shifts; shift managers may filter by user_id
// or see everyone's.
func (sc *ShiftController) GetAllShifts(c *gin.Context) {
	var filter services.ShiftFilter
	if policy.Can(middlewares.CurrentRole(c), policy.ShiftsManage) {
		filter.UserID = uintQuery(c, "user_id")
	} else {
		userID := middlewares.CurrentUserID(c)
		filter.UserID = &userID
	}
	switch s := models.ShiftStatus(c.Query("status")); s {
	case models.ShiftStatusActive, models.ShiftStatusClosed:
		filter.Status = &s
	}

	shifts, err := sc.Shifts.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shifts retrieved", shifts)
}

func (sc *ShiftController) GetShift(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	shift, err := sc.Shifts.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if !canSeeShift(c, shift) {
		utils.RespondAppError(c, utils.NewAuthorizationError("shift %d belongs to another user", id))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift retrieved", shift)
}

func (sc *ShiftController) ShiftSummary(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	shift, err := sc.Shifts.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if !canSeeShift(c, shift) {
		utils.RespondAppError(c, utils.NewAuthorizationError("shift %d belongs to another user", id))
		return
	}
	summary, err := sc.Shifts.Summary(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift summary", summary)
}

func (sc *ShiftController) EndShift(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.EndShiftInput
	if !bindJSON(c, &input) {
		return
	}
	shift, err := sc.Shifts.End(c.Request.Context(), id, actorOf(c), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift closed", shift)
}

func canSeeShift(c *gin.Context, shift *models.Shift) bool {
	return shift.UserID == middlewares.CurrentUserID(c) ||
		policy.Can(middlewares.CurrentRole(c), policy.ShiftsManage)
}
