package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type InventoryController struct {
	Inventory *services.InventoryService
}

func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{Inventory: inventory}
}

func (ic *InventoryController) CreateItem(c *gin.Context) {
	var input services.CreateInventoryItemInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := ic.Inventory.Create(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Inventory item created", item)
}

// GetAllItems accepts low_stock=true to list only items at or under their
// reorder level.
func (ic *InventoryController) GetAllItems(c *gin.Context) {
	items, err := ic.Inventory.List(c.Request.Context(), c.Query("low_stock") == "true")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory retrieved", items)
}

func (ic *InventoryController) RecordMovement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.MovementInput
	if !bindJSON(c, &input) {
		return
	}
	movement, err := ic.Inventory.RecordMovement(c.Request.Context(), id, middlewares.CurrentUserID(c), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Stock movement recorded", movement)
}

func (ic *InventoryController) GetMovements(c *gin.Context) {
	movements, err := ic.Inventory.Movements(c.Request.Context(), uintQuery(c, "item_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock movements", movements)
}
