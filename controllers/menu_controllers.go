package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type MenuController struct {
	Catalog  *services.CatalogService
	Settings *services.SettingsService
}

func NewMenuController(catalog *services.CatalogService, settings *services.SettingsService) *MenuController {
	return &MenuController{Catalog: catalog, Settings: settings}
}

// GetAllMenus lists active items with their sizes and modifiers, optionally
// narrowed by category_id.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.Catalog.MenuItems(c.Request.Context(), uintQuery(c, "category_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items retrieved", items)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var input services.ItemInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := mc.Catalog.CreateItem(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.WithField("item_id", item.ID).Info("Menu item created")
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.ItemInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := mc.Catalog.UpdateItem(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) AddSize(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.SizeInput
	if !bindJSON(c, &input) {
		return
	}
	size, err := mc.Catalog.AddSize(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Size added", size)
}

func (mc *MenuController) GetModifiers(c *gin.Context) {
	modifiers, err := mc.Catalog.ListModifiers(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifiers retrieved", modifiers)
}

func (mc *MenuController) CreateModifier(c *gin.Context) {
	var input services.ModifierInput
	if !bindJSON(c, &input) {
		return
	}
	modifier, err := mc.Catalog.CreateModifier(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Modifier created", modifier)
}

func (mc *MenuController) UpdateModifier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.ModifierInput
	if !bindJSON(c, &input) {
		return
	}
	modifier, err := mc.Catalog.UpdateModifier(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier updated", modifier)
}

// QuoteCart prices submitted lines against the live catalog and the current
// service-charge rate. Nothing is persisted.
func (mc *MenuController) QuoteCart(c *gin.Context) {
	var input struct {
		Items []services.LineRequest `json:"items"`
	}
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	settings, err := mc.Settings.Get(ctx)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cart := services.NewCart(settings.ServiceChargeRate)
	for _, req := range input.Items {
		line, err := mc.Catalog.ResolveLine(ctx, req)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		if err := cart.Add(line); err != nil {
			utils.RespondAppError(c, err)
			return
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Cart priced", cart.Quote())
}
