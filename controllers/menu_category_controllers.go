package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type MenuCategoryController struct {
	Catalog *services.CatalogService
}

func NewMenuCategoryController(catalog *services.CatalogService) *MenuCategoryController {
	return &MenuCategoryController{Catalog: catalog}
}

// GetAllCategories lists active categories. Catalog managers may pass
// include_inactive=true to see deactivated ones too.
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true" &&
		policy.Can(middlewares.CurrentRole(c), policy.CatalogManage)

	categories, err := mcc.Catalog.ListCategories(c.Request.Context(), includeInactive)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categories retrieved", categories)
}

func (mcc *MenuCategoryController) GetCategoryItems(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	items, err := mcc.Catalog.CategoryItems(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category items retrieved", items)
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var input services.CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	category, err := mcc.Catalog.CreateCategory(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory also deactivates, via "active": false. Categories are never deleted.
func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	category, err := mcc.Catalog.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}
