package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var input services.CreateTableInput
	if !bindJSON(c, &input) {
		return
	}
	table, err := tc.Tables.Create(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.Infof("Table %s created", table.Number)
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.List(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables retrieved", tables)
}

// GetTableOrders lists open dine-in orders grouped by table number.
func (tc *TableController) GetTableOrders(c *gin.Context) {
	groups, err := tc.Tables.OpenOrders(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open orders by table", groups)
}
