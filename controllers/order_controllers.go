package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// GetAllOrders supports status, source, type, from, to and limit filters.
// Unknown filter values are ignored.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Source: c.Query("source"),
		From:   timeQuery(c, "from"),
		To:     timeQuery(c, "to"),
		Limit:  intQuery(c, "limit", 0),
	}
	if s := models.OrderStatus(c.Query("status")); s.Valid() {
		filter.Status = &s
	}
	if t := models.OrderType(c.Query("type")); t.Valid() {
		filter.Type = &t
	}

	orders, err := oc.Orders.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders retrieved", orders)
}

// CreateOrder accepts either cart lines or a header with declared totals.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if !bindJSON(c, &input) {
		return
	}
	userID := middlewares.CurrentUserID(c)
	input.CreatedByID = &userID

	order, err := oc.Orders.Create(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order retrieved", order)
}

func (oc *OrderController) AddOrderItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.AddItemInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := oc.Orders.AddItem(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Item added", order)
}

func (oc *OrderController) RemoveOrderItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	order, err := oc.Orders.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	order, err := oc.Orders.Transition(c.Request.Context(), id, input.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
