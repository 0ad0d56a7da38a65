package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

// CreatePayment records a tender. Overpayment is reported, not rejected.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.RecordPaymentInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := pc.Payments.Record(c.Request.Context(), orderID, middlewares.CurrentUserID(c), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Payment recorded"
	if result.Overpaid {
		message = "Payment recorded; order is overpaid"
	}
	utils.RespondJSON(c, http.StatusCreated, message, result)
}

func (pc *PaymentController) GetOrderPayments(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	summary, err := pc.Payments.Summary(c.Request.Context(), orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment summary", summary)
}

// CreateRefund is processed by the caller and authorised by authorized_by_id.
// A different authoriser confirms with authorizer_password.
func (pc *PaymentController) CreateRefund(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.RefundInput
	if !bindJSON(c, &input) {
		return
	}

	refund, err := pc.Payments.Refund(c.Request.Context(), orderID, middlewares.CurrentUserID(c), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Refund recorded", refund)
}
