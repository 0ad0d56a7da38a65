package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ReceiptController struct {
	Receipts *services.ReceiptService
}

func NewReceiptController(receipts *services.ReceiptService) *ReceiptController {
	return &ReceiptController{Receipts: receipts}
}

// GetReceipt returns the receipt data for clients that print it themselves.
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	receipt, err := rc.Receipts.Build(c.Request.Context(), orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt generated successfully", receipt)
}

func (rc *ReceiptController) DownloadReceiptPDF(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	data, receipt, err := rc.Receipts.PDF(c.Request.Context(), orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	filename := strings.ReplaceAll(receipt.Number, "/", "-") + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
