package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{Reports: reports}
}

// reportRange resolves the from/to query window, defaulting to the last week.
func (rc *ReportController) reportRange(c *gin.Context) (services.Range, bool) {
	r, err := rc.Reports.ResolveRange(timeQuery(c, "from"), timeQuery(c, "to"))
	if err != nil {
		utils.RespondAppError(c, err)
		return services.Range{}, false
	}
	return r, true
}

func (rc *ReportController) GetSalesReport(c *gin.Context) {
	r, ok := rc.reportRange(c)
	if !ok {
		return
	}
	compare := c.Query("compare") == "previous_period"
	report, err := rc.Reports.Sales(c.Request.Context(), r, compare)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales report", report)
}

func (rc *ReportController) GetTimeSeries(c *gin.Context) {
	r, ok := rc.reportRange(c)
	if !ok {
		return
	}
	buckets, err := rc.Reports.TimeSeries(c.Request.Context(), r)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales by day", buckets)
}

func (rc *ReportController) GetHourly(c *gin.Context) {
	r, ok := rc.reportRange(c)
	if !ok {
		return
	}
	buckets, err := rc.Reports.Hourly(c.Request.Context(), r)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales by hour", buckets)
}

func (rc *ReportController) GetCategories(c *gin.Context) {
	r, ok := rc.reportRange(c)
	if !ok {
		return
	}
	rows, err := rc.Reports.Categories(c.Request.Context(), r)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales by category", rows)
}

func (rc *ReportController) GetPaymentMethods(c *gin.Context) {
	r, ok := rc.reportRange(c)
	if !ok {
		return
	}
	rows, err := rc.Reports.PaymentMethods(c.Request.Context(), r)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales by payment method", rows)
}

func (rc *ReportController) GetTopItems(c *gin.Context) {
	r, ok := rc.reportRange(c)
	if !ok {
		return
	}
	rows, err := rc.Reports.TopItems(c.Request.Context(), r, intQuery(c, "limit", 0))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Top selling items", rows)
}

func (rc *ReportController) GetDailyReports(c *gin.Context) {
	reports, err := rc.Reports.DailyReports(c.Request.Context(), dateQuery(c, "from"), dateQuery(c, "to"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily reports", reports)
}

// GenerateDailyReport materialises one day, today (UTC) when no date is given.
func (rc *ReportController) GenerateDailyReport(c *gin.Context) {
	var input struct {
		Date string `json:"date"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &input) {
		return
	}
	if input.Date == "" {
		input.Date = time.Now().UTC().Format(dateLayout)
	}
	report, err := rc.Reports.Generate(c.Request.Context(), input.Date)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily report generated", report)
}

// dateQuery returns a YYYY-MM-DD query value, or "" when absent or malformed.
func dateQuery(c *gin.Context, name string) string {
	raw := c.Query(name)
	if _, err := time.Parse(dateLayout, raw); err != nil {
		return ""
	}
	return raw
}
