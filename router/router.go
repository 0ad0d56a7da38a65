package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/services"
	"gorm.io/gorm"
)

// Options carries the HTTP-level settings read from config.
type Options struct {
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

func SetupRouter(db *gorm.DB, hub *kds.Hub, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	if opts.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())
	}

	catalog := services.NewCatalogService(db)
	settings := services.NewSettingsService(db)
	r.Use(middlewares.StoreLanguage(settings))

	userCtrl := controllers.NewUserController(services.NewUserService(db))
	categoryCtrl := controllers.NewMenuCategoryController(catalog)
	menuCtrl := controllers.NewMenuController(catalog, settings)
	orderCtrl := controllers.NewOrderController(services.NewOrderService(db, hub))
	paymentCtrl := controllers.NewPaymentController(services.NewPaymentService(db, hub))
	receiptCtrl := controllers.NewReceiptController(services.NewReceiptService(db))
	shiftCtrl := controllers.NewShiftController(services.NewShiftService(db, hub))
	settlementCtrl := controllers.NewSettlementController(services.NewSettlementService(db))
	reportCtrl := controllers.NewReportController(services.NewReportService(db))
	tableCtrl := controllers.NewTableController(services.NewTableService(db))
	inventoryCtrl := controllers.NewInventoryController(services.NewInventoryService(db))
	settingsCtrl := controllers.NewSettingsController(settings)
	kdsCtrl := controllers.NewKDSController(hub, opts.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST("/login", middlewares.NewStrictRateLimiter().RateLimit(), userCtrl.Login)

	// Browsers cannot set headers on the handshake, so the token rides in the query.
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), kdsCtrl.KDSHandler)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	can := middlewares.RequireCapability

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// CATALOG
	auth.GET("/categories", can(policy.CatalogRead), categoryCtrl.GetAllCategories)
	auth.GET("/categories/:id/items", can(policy.CatalogRead), categoryCtrl.GetCategoryItems)
	auth.POST("/categories", can(policy.CatalogManage), categoryCtrl.CreateCategory)
	auth.PUT("/categories/:id", can(policy.CatalogManage), categoryCtrl.UpdateCategory)

	auth.GET("/menu/items", can(policy.CatalogRead), menuCtrl.GetAllMenus)
	auth.POST("/menu/items", can(policy.CatalogManage), menuCtrl.CreateMenu)
	auth.PUT("/menu/items/:id", can(policy.CatalogManage), menuCtrl.UpdateMenu)
	auth.POST("/menu/items/:id/sizes", can(policy.CatalogManage), menuCtrl.AddSize)

	auth.GET("/modifiers", can(policy.CatalogRead), menuCtrl.GetModifiers)
	auth.POST("/modifiers", can(policy.CatalogManage), menuCtrl.CreateModifier)
	auth.PUT("/modifiers/:id", can(policy.CatalogManage), menuCtrl.UpdateModifier)

	auth.POST("/cart/quote", can(policy.OrdersCreate), menuCtrl.QuoteCart)

	// ORDERS
	auth.POST("/orders", can(policy.OrdersCreate), orderCtrl.CreateOrder)
	auth.GET("/orders", can(policy.OrdersCreate), orderCtrl.GetAllOrders)
	auth.GET("/orders/:id", can(policy.OrdersCreate), orderCtrl.GetOrderByID)
	auth.POST("/orders/:id/items", can(policy.OrdersUpdate), orderCtrl.AddOrderItem)
	auth.DELETE("/orders/:id/items/:itemId", can(policy.OrdersUpdate), orderCtrl.RemoveOrderItem)
	auth.PUT("/orders/:id/status", can(policy.OrdersUpdate), orderCtrl.UpdateOrderStatus)

	// PAYMENTS
	payments := auth.Group("/orders/:id")
	payments.Use(can(policy.PaymentsRecord), middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	{
		payments.POST("/payment", paymentCtrl.CreatePayment)
		payments.GET("/payments", paymentCtrl.GetOrderPayments)
		payments.POST("/refunds", paymentCtrl.CreateRefund)
	}

	receipts := auth.Group("/orders/:id")
	receipts.Use(can(policy.PaymentsRecord), middlewares.ReceiptLoggerMiddleware())
	{
		receipts.GET("/receipt", receiptCtrl.GetReceipt)
		receipts.GET("/receipt.pdf", receiptCtrl.DownloadReceiptPDF)
	}

	// SHIFTS
	auth.POST("/shifts", can(policy.ShiftsOwn), shiftCtrl.StartShift)
	auth.GET("/shifts", can(policy.ShiftsOwn), shiftCtrl.GetAllShifts)
	auth.GET("/shifts/current", can(policy.ShiftsOwn), shiftCtrl.CurrentShift)
	auth.GET("/shifts/:id", can(policy.ShiftsOwn), shiftCtrl.GetShift)
	auth.GET("/shifts/:id/summary", can(policy.ShiftsOwn), shiftCtrl.ShiftSummary)
	auth.PUT("/shifts/:id/end", can(policy.ShiftsOwn), shiftCtrl.EndShift)

	// SETTLEMENTS
	settlements := auth.Group("/settlements")
	settlements.Use(can(policy.SettlementsManage))
	{
		settlements.POST("", settlementCtrl.CreateSettlement)
		settlements.GET("", settlementCtrl.GetAllSettlements)
		settlements.GET("/:id", settlementCtrl.GetSettlement)
		settlements.PUT("/:id/complete", settlementCtrl.CompleteSettlement)
	}

	// REPORTS
	reports := auth.Group("/reports")
	reports.Use(can(policy.ReportsView))
	{
		reports.GET("/sales", reportCtrl.GetSalesReport)
		reports.GET("/time-series", reportCtrl.GetTimeSeries)
		reports.GET("/categories", reportCtrl.GetCategories)
		reports.GET("/payment-methods", reportCtrl.GetPaymentMethods)
		reports.GET("/top-items", reportCtrl.GetTopItems)
		reports.GET("/hourly", reportCtrl.GetHourly)
		reports.GET("/daily", reportCtrl.GetDailyReports)
		reports.POST("/daily", reportCtrl.GenerateDailyReport)
	}

	// USERS
	auth.GET("/users", can(policy.UsersManage), userCtrl.GetAllUsers)
	auth.POST("/users", can(policy.UsersManage), userCtrl.CreateUser)
	auth.PUT("/users/:id", can(policy.UsersManage), userCtrl.UpdateUser)

	// TABLES
	auth.GET("/tables", can(policy.OrdersCreate), tableCtrl.GetAllTables)
	auth.GET("/tables/orders", can(policy.OrdersCreate), tableCtrl.GetTableOrders)
	auth.POST("/tables", can(policy.TablesManage), tableCtrl.CreateTable)

	// INVENTORY
	inventory := auth.Group("/inventory")
	inventory.Use(can(policy.InventoryManage))
	{
		inventory.GET("", inventoryCtrl.GetAllItems)
		inventory.POST("", inventoryCtrl.CreateItem)
		inventory.GET("/movements", inventoryCtrl.GetMovements)
		inventory.POST("/:id/movements", inventoryCtrl.RecordMovement)
	}

	// SETTINGS
	auth.GET("/settings", can(policy.CatalogRead), settingsCtrl.GetSettings)
	auth.PUT("/settings", can(policy.SettingsManage), settingsCtrl.UpdateSettings)

	return r
}
