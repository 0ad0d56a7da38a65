package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	utils.ConfigureJWT("integration-secret", time.Hour)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t *testing.T
	r http.Handler
}

func (c client) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

// expect asserts the status code and decodes the data field into dst.
func (c client) expect(w *httptest.ResponseRecorder, code int, dst interface{}) {
	c.t.Helper()
	require.Equal(c.t, code, w.Code, "body=%s", w.Body.String())
	if dst == nil {
		return
	}
	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(c.t, json.Unmarshal(env.Data, dst))
}

func (c client) login(username, password string) string {
	c.t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	c.expect(c.do(http.MethodPost, "/login", "", gin.H{"username": username, "password": password}), http.StatusOK, &out)
	require.NotEmpty(c.t, out.Token)
	return out.Token
}

func newTestServer(t *testing.T) client {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, services.NewUserService(db).EnsureAdmin(context.Background(), "admin", "admin-secret"))
	return client{t: t, r: router.SetupRouter(db, kds.NewHub(), router.Options{CORSOrigin: "*"})}
}

func money(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

// TestEndToEndIntegration walks a dine-in order from catalog setup through
// payment, refund, shift close and reporting.
func TestEndToEndIntegration(t *testing.T) {
	c := newTestServer(t)
	admin := c.login("admin", "admin-secret")

	var manager, cashier struct {
		ID uint `json:"id"`
	}
	c.expect(c.do(http.MethodPost, "/users", admin, gin.H{
		"username": "maha", "name": "Maha", "password": "manager-pass", "role": "manager",
	}), http.StatusCreated, &manager)
	c.expect(c.do(http.MethodPost, "/users", admin, gin.H{
		"username": "omar", "name": "Omar", "password": "cashier-pass", "role": "cashier",
	}), http.StatusCreated, &cashier)
	managerToken := c.login("maha", "manager-pass")
	cashierToken := c.login("omar", "cashier-pass")

	// catalog
	var category, extraMeat struct {
		ID uint `json:"id"`
	}
	c.expect(c.do(http.MethodPost, "/categories", managerToken, gin.H{
		"name_en": "Mains", "name_ar": "الأطباق الرئيسية",
	}), http.StatusCreated, &category)
	c.expect(c.do(http.MethodPost, "/modifiers", managerToken, gin.H{
		"name_en": "Extra Meat", "name_ar": "لحم إضافي", "price": "15.00",
	}), http.StatusCreated, &extraMeat)

	var kabsa struct {
		ID    uint `json:"id"`
		Sizes []struct {
			ID     uint   `json:"id"`
			NameEn string `json:"name_en"`
		} `json:"sizes"`
	}
	c.expect(c.do(http.MethodPost, "/menu/items", managerToken, gin.H{
		"category_id":  category.ID,
		"name_en":      "Kabsa",
		"name_ar":      "كبسة",
		"price":        "45.00",
		"modifier_ids": []uint{extraMeat.ID},
		"sizes": []gin.H{
			{"name_en": "Regular", "name_ar": "عادي", "price": "45.00"},
			{"name_en": "Large", "name_ar": "كبير", "price": "65.00", "sort_order": 1},
		},
	}), http.StatusCreated, &kabsa)
	require.Len(t, kabsa.Sizes, 2)
	large := kabsa.Sizes[1].ID

	var menu []json.RawMessage
	c.expect(c.do(http.MethodGet, "/menu/items", cashierToken, nil), http.StatusOK, &menu)
	assert.Len(t, menu, 1)

	// quote, then order the same cart
	line := gin.H{"item_id": kabsa.ID, "size_id": large, "quantity": 2, "modifier_ids": []uint{extraMeat.ID}}
	var quote services.CartQuote
	c.expect(c.do(http.MethodPost, "/cart/quote", cashierToken, gin.H{"items": []gin.H{line}}), http.StatusOK, &quote)
	money(t, "145.00", quote.Subtotal)
	money(t, "14.50", quote.ServiceCharge)
	money(t, "159.50", quote.Total)

	var shift struct {
		ID uint `json:"id"`
	}
	c.expect(c.do(http.MethodPost, "/shifts", cashierToken, gin.H{"opening_cash": "100.00"}), http.StatusCreated, &shift)
	c.expect(c.do(http.MethodPost, "/shifts", cashierToken, gin.H{"opening_cash": "0"}), http.StatusConflict, nil)

	var order struct {
		ID          uint            `json:"id"`
		OrderNumber int64           `json:"order_number"`
		Status      string          `json:"status"`
		Total       decimal.Decimal `json:"total"`
	}
	c.expect(c.do(http.MethodPost, "/orders", cashierToken, gin.H{
		"type": "dine_in", "table_number": "T4", "items": []gin.H{line},
	}), http.StatusCreated, &order)
	money(t, "159.50", order.Total)
	assert.Equal(t, "pending", order.Status)

	var tables []services.TableOrders
	c.expect(c.do(http.MethodGet, "/tables/orders", cashierToken, nil), http.StatusOK, &tables)
	require.Len(t, tables, 1)
	assert.Equal(t, "T4", tables[0].TableNumber)

	orderPath := fmt.Sprintf("/orders/%d", order.ID)
	c.expect(c.do(http.MethodPut, orderPath+"/status", cashierToken, gin.H{"status": "confirmed"}), http.StatusOK, nil)
	c.expect(c.do(http.MethodPut, orderPath+"/status", cashierToken, gin.H{"status": "completed"}), http.StatusUnprocessableEntity, nil)

	var first services.PaymentResult
	c.expect(c.do(http.MethodPost, orderPath+"/payment", cashierToken, gin.H{
		"method": "cash", "amount": "100.00",
	}), http.StatusCreated, &first)
	money(t, "59.50", first.Balance)
	assert.False(t, first.Completable)

	var second services.PaymentResult
	c.expect(c.do(http.MethodPost, orderPath+"/payment", cashierToken, gin.H{
		"method": "card", "amount": "59.50", "auto_complete": true,
	}), http.StatusCreated, &second)
	money(t, "0.00", second.Balance)
	assert.Equal(t, "completed", string(second.Order.Status))

	w := c.do(http.MethodGet, orderPath+"/receipt.pdf", cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	// refunds need an authoriser holding the refund capability who confirms with a password
	c.expect(c.do(http.MethodPost, orderPath+"/refunds", cashierToken, gin.H{
		"amount": "10.00", "reason": "cold food", "authorized_by_id": cashier.ID,
	}), http.StatusForbidden, nil)
	c.expect(c.do(http.MethodPost, orderPath+"/refunds", cashierToken, gin.H{
		"amount": "10.00", "reason": "cold food", "authorized_by_id": manager.ID,
	}), http.StatusForbidden, nil)
	c.expect(c.do(http.MethodPost, orderPath+"/refunds", cashierToken, gin.H{
		"amount": "10.00", "reason": "cold food", "authorized_by_id": manager.ID, "authorizer_password": "manager-pass",
	}), http.StatusCreated, nil)

	var summary services.PaymentSummary
	c.expect(c.do(http.MethodGet, orderPath+"/payments", cashierToken, nil), http.StatusOK, &summary)
	money(t, "159.50", summary.Paid)
	money(t, "10.00", summary.Refunded)

	// shift close: 100 opening + 100 cash, counted 195
	var closed struct {
		ExpectedCash decimal.Decimal `json:"expected_cash"`
		Variance     decimal.Decimal `json:"variance"`
		CardSales    decimal.Decimal `json:"card_sales"`
		Status       string          `json:"status"`
	}
	c.expect(c.do(http.MethodPut, fmt.Sprintf("/shifts/%d/end", shift.ID), cashierToken, gin.H{
		"closing_cash": "195.00",
	}), http.StatusOK, &closed)
	money(t, "200.00", closed.ExpectedCash)
	money(t, "-5.00", closed.Variance)
	money(t, "59.50", closed.CardSales)
	assert.Equal(t, "closed", closed.Status)

	// reporting is manager-only
	c.expect(c.do(http.MethodGet, "/reports/sales", cashierToken, nil), http.StatusForbidden, nil)
	var sales services.SalesReport
	c.expect(c.do(http.MethodGet, "/reports/sales?compare=previous_period", managerToken, nil), http.StatusOK, &sales)
	assert.Equal(t, 1, sales.CompletedOrders)
	money(t, "159.50", sales.GrossSales)
	money(t, "149.50", sales.NetSales)
	require.NotNil(t, sales.Previous)
	assert.Equal(t, 0, sales.Previous.OrderCount)

	var methods []services.MethodSales
	c.expect(c.do(http.MethodGet, "/reports/payment-methods", managerToken, nil), http.StatusOK, &methods)
	require.Len(t, methods, 3)
	money(t, "100.00", methods[0].Amount)
	money(t, "59.50", methods[1].Amount)
}

func TestRouteGating(t *testing.T) {
	c := newTestServer(t)
	admin := c.login("admin", "admin-secret")
	c.expect(c.do(http.MethodPost, "/users", admin, gin.H{
		"username": "omar", "name": "Omar", "password": "cashier-pass", "role": "cashier",
	}), http.StatusCreated, nil)
	cashier := c.login("omar", "cashier-pass")

	c.expect(c.do(http.MethodGet, "/ping", "", nil), http.StatusOK, nil)
	c.expect(c.do(http.MethodGet, "/orders", "", nil), http.StatusUnauthorized, nil)
	c.expect(c.do(http.MethodPost, "/login", "", gin.H{"username": "omar", "password": "wrong-pass"}), http.StatusUnauthorized, nil)

	forbidden := []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodPut, "/settings"},
		{http.MethodPost, "/categories"},
		{http.MethodGet, "/settlements"},
		{http.MethodGet, "/inventory"},
		{http.MethodPost, "/tables"},
		{http.MethodGet, "/reports/top-items"},
	}
	for _, tc := range forbidden {
		w := c.do(tc.method, tc.path, cashier, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, w.Body.String(), `"kind":"authorization"`)
	}

	c.expect(c.do(http.MethodGet, "/settings", cashier, nil), http.StatusOK, nil)
	c.expect(c.do(http.MethodGet, "/orders/abc", cashier, nil), http.StatusBadRequest, nil)
	c.expect(c.do(http.MethodGet, "/orders/999", cashier, nil), http.StatusNotFound, nil)
	c.expect(c.do(http.MethodGet, "/reports/sales?from=2026-03-10&to=2026-03-01", admin, nil), http.StatusBadRequest, nil)

	c.expect(c.do(http.MethodPost, "/logout", cashier, nil), http.StatusOK, nil)
	c.expect(c.do(http.MethodGet, "/profile", cashier, nil), http.StatusUnauthorized, nil)
}

func TestArabicErrorTitles(t *testing.T) {
	c := newTestServer(t)
	admin := c.login("admin", "admin-secret")

	req := httptest.NewRequest(http.MethodGet, "/orders/999", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	req.Header.Set("Accept-Language", "ar-SA,ar;q=0.9,en;q=0.5")
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	var env struct {
		Data utils.ErrorData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, utils.KindNotFound, env.Data.Kind)
	assert.Equal(t, utils.KindTitle(utils.KindNotFound, utils.LangArabic), env.Data.Title)
}

func TestStoreLanguageIsTheErrorFallback(t *testing.T) {
	c := newTestServer(t)
	admin := c.login("admin", "admin-secret")

	title := func() string {
		var env struct {
			Data utils.ErrorData `json:"data"`
		}
		w := c.do(http.MethodGet, "/orders/999", admin, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return env.Data.Title
	}
	assert.Equal(t, utils.KindTitle(utils.KindNotFound, utils.LangEnglish), title())

	c.expect(c.do(http.MethodPut, "/settings", admin, gin.H{"default_language": "ar"}), http.StatusOK, nil)
	assert.Equal(t, utils.KindTitle(utils.KindNotFound, utils.LangArabic), title())

	req := httptest.NewRequest(http.MethodGet, "/orders/999", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	var env struct {
		Data utils.ErrorData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, utils.KindTitle(utils.KindNotFound, utils.LangEnglish), env.Data.Title, "an explicit header still wins")
}
