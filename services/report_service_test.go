package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

var reportDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func backdate(t *testing.T, db *gorm.DB, model interface{}, id uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(model).Where("id = ?", id).UpdateColumn("created_at", at).Error)
}

// seedSalesDay books two paid orders, one cancelled order and a refund on
// reportDay.
func seedSalesDay(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	f := seedCatalog(t, db)
	orders := NewOrderService(db, nil)
	payments := NewPaymentService(db, nil)
	cashier := seedUser(t, db, policy.RoleCashier)
	manager := seedUser(t, db, policy.RoleManager)

	morning := reportDay.Add(9*time.Hour + 15*time.Minute)
	afternoon := reportDay.Add(13*time.Hour + 40*time.Minute)

	kabsa, err := orders.Create(ctx, CreateOrderInput{Items: []LineRequest{kabsaRequest(f, 2)}})
	require.NoError(t, err)
	paid, err := payments.Record(ctx, kabsa.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("159.50"), AutoComplete: true})
	require.NoError(t, err)
	refund, err := payments.Refund(ctx, kabsa.ID, cashier.ID, RefundInput{Amount: dec("9.50"), Reason: "late", AuthorizedByID: manager.ID, AuthorizerPassword: "secret123"})
	require.NoError(t, err)
	backdate(t, db, &models.Order{}, kabsa.ID, morning)
	backdate(t, db, &models.Payment{}, paid.Payment.ID, morning)
	backdate(t, db, &models.Refund{}, refund.ID, afternoon)

	water, err := orders.Create(ctx, CreateOrderInput{Items: []LineRequest{{ItemID: f.water.ID, Quantity: 4}}})
	require.NoError(t, err)
	paid, err = payments.Record(ctx, water.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCard, Amount: dec("22.00"), AutoComplete: true})
	require.NoError(t, err)
	backdate(t, db, &models.Order{}, water.ID, afternoon)
	backdate(t, db, &models.Payment{}, paid.Payment.ID, afternoon)

	cancelled, err := orders.Create(ctx, CreateOrderInput{Items: []LineRequest{{ItemID: f.water.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = orders.Transition(ctx, cancelled.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	backdate(t, db, &models.Order{}, cancelled.ID, afternoon)
}

func dayRange(days int) Range {
	return Range{From: reportDay, To: reportDay.AddDate(0, 0, days)}
}

func TestSalesReport(t *testing.T) {
	db := setupTestDB(t)
	seedSalesDay(t, db)
	svc := NewReportService(db)

	report, err := svc.Sales(context.Background(), dayRange(1), false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.OrderCount)
	assert.Equal(t, 2, report.CompletedOrders)
	assert.Equal(t, 1, report.CancelledOrders)
	assertMoney(t, "165.00", report.Subtotal)
	assertMoney(t, "16.50", report.ServiceCharges)
	assertMoney(t, "181.50", report.GrossSales, "cancelled orders are excluded")
	assertMoney(t, "9.50", report.Refunds)
	assertMoney(t, "172.00", report.NetSales)
	assertMoney(t, "90.75", report.AverageOrder)
	assert.Nil(t, report.Previous)
}

func TestSalesReportIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedSalesDay(t, db)
	svc := NewReportService(db)
	ctx := context.Background()

	first, err := svc.Sales(ctx, dayRange(1), true)
	require.NoError(t, err)
	second, err := svc.Sales(ctx, dayRange(1), true)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	require.NotNil(t, first.Previous)
	assert.Equal(t, reportDay.AddDate(0, 0, -1), first.Previous.Range.From)
	assert.Equal(t, 0, first.Previous.OrderCount)
}

func TestBreakdownReports(t *testing.T) {
	db := setupTestDB(t)
	seedSalesDay(t, db)
	svc := NewReportService(db)
	ctx := context.Background()

	top, err := svc.TopItems(ctx, dayRange(1), 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Water", top[0].NameEn)
	assert.Equal(t, 4, top[0].Quantity)
	assert.Equal(t, "Kabsa", top[1].NameEn)
	assertMoney(t, "145.00", top[1].Revenue)

	top, err = svc.TopItems(ctx, dayRange(1), 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	cats, err := svc.Categories(ctx, dayRange(1))
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Mains", cats[0].NameEn)
	assertMoney(t, "145.00", cats[0].Revenue)
	assert.Equal(t, "Drinks", cats[1].NameEn)
	assertMoney(t, "20.00", cats[1].Revenue)

	methods, err := svc.PaymentMethods(ctx, dayRange(1))
	require.NoError(t, err)
	require.Len(t, methods, 3)
	assert.Equal(t, models.PaymentMethodCash, methods[0].Method)
	assertMoney(t, "159.50", methods[0].Amount)
	assertMoney(t, "22.00", methods[1].Amount)
	assert.Equal(t, 0, methods[2].Count)

	hourly, err := svc.Hourly(ctx, dayRange(1))
	require.NoError(t, err)
	require.Len(t, hourly, 24)
	assert.Equal(t, 1, hourly[9].OrderCount)
	assertMoney(t, "159.50", hourly[9].Sales)
	assert.Equal(t, 1, hourly[13].OrderCount)
	assert.Equal(t, 0, hourly[12].OrderCount)

	series, err := svc.TimeSeries(ctx, Range{From: reportDay.AddDate(0, 0, -1), To: reportDay.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "2026-03-09", series[0].Date)
	assert.Equal(t, 0, series[0].OrderCount)
	assert.Equal(t, "2026-03-10", series[1].Date)
	assert.Equal(t, 2, series[1].OrderCount)
	assertMoney(t, "181.50", series[1].Sales)
}

func TestReportsBucketInStoreTimezone(t *testing.T) {
	db := setupTestDB(t)
	seedSalesDay(t, db)
	svc := NewReportService(db)
	ctx := context.Background()

	_, err := NewSettingsService(db).Update(ctx, UpdateSettingsInput{Timezone: strPtr("Asia/Qatar")})
	require.NoError(t, err)

	hourly, err := svc.Hourly(ctx, dayRange(1))
	require.NoError(t, err)
	assert.Equal(t, 0, hourly[9].OrderCount)
	assert.Equal(t, 1, hourly[12].OrderCount, "09:15 UTC is 12:15 in Doha")
	assertMoney(t, "159.50", hourly[12].Sales)
	assert.Equal(t, 1, hourly[16].OrderCount)

	series, err := svc.TimeSeries(ctx, dayRange(1))
	require.NoError(t, err)
	require.Len(t, series, 2, "a UTC day spans two Doha days")
	assert.Equal(t, "2026-03-10", series[0].Date)
	assert.Equal(t, 2, series[0].OrderCount)
	assert.Equal(t, "2026-03-11", series[1].Date)
	assert.Equal(t, 0, series[1].OrderCount)

	_, err = NewSettingsService(db).Update(ctx, UpdateSettingsInput{Timezone: strPtr("Mars/Olympus")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestGenerateDailyReportIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedSalesDay(t, db)
	svc := NewReportService(db)
	ctx := context.Background()

	first, err := svc.Generate(ctx, "2026-03-10")
	require.NoError(t, err)
	second, err := svc.Generate(ctx, "2026-03-10")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(3), second.OrderCount)
	assert.Equal(t, int64(1), second.CancelledOrders)
	assertMoney(t, "181.50", second.GrossSales)
	assertMoney(t, "159.50", second.CashSales)
	assertMoney(t, "22.00", second.CardSales)
	assertMoney(t, "9.50", second.Refunds)
	assertMoney(t, "172.00", second.NetSales)
	assertMoney(t, "16.50", second.ServiceCharges)

	var rows int64
	require.NoError(t, db.Model(&models.DailyReport{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	list, err := svc.DailyReports(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Generate(ctx, "10/03/2026")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestResolveRange(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }

	r, err := svc.ResolveRange(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), r.To)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), r.From)

	from := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	_, err = svc.ResolveRange(&from, &to)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	prev := Range{From: from, To: from.AddDate(0, 0, 7)}.Previous()
	assert.Equal(t, from.AddDate(0, 0, -7), prev.From)
	assert.Equal(t, from, prev.To)
}
