package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	dateLayout       = "2006-01-02"
	defaultRangeDays = 7
	defaultTopItems  = 10
	maxTopItems      = 100
)

// ReportService aggregates persisted orders, payments and refunds. Every report
// is a pure function of the rows in its window.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: db.NowFunc}
}

// Range is the half-open window [From, To).
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Previous is the window of equal length that ends where r starts.
func (r Range) Previous() Range {
	return Range{From: r.From.Add(-r.To.Sub(r.From)), To: r.From}
}

// ResolveRange fills missing bounds: the window defaults to the last seven days
// ending tomorrow at midnight UTC. A from after to is rejected.
func (s *ReportService) ResolveRange(from, to *time.Time) (Range, error) {
	var r Range
	if to != nil {
		r.To = to.UTC()
	} else {
		r.To = truncateDay(s.now()).AddDate(0, 0, 1)
	}
	if from != nil {
		r.From = from.UTC()
	} else {
		r.From = r.To.AddDate(0, 0, -defaultRangeDays)
	}
	if r.From.After(r.To) {
		return Range{}, utils.NewValidationError("from must not be after to")
	}
	return r, nil
}

type SalesReport struct {
	Range           Range           `json:"range"`
	OrderCount      int             `json:"order_count"`
	CompletedOrders int             `json:"completed_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ServiceCharges  decimal.Decimal `json:"service_charges"`
	Discounts       decimal.Decimal `json:"discounts"`
	GrossSales      decimal.Decimal `json:"gross_sales"`
	Refunds         decimal.Decimal `json:"refunds"`
	NetSales        decimal.Decimal `json:"net_sales"`
	AverageOrder    decimal.Decimal `json:"average_order"`
	Previous        *SalesReport    `json:"previous,omitempty"`
}

// Sales summarises the window. With compare set, the previous window is
// computed alongside it.
func (s *ReportService) Sales(ctx context.Context, r Range, compare bool) (*SalesReport, error) {
	if !compare {
		return s.sales(ctx, r)
	}

	var current, previous *SalesReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.sales(gctx, r)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.sales(gctx, r.Previous())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	current.Previous = previous
	return current, nil
}

func (s *ReportService) sales(ctx context.Context, r Range) (*SalesReport, error) {
	orders, err := s.orders(ctx, r)
	if err != nil {
		return nil, err
	}
	refunds, err := s.refunds(ctx, r)
	if err != nil {
		return nil, err
	}

	report := SalesReport{
		Range:          r,
		Subtotal:       decimal.Zero,
		ServiceCharges: decimal.Zero,
		Discounts:      decimal.Zero,
		GrossSales:     decimal.Zero,
		Refunds:        decimal.Zero,
	}
	for _, o := range orders {
		report.OrderCount++
		switch o.Status {
		case models.OrderStatusCancelled:
			report.CancelledOrders++
			continue
		case models.OrderStatusCompleted:
			report.CompletedOrders++
		}
		report.Subtotal = report.Subtotal.Add(o.Subtotal)
		report.ServiceCharges = report.ServiceCharges.Add(o.ServiceCharge)
		report.Discounts = report.Discounts.Add(o.Discount)
		report.GrossSales = report.GrossSales.Add(o.Total)
	}
	for _, rf := range refunds {
		report.Refunds = report.Refunds.Add(rf.Amount)
	}
	report.NetSales = report.GrossSales.Sub(report.Refunds)
	report.AverageOrder = decimal.Zero
	if billable := report.OrderCount - report.CancelledOrders; billable > 0 {
		report.AverageOrder = utils.Round2(report.GrossSales.Div(decimal.NewFromInt(int64(billable))))
	}
	return &report, nil
}

type DayBucket struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"order_count"`
	Sales      decimal.Decimal `json:"sales"`
}

// TimeSeries buckets non-cancelled orders per day in the store timezone. Days
// without orders are present with zero values.
func (s *ReportService) TimeSeries(ctx context.Context, r Range) ([]DayBucket, error) {
	orders, err := s.orders(ctx, r)
	if err != nil {
		return nil, err
	}
	loc, err := s.location(ctx)
	if err != nil {
		return nil, err
	}
	buckets := []DayBucket{}
	index := map[string]int{}
	from := r.From.In(loc)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for day := start; day.Before(r.To); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		index[key] = len(buckets)
		buckets = append(buckets, DayBucket{Date: key, Sales: decimal.Zero})
	}
	for _, o := range billable(orders) {
		i, ok := index[o.CreatedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		buckets[i].OrderCount++
		buckets[i].Sales = buckets[i].Sales.Add(o.Total)
	}
	return buckets, nil
}

func (s *ReportService) location(ctx context.Context) (*time.Location, error) {
	settings, err := loadSettings(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return settings.Location(), nil
}

type HourBucket struct {
	Hour       int             `json:"hour"`
	OrderCount int             `json:"order_count"`
	Sales      decimal.Decimal `json:"sales"`
}

// Hourly folds the window into 24 hour-of-day buckets in the store timezone.
func (s *ReportService) Hourly(ctx context.Context, r Range) ([]HourBucket, error) {
	orders, err := s.orders(ctx, r)
	if err != nil {
		return nil, err
	}
	loc, err := s.location(ctx)
	if err != nil {
		return nil, err
	}
	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h] = HourBucket{Hour: h, Sales: decimal.Zero}
	}
	for _, o := range billable(orders) {
		h := o.CreatedAt.In(loc).Hour()
		buckets[h].OrderCount++
		buckets[h].Sales = buckets[h].Sales.Add(o.Total)
	}
	return buckets, nil
}

type CategorySales struct {
	CategoryID uint            `json:"category_id"`
	NameEn     string          `json:"name_en"`
	NameAr     string          `json:"name_ar"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// Categories attributes line revenue to the current category of each item.
func (s *ReportService) Categories(ctx context.Context, r Range) ([]CategorySales, error) {
	lines, err := s.lines(ctx, r)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]uint, 0, len(lines))
	for _, l := range lines {
		itemIDs = append(itemIDs, l.ItemID)
	}
	db := s.db.WithContext(ctx)
	var items []models.Item
	if len(itemIDs) > 0 {
		if err := db.Preload("Category").Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
			return nil, utils.WrapDBError(err, "items")
		}
	}
	categoryOf := make(map[uint]*models.Category, len(items))
	for i := range items {
		categoryOf[items[i].ID] = items[i].Category
	}

	byCategory := map[uint]*CategorySales{}
	for _, l := range lines {
		cat := categoryOf[l.ItemID]
		var id uint
		row := &CategorySales{Revenue: decimal.Zero}
		if cat != nil {
			id = cat.ID
			row.CategoryID, row.NameEn, row.NameAr = cat.ID, cat.NameEn, cat.NameAr
		}
		if existing, ok := byCategory[id]; ok {
			row = existing
		} else {
			byCategory[id] = row
		}
		row.Quantity += l.Quantity
		row.Revenue = row.Revenue.Add(l.TotalPrice)
	}

	out := make([]CategorySales, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

type MethodSales struct {
	Method models.PaymentMethod `json:"method"`
	Count  int                  `json:"count"`
	Amount decimal.Decimal      `json:"amount"`
}

// PaymentMethods totals completed payments taken in the window. Every method is
// listed, in a fixed order.
func (s *ReportService) PaymentMethods(ctx context.Context, r Range) ([]MethodSales, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at < ?", models.PaymentStatusCompleted, r.From, r.To).
		Order("id").
		Find(&payments).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "payments")
	}
	out := []MethodSales{
		{Method: models.PaymentMethodCash, Amount: decimal.Zero},
		{Method: models.PaymentMethodCard, Amount: decimal.Zero},
		{Method: models.PaymentMethodCredit, Amount: decimal.Zero},
	}
	for _, p := range payments {
		for i := range out {
			if out[i].Method == p.Method {
				out[i].Count++
				out[i].Amount = out[i].Amount.Add(p.Amount)
			}
		}
	}
	return out, nil
}

type ItemSales struct {
	ItemID   uint            `json:"item_id"`
	NameEn   string          `json:"name_en"`
	NameAr   string          `json:"name_ar"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// TopItems ranks items by quantity sold, then revenue, then id.
func (s *ReportService) TopItems(ctx context.Context, r Range, limit int) ([]ItemSales, error) {
	if limit <= 0 {
		limit = defaultTopItems
	}
	if limit > maxTopItems {
		limit = maxTopItems
	}
	lines, err := s.lines(ctx, r)
	if err != nil {
		return nil, err
	}

	byItem := map[uint]*ItemSales{}
	for _, l := range lines {
		row, ok := byItem[l.ItemID]
		if !ok {
			row = &ItemSales{ItemID: l.ItemID, NameEn: l.ItemNameEn, NameAr: l.ItemNameAr, Revenue: decimal.Zero}
			byItem[l.ItemID] = row
		}
		row.Quantity += l.Quantity
		row.Revenue = row.Revenue.Add(l.TotalPrice)
	}
	out := make([]ItemSales, 0, len(byItem))
	for _, row := range byItem {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].ItemID < out[j].ItemID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Generate materialises the daily report for a UTC date. Running it again
// overwrites the row with freshly computed figures.
func (s *ReportService) Generate(ctx context.Context, date string) (*models.DailyReport, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, utils.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	r := Range{From: day, To: day.AddDate(0, 0, 1)}

	sales, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}
	methods, err := s.PaymentMethods(ctx, r)
	if err != nil {
		return nil, err
	}

	report := models.DailyReport{
		Date:            day.Format(dateLayout),
		OrderCount:      int64(sales.OrderCount),
		CompletedOrders: int64(sales.CompletedOrders),
		CancelledOrders: int64(sales.CancelledOrders),
		GrossSales:      sales.GrossSales,
		Refunds:         sales.Refunds,
		NetSales:        sales.NetSales,
		ServiceCharges:  sales.ServiceCharges,
		Discounts:       sales.Discounts,
		CashSales:       methods[0].Amount,
		CardSales:       methods[1].Amount,
		CreditSales:     methods[2].Amount,
		GeneratedAt:     s.now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_count", "completed_orders", "cancelled_orders", "gross_sales", "cash_sales", "card_sales", "credit_sales", "refunds", "net_sales", "service_charges", "discounts", "generated_at"}),
	}).Create(&report).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "daily report")
	}

	var stored models.DailyReport
	if err := s.db.WithContext(ctx).Where("date = ?", report.Date).First(&stored).Error; err != nil {
		return nil, utils.WrapDBError(err, "daily report")
	}
	utils.InfoLogger.Printf("Daily report %s generated: %d orders, net %s", stored.Date, stored.OrderCount, stored.NetSales.StringFixed(2))
	return &stored, nil
}

// DailyReports lists materialised days between from and to inclusive.
func (s *ReportService) DailyReports(ctx context.Context, from, to string) ([]models.DailyReport, error) {
	q := s.db.WithContext(ctx).Order("date")
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	reports := []models.DailyReport{}
	if err := q.Find(&reports).Error; err != nil {
		return nil, utils.WrapDBError(err, "daily reports")
	}
	return reports, nil
}

func (s *ReportService) orders(ctx context.Context, r Range) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", r.From, r.To).
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "orders")
	}
	return orders, nil
}

func (s *ReportService) refunds(ctx context.Context, r Range) ([]models.Refund, error) {
	var refunds []models.Refund
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", r.From, r.To).
		Order("id").
		Find(&refunds).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "refunds")
	}
	return refunds, nil
}

// lines returns the items of non-cancelled orders created in the window.
func (s *ReportService) lines(ctx context.Context, r Range) ([]models.OrderItem, error) {
	var lines []models.OrderItem
	err := s.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ? AND orders.created_at >= ? AND orders.created_at < ?", models.OrderStatusCancelled, r.From, r.To).
		Order("order_items.id").
		Find(&lines).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "order items")
	}
	return lines, nil
}

func billable(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != models.OrderStatusCancelled {
			out = append(out, o)
		}
	}
	return out
}
