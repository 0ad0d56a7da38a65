package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type OrderService struct {
	db        *gorm.DB
	publisher Publisher
}

func NewOrderService(db *gorm.DB, publisher Publisher) *OrderService {
	return &OrderService{db: db, publisher: publisherOrNoop(publisher)}
}

// CreateOrderInput carries either priced lines or, for the header-first flow,
// declared amounts only. Declared amounts are checked against the lines when
// both are present.
type CreateOrderInput struct {
	Type          models.OrderType `json:"type"`
	Source        string           `json:"source"`
	TableNumber   *string          `json:"table_number"`
	CustomerName  *string          `json:"customer_name"`
	CustomerPhone *string          `json:"customer_phone"`
	Items         []LineRequest    `json:"items"`

	Subtotal      *decimal.Decimal `json:"subtotal"`
	ServiceCharge *decimal.Decimal `json:"service_charge"`
	Discount      *decimal.Decimal `json:"discount"`
	Total         *decimal.Decimal `json:"total"`

	CreatedByID *uint `json:"-"`
}

func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.Type == "" {
		in.Type = models.OrderTypeDineIn
	}
	if !in.Type.Valid() {
		return nil, utils.NewValidationError("invalid order type %q", in.Type)
	}
	if in.Source == "" {
		in.Source = models.SourcePOS
	}
	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}
	if discount.IsNegative() {
		return nil, utils.NewValidationError("discount must not be negative")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}

		order = models.Order{
			Type:              in.Type,
			Source:            in.Source,
			Status:            models.OrderStatusPending,
			TableNumber:       in.TableNumber,
			CustomerName:      in.CustomerName,
			CustomerPhone:     in.CustomerPhone,
			ServiceChargeRate: settings.ServiceChargeRate,
			Discount:          utils.Round2(discount),
			CreatedByID:       in.CreatedByID,
			Items:             []models.OrderItem{},
		}

		if len(in.Items) > 0 {
			lines := make([]CartLine, 0, len(in.Items))
			for _, req := range in.Items {
				line, err := resolveLine(tx, req)
				if err != nil {
					return err
				}
				lines = append(lines, line)
				order.Items = append(order.Items, orderItemFromLine(line))
			}
			order.Subtotal = sumLines(lines)
			order.ServiceCharge = serviceChargeFor(order.Subtotal, order.ServiceChargeRate)
			order.Total = order.Subtotal.Add(order.ServiceCharge).Sub(order.Discount)
			if err := matchDeclared(in, &order); err != nil {
				return err
			}
		} else {
			if err := applyDeclared(in, &order); err != nil {
				return err
			}
		}
		if order.Total.IsNegative() {
			return utils.NewValidationError("order total must not be negative")
		}

		number, err := nextOrderNumber(tx)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(&order).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return &utils.AppError{Kind: utils.KindConflict, Message: "order number already allocated", Err: err}
			}
			return utils.WrapDBError(err, "order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order #%d created (%s, %s) total %s", order.OrderNumber, order.Type, order.Source, order.Total.StringFixed(2))
	s.publisher.Publish(EventOrderCreated, &order)
	return &order, nil
}

// matchDeclared rejects declared amounts that disagree with the priced lines.
func matchDeclared(in CreateOrderInput, order *models.Order) error {
	checks := []struct {
		name     string
		declared *decimal.Decimal
		computed decimal.Decimal
	}{
		{"subtotal", in.Subtotal, order.Subtotal},
		{"service_charge", in.ServiceCharge, order.ServiceCharge},
		{"total", in.Total, order.Total},
	}
	for _, c := range checks {
		if c.declared != nil && !c.declared.Equal(c.computed) {
			return utils.NewValidationError("%s %s does not match computed %s", c.name, c.declared.StringFixed(2), c.computed.StringFixed(2))
		}
	}
	return nil
}

func applyDeclared(in CreateOrderInput, order *models.Order) error {
	if in.Subtotal == nil || in.ServiceCharge == nil || in.Total == nil {
		return utils.NewValidationError("subtotal, service_charge and total are required when no items are given")
	}
	if in.Subtotal.IsNegative() || in.ServiceCharge.IsNegative() || in.Total.IsNegative() {
		return utils.NewValidationError("order amounts must not be negative")
	}
	order.Subtotal = utils.Round2(*in.Subtotal)
	order.ServiceCharge = utils.Round2(*in.ServiceCharge)
	order.Total = utils.Round2(*in.Total)
	if !order.BalancesTotals() {
		return utils.NewValidationError("total %s must equal subtotal + service charge - discount (%s)",
			order.Total.StringFixed(2), order.Subtotal.Add(order.ServiceCharge).Sub(order.Discount).StringFixed(2))
	}
	return nil
}

// nextOrderNumber bumps the counter row inside tx, so the number is released if
// the transaction rolls back.
func nextOrderNumber(tx *gorm.DB) (int64, error) {
	res := tx.Model(&models.OrderSequence{}).
		Where("name = ?", database.OrderSequenceName).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, utils.WrapDBError(res.Error, "order sequence")
	}
	if res.RowsAffected != 1 {
		return 0, &utils.AppError{Kind: utils.KindInternal, Message: "order sequence is not initialised"}
	}
	var seq models.OrderSequence
	if err := tx.Where("name = ?", database.OrderSequenceName).First(&seq).Error; err != nil {
		return 0, utils.WrapDBError(err, "order sequence")
	}
	return seq.Value, nil
}

func orderItemFromLine(line CartLine) models.OrderItem {
	item := models.OrderItem{
		ItemID:     line.ItemID,
		ItemNameEn: line.NameEn,
		ItemNameAr: line.NameAr,
		SizeID:     line.SizeID,
		SizeNameEn: line.SizeNameEn,
		SizeNameAr: line.SizeNameAr,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		TotalPrice: utils.Round2(line.LineTotal()),
		Notes:      line.Notes,
		Modifiers:  []models.OrderItemModifier{},
	}
	for _, m := range line.Modifiers {
		item.Modifiers = append(item.Modifiers, models.OrderItemModifier{
			ModifierID: m.ModifierID,
			NameEn:     m.NameEn,
			NameAr:     m.NameAr,
			Price:      m.Price,
		})
	}
	return item
}

// AddItemInput is a catalog line plus an optional client-computed line total.
type AddItemInput struct {
	LineRequest
	TotalPrice *decimal.Decimal `json:"total_price"`
}

func (s *OrderService) AddItem(ctx context.Context, orderID uint, in AddItemInput) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadMutableOrder(tx, orderID, &order); err != nil {
			return err
		}
		line, err := resolveLine(tx, in.LineRequest)
		if err != nil {
			return err
		}
		item := orderItemFromLine(line)
		if in.TotalPrice != nil && !in.TotalPrice.Equal(item.TotalPrice) {
			return utils.NewValidationError("total_price %s does not match unit price x quantity + modifiers (%s)",
				in.TotalPrice.StringFixed(2), item.TotalPrice.StringFixed(2))
		}
		item.OrderID = order.ID
		if err := tx.Create(&item).Error; err != nil {
			return utils.WrapDBError(err, "order item")
		}
		return recalculate(tx, &order)
	})
	if err != nil {
		return nil, err
	}
	return s.afterUpdate(ctx, order.ID)
}

func (s *OrderService) RemoveItem(ctx context.Context, orderID, orderItemID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadMutableOrder(tx, orderID, &order); err != nil {
			return err
		}
		var item models.OrderItem
		if err := tx.Where("id = ? AND order_id = ?", orderItemID, order.ID).First(&item).Error; err != nil {
			return utils.WrapDBError(err, "order item")
		}
		if err := tx.Where("order_item_id = ?", item.ID).Delete(&models.OrderItemModifier{}).Error; err != nil {
			return utils.WrapDBError(err, "order item modifiers")
		}
		if err := tx.Delete(&item).Error; err != nil {
			return utils.WrapDBError(err, "order item")
		}
		return recalculate(tx, &order)
	})
	if err != nil {
		return nil, err
	}
	return s.afterUpdate(ctx, order.ID)
}

func loadMutableOrder(tx *gorm.DB, orderID uint, order *models.Order) error {
	if err := tx.First(order, orderID).Error; err != nil {
		return utils.WrapDBError(err, "order")
	}
	if order.Status.Terminal() {
		return utils.NewInvalidStateError("order #%d is %s and can no longer change", order.OrderNumber, order.Status)
	}
	return nil
}

// recalculate derives the order amounts from its persisted items. The discount
// and the rate captured at creation are kept.
func recalculate(tx *gorm.DB, order *models.Order) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return utils.WrapDBError(err, "order items")
	}
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}
	order.Subtotal = utils.Round2(subtotal)
	order.ServiceCharge = serviceChargeFor(order.Subtotal, order.ServiceChargeRate)
	order.Total = order.Subtotal.Add(order.ServiceCharge).Sub(order.Discount)
	if order.Total.IsNegative() {
		return utils.NewValidationError("order total would become negative")
	}
	err := tx.Model(order).Updates(map[string]interface{}{
		"subtotal":       order.Subtotal,
		"service_charge": order.ServiceCharge,
		"total":          order.Total,
	}).Error
	return utils.WrapDBError(err, "order")
}

// Transition moves an order forward through its lifecycle or cancels it.
func (s *OrderService) Transition(ctx context.Context, orderID uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, utils.NewValidationError("invalid order status %q", next)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return utils.WrapDBError(err, "order")
		}
		return transitionOrder(tx, &order, next)
	})
	if err != nil {
		return nil, err
	}
	return s.afterUpdate(ctx, orderID)
}

func transitionOrder(tx *gorm.DB, order *models.Order, next models.OrderStatus) error {
	if order.Status.Terminal() {
		return utils.NewInvalidStateError("order #%d is already %s", order.OrderNumber, order.Status)
	}
	if !order.Status.CanAdvanceTo(next) {
		return utils.NewInvalidStateError("order #%d cannot move from %s to %s", order.OrderNumber, order.Status, next)
	}

	now := tx.NowFunc()
	updates := map[string]interface{}{"status": next}
	switch next {
	case models.OrderStatusCompleted:
		paid, err := completedPaymentsTotal(tx, order.ID)
		if err != nil {
			return err
		}
		if paid.LessThan(order.Total) {
			return utils.NewInvalidStateError("order #%d is not fully paid: %s of %s",
				order.OrderNumber, paid.StringFixed(2), order.Total.StringFixed(2))
		}
		updates["completed_at"] = now
		order.CompletedAt = &now
	case models.OrderStatusCancelled:
		updates["cancelled_at"] = now
		order.CancelledAt = &now
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return utils.WrapDBError(err, "order")
	}
	order.Status = next
	return nil
}

func (s *OrderService) afterUpdate(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(EventOrderUpdated, order)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Modifiers").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, orderID).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "order")
	}
	return &order, nil
}

type OrderFilter struct {
	Status *models.OrderStatus
	Source string
	Type   *models.OrderType
	From   *time.Time
	To     *time.Time
	Limit  int
}

// List returns the newest orders first.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Modifiers").
		Order("created_at DESC, id DESC")
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("created_at < ?", f.To.UTC())
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	orders := []models.Order{}
	if err := q.Limit(limit).Find(&orders).Error; err != nil {
		return nil, utils.WrapDBError(err, "orders")
	}
	return orders, nil
}

func completedPaymentsTotal(tx *gorm.DB, orderID uint) (decimal.Decimal, error) {
	var payments []models.Payment
	err := tx.Where("order_id = ? AND status = ?", orderID, models.PaymentStatusCompleted).Find(&payments).Error
	if err != nil {
		return decimal.Zero, utils.WrapDBError(err, "payments")
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}
