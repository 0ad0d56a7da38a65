package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// SourcePOS marks orders taken at the counter; any other source is an aggregator name.
const SourcePOS = "pos"

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusPreparing: 2,
	OrderStatusReady:     3,
	OrderStatusCompleted: 4,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanAdvanceTo reports whether next lies strictly forward of s. Cancellation is
// reachable from every non-terminal status.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	cur, ok1 := orderStatusRank[s]
	nxt, ok2 := orderStatusRank[next]
	return ok1 && ok2 && nxt > cur
}

type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OrderNumber       int64           `gorm:"not null;uniqueIndex" json:"order_number"`
	Type              OrderType       `gorm:"type:varchar(20);not null" json:"type"`
	Source            string          `gorm:"type:varchar(50);not null;default:'pos';index" json:"source"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TableNumber       *string         `gorm:"type:varchar(20)" json:"table_number,omitempty"`
	CustomerName      *string         `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerPhone     *string         `gorm:"type:varchar(50)" json:"customer_phone,omitempty"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ServiceChargeRate decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"service_charge_rate"`
	ServiceCharge     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_charge"`
	Discount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedByID       *uint           `json:"created_by_id,omitempty"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Payments          []Payment       `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
}

// BalancesTotals reports whether total == subtotal + serviceCharge - discount.
func (o *Order) BalancesTotals() bool {
	return o.Total.Equal(o.Subtotal.Add(o.ServiceCharge).Sub(o.Discount))
}

// OrderSequence is the counter behind order numbers.
type OrderSequence struct {
	Name  string `gorm:"primaryKey;type:varchar(50)"`
	Value int64  `gorm:"not null"`
}
