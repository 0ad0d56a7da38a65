package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport is derived data. It can be regenerated at any time from orders,
// payments and refunds.
type DailyReport struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Date            string          `gorm:"type:varchar(10);not null;uniqueIndex" json:"date"`
	OrderCount      int64           `gorm:"not null" json:"order_count"`
	CompletedOrders int64           `gorm:"not null" json:"completed_orders"`
	CancelledOrders int64           `gorm:"not null" json:"cancelled_orders"`
	GrossSales      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_sales"`
	CashSales       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cash_sales"`
	CardSales       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"card_sales"`
	CreditSales     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"credit_sales"`
	Refunds         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"refunds"`
	NetSales        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_sales"`
	ServiceCharges  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_charges"`
	Discounts       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discounts"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
