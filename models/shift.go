package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftStatusActive ShiftStatus = "active"
	ShiftStatusClosed ShiftStatus = "closed"
)

// Shift is a cashier's drawer session. ActiveUserID mirrors UserID while the
// shift is open and is cleared on close; its unique index allows one open shift
// per user.
type Shift struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserID       uint             `gorm:"not null;index" json:"user_id"`
	ActiveUserID *uint            `gorm:"uniqueIndex" json:"-"`
	StartTime    time.Time        `gorm:"not null" json:"start_time"`
	EndTime      *time.Time       `json:"end_time,omitempty"`
	OpeningCash  decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"opening_cash"`
	ClosingCash  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_cash,omitempty"`
	CashSales    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"cash_sales"`
	CardSales    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"card_sales"`
	CreditSales  decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"credit_sales"`
	ExpectedCash decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"expected_cash"`
	Variance     decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"variance"`
	Status       ShiftStatus      `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Notes        string           `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
