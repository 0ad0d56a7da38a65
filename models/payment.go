package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCredit PaymentMethod = "credit"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodCredit:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is a tender record against an order. Payments are never edited after
// the fact; refunds are recorded separately.
type Payment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	Method       PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reference    string          `gorm:"type:varchar(100)" json:"reference"`
	Status       PaymentStatus   `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	RecordedByID uint            `gorm:"not null;index" json:"recorded_by_id"`
	ShiftID      *uint           `gorm:"index" json:"shift_id,omitempty"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Refund struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        uint            `gorm:"not null;index" json:"order_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reason         string          `gorm:"type:text;not null" json:"reason"`
	AuthorizedByID uint            `gorm:"not null" json:"authorized_by_id"`
	ProcessedByID  uint            `gorm:"not null" json:"processed_by_id"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
}
