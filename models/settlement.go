package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "pending"
	SettlementStatusCompleted SettlementStatus = "completed"
)

// Settlement reconciles what an aggregator reported against what was received.
// SettledAmount stays NULL until the payout is recorded.
type Settlement struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	Source             string           `gorm:"type:varchar(50);not null;index" json:"source"`
	WeekStart          time.Time        `gorm:"not null" json:"week_start"`
	WeekEnd            time.Time        `gorm:"not null" json:"week_end"`
	TotalAmount        decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	SettledAmount      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"settled_amount"`
	OrderCount         int64            `gorm:"not null;default:0" json:"order_count"`
	Status             SettlementStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ProcessorReference string           `gorm:"type:varchar(100)" json:"processor_reference"`
	Notes              string           `gorm:"type:text" json:"notes"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Discrepancy is TotalAmount minus SettledAmount, or nil while unsettled.
func (s *Settlement) Discrepancy() *decimal.Decimal {
	if s.SettledAmount == nil {
		return nil
	}
	d := s.TotalAmount.Sub(*s.SettledAmount)
	return &d
}
