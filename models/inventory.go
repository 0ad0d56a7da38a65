package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	NameEn       string          `gorm:"type:varchar(255);not null" json:"name_en"`
	NameAr       string          `gorm:"type:varchar(255)" json:"name_ar"`
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"quantity"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"reorder_level"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_cost"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// LowStock reports whether the quantity on hand is at or below the reorder level.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity.LessThanOrEqual(i.ReorderLevel)
}

type MovementType string

const (
	MovementIn     MovementType = "in"
	MovementOut    MovementType = "out"
	MovementAdjust MovementType = "adjust"
)

// StockMovement is an append-only ledger line. For adjust movements Quantity is
// the signed delta.
type StockMovement struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InventoryItemID uint            `gorm:"not null;index" json:"inventory_item_id"`
	Type            MovementType    `gorm:"type:varchar(10);not null" json:"type"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Reason          string          `gorm:"type:varchar(255)" json:"reason"`
	UserID          uint            `gorm:"not null" json:"user_id"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}
