package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots the catalog name and price at the time it was added.
type OrderItem struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	OrderID    uint                `gorm:"not null;index" json:"order_id"`
	Order      *Order              `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ItemID     uint                `gorm:"not null;index" json:"item_id"`
	ItemNameEn string              `gorm:"type:varchar(255);not null" json:"item_name_en"`
	ItemNameAr string              `gorm:"type:varchar(255)" json:"item_name_ar"`
	SizeID     *uint               `json:"size_id,omitempty"`
	SizeNameEn *string             `gorm:"type:varchar(100)" json:"size_name_en,omitempty"`
	SizeNameAr *string             `gorm:"type:varchar(100)" json:"size_name_ar,omitempty"`
	Quantity   int                 `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Notes      string              `gorm:"type:text" json:"notes"`
	Modifiers  []OrderItemModifier `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"modifiers"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type OrderItemModifier struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderItemID uint            `gorm:"not null;index" json:"order_item_id"`
	ModifierID  uint            `gorm:"not null" json:"modifier_id"`
	NameEn      string          `gorm:"type:varchar(100);not null" json:"name_en"`
	NameAr      string          `gorm:"type:varchar(100)" json:"name_ar"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}
