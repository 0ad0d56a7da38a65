package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	NameEn        string          `gorm:"type:varchar(255);not null" json:"name_en"`
	NameAr        string          `gorm:"type:varchar(255);not null" json:"name_ar"`
	DescriptionEn string          `gorm:"type:text" json:"description_en"`
	DescriptionAr string          `gorm:"type:text" json:"description_ar"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	HasSizes      bool            `gorm:"not null;default:false" json:"has_sizes"`
	HasModifiers  bool            `gorm:"not null;default:false" json:"has_modifiers"`
	Active        bool            `gorm:"not null" json:"active"`
	SortOrder     int             `gorm:"not null;default:0" json:"sort_order"`
	Sizes         []ItemSize      `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"sizes,omitempty"`
	Modifiers     []Modifier      `gorm:"many2many:item_modifiers" json:"modifiers,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ResolvePrice prefers the size price when a size is chosen.
func (i *Item) ResolvePrice(size *ItemSize) decimal.Decimal {
	if size != nil {
		return size.Price
	}
	return i.Price
}

// FindSize returns the size with the given id if it belongs to the item.
func (i *Item) FindSize(sizeID uint) *ItemSize {
	for idx := range i.Sizes {
		if i.Sizes[idx].ID == sizeID {
			return &i.Sizes[idx]
		}
	}
	return nil
}

type ItemSize struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ItemID    uint            `gorm:"not null;index" json:"item_id"`
	NameEn    string          `gorm:"type:varchar(100);not null" json:"name_en"`
	NameAr    string          `gorm:"type:varchar(100);not null" json:"name_ar"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	SortOrder int             `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Modifier struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	NameEn    string          `gorm:"type:varchar(100);not null" json:"name_en"`
	NameAr    string          `gorm:"type:varchar(100);not null" json:"name_ar"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Active    bool            `gorm:"not null" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ItemModifier is the join row between items and the modifiers offered on them.
type ItemModifier struct {
	ItemID     uint `gorm:"primaryKey"`
	ModifierID uint `gorm:"primaryKey"`
}
