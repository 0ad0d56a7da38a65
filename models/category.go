package models

import "time"

// Category groups menu items. Categories are deactivated, never deleted, once
// items reference them.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NameEn    string    `gorm:"type:varchar(100);not null" json:"name_en"`
	NameAr    string    `gorm:"type:varchar(100);not null" json:"name_ar"`
	Icon      string    `gorm:"type:varchar(50)" json:"icon"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	Active    bool      `gorm:"not null" json:"active"`
	Items     []Item    `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
