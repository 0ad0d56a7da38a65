package models

import (
	"time"

	"github.com/yeremiapane/restaurant-pos/policy"
)

type User struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Username  string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Name      string      `gorm:"type:varchar(255);not null" json:"name"`
	Password  string      `gorm:"type:varchar(255);not null" json:"-"`
	Role      policy.Role `gorm:"type:varchar(20);not null" json:"role"`
	Active    bool        `gorm:"not null" json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
