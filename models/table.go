package models

import "time"

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"number"`
	Seats     int       `gorm:"not null;default:4" json:"seats"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
