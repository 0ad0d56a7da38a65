package models

import (
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

// StoreSettings holds the single row of runtime-editable store configuration.
type StoreSettings struct {
	ID                uint            `gorm:"primaryKey" json:"-"`
	ServiceChargeRate decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"service_charge_rate"`
	Currency          string          `gorm:"type:varchar(3);not null" json:"currency"`
	DefaultLanguage   string          `gorm:"type:varchar(2);not null" json:"default_language"`
	RestaurantNameEn  string          `gorm:"type:varchar(255)" json:"restaurant_name_en"`
	RestaurantNameAr  string          `gorm:"type:varchar(255)" json:"restaurant_name_ar"`
	// Timezone is an IANA zone name used to bucket hourly and daily reports.
	Timezone  string    `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultServiceChargeRate is 10%.
var DefaultServiceChargeRate = decimal.New(10, -2)

// Location resolves Timezone, falling back to UTC.
func (s *StoreSettings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
