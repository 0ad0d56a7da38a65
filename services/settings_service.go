package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type SettingsService struct {
	db       *gorm.DB
	language atomic.Value
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) Get(ctx context.Context) (*models.StoreSettings, error) {
	return loadSettings(s.db.WithContext(ctx))
}

// DefaultLanguage is the store's fallback language for localised responses.
// The value is cached after the first read and refreshed by Update.
func (s *SettingsService) DefaultLanguage(ctx context.Context) string {
	if lang, ok := s.language.Load().(string); ok {
		return lang
	}
	settings, err := s.Get(ctx)
	if err != nil {
		utils.ErrorLogger.Warnf("Falling back to %s: %v", utils.DefaultLanguage, err)
		return utils.DefaultLanguage
	}
	s.language.Store(settings.DefaultLanguage)
	return settings.DefaultLanguage
}

func loadSettings(db *gorm.DB) (*models.StoreSettings, error) {
	var settings models.StoreSettings
	if err := db.Order("id").First(&settings).Error; err != nil {
		return nil, utils.WrapDBError(err, "store settings")
	}
	return &settings, nil
}

type UpdateSettingsInput struct {
	ServiceChargeRate *decimal.Decimal `json:"service_charge_rate"`
	Currency          *string          `json:"currency"`
	DefaultLanguage   *string          `json:"default_language"`
	RestaurantNameEn  *string          `json:"restaurant_name_en"`
	RestaurantNameAr  *string          `json:"restaurant_name_ar"`
	Timezone          *string          `json:"timezone"`
}

func (s *SettingsService) Update(ctx context.Context, in UpdateSettingsInput) (*models.StoreSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if in.ServiceChargeRate != nil {
		if in.ServiceChargeRate.IsNegative() || in.ServiceChargeRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, utils.NewValidationError("service charge rate must be between 0 and 1")
		}
		settings.ServiceChargeRate = *in.ServiceChargeRate
	}
	if in.Currency != nil {
		if len(*in.Currency) != 3 {
			return nil, utils.NewValidationError("currency must be a 3-letter code")
		}
		settings.Currency = *in.Currency
	}
	if in.DefaultLanguage != nil {
		if *in.DefaultLanguage != utils.LangEnglish && *in.DefaultLanguage != utils.LangArabic {
			return nil, utils.NewValidationError("default language must be en or ar")
		}
		settings.DefaultLanguage = *in.DefaultLanguage
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil || *in.Timezone == "" {
			return nil, utils.NewValidationError("unknown timezone %q", *in.Timezone)
		}
		settings.Timezone = *in.Timezone
	}
	if in.RestaurantNameEn != nil {
		settings.RestaurantNameEn = *in.RestaurantNameEn
	}
	if in.RestaurantNameAr != nil {
		settings.RestaurantNameAr = *in.RestaurantNameAr
	}

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, utils.WrapDBError(err, "store settings")
	}
	s.language.Store(settings.DefaultLanguage)
	return settings, nil
}
