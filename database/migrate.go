package database

import (
	"errors"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

// OrderSequenceName is the counter row backing order numbers.
const OrderSequenceName = "orders"

// Models lists every table, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Table{},
		&models.Category{},
		&models.Modifier{},
		&models.Item{},
		&models.ItemSize{},
		&models.ItemModifier{},
		&models.OrderSequence{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.Shift{},
		&models.Payment{},
		&models.Refund{},
		&models.Settlement{},
		&models.DailyReport{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.StoreSettings{},
	}
}

// Migrate creates the schema and the singleton rows. It is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Item{}, "Modifiers", &models.ItemModifier{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	if err := seedSingletons(db); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

func seedSingletons(db *gorm.DB) error {
	var seq models.OrderSequence
	err := db.Where("name = ?", OrderSequenceName).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := db.Create(&models.OrderSequence{Name: OrderSequenceName, Value: 0}).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.StoreSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(&models.StoreSettings{
			ID:                1,
			ServiceChargeRate: models.DefaultServiceChargeRate,
			Currency:          "QAR",
			DefaultLanguage:   utils.LangEnglish,
			Timezone:          "UTC",
		}).Error
	}
	return nil
}
