package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

type CreateInventoryItemInput struct {
	NameEn       string          `json:"name_en" binding:"required"`
	NameAr       string          `json:"name_ar"`
	Unit         string          `json:"unit" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

func (s *InventoryService) Create(ctx context.Context, in CreateInventoryItemInput) (*models.InventoryItem, error) {
	if strings.TrimSpace(in.NameEn) == "" || strings.TrimSpace(in.Unit) == "" {
		return nil, utils.NewValidationError("name_en and unit are required")
	}
	if in.Quantity.IsNegative() || in.ReorderLevel.IsNegative() || in.UnitCost.IsNegative() {
		return nil, utils.NewValidationError("quantities and cost must not be negative")
	}
	item := models.InventoryItem{
		NameEn:       strings.TrimSpace(in.NameEn),
		NameAr:       strings.TrimSpace(in.NameAr),
		Unit:         strings.TrimSpace(in.Unit),
		Quantity:     in.Quantity,
		ReorderLevel: in.ReorderLevel,
		UnitCost:     utils.Round2(in.UnitCost),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, utils.WrapDBError(err, "inventory item")
	}
	return &item, nil
}

// InventoryView flags items at or below their reorder level.
type InventoryView struct {
	models.InventoryItem
	LowStock bool `json:"low_stock"`
}

func (s *InventoryService) List(ctx context.Context, lowStockOnly bool) ([]InventoryView, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Order("name_en, id").Find(&items).Error; err != nil {
		return nil, utils.WrapDBError(err, "inventory")
	}
	views := make([]InventoryView, 0, len(items))
	for _, it := range items {
		low := it.LowStock()
		if lowStockOnly && !low {
			continue
		}
		views = append(views, InventoryView{InventoryItem: it, LowStock: low})
	}
	return views, nil
}

type MovementInput struct {
	Type     models.MovementType `json:"type" binding:"required"`
	Quantity decimal.Decimal     `json:"quantity"`
	Reason   string              `json:"reason"`
}

// RecordMovement appends to the stock ledger and applies it to the item. In and
// out quantities are positive; an adjust quantity is the signed delta. Stock
// never goes below zero.
func (s *InventoryService) RecordMovement(ctx context.Context, itemID, userID uint, in MovementInput) (*models.StockMovement, error) {
	var delta decimal.Decimal
	switch in.Type {
	case models.MovementIn:
		delta = in.Quantity
	case models.MovementOut:
		delta = in.Quantity.Neg()
	case models.MovementAdjust:
		delta = in.Quantity
	default:
		return nil, utils.NewValidationError("invalid movement type %q", in.Type)
	}
	if in.Type != models.MovementAdjust && !in.Quantity.IsPositive() {
		return nil, utils.NewValidationError("quantity must be greater than zero")
	}
	if in.Quantity.IsZero() {
		return nil, utils.NewValidationError("quantity must not be zero")
	}

	var movement models.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return utils.WrapDBError(err, "inventory item")
		}
		next := item.Quantity.Add(delta)
		if next.IsNegative() {
			return utils.NewValidationError("insufficient stock of %s: have %s %s", item.NameEn, item.Quantity.String(), item.Unit)
		}
		if err := tx.Model(&item).Update("quantity", next).Error; err != nil {
			return utils.WrapDBError(err, "inventory item")
		}
		movement = models.StockMovement{
			InventoryItemID: item.ID,
			Type:            in.Type,
			Quantity:        in.Quantity,
			Reason:          in.Reason,
			UserID:          userID,
		}
		return utils.WrapDBError(tx.Create(&movement).Error, "stock movement")
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (s *InventoryService) Movements(ctx context.Context, itemID *uint) ([]models.StockMovement, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if itemID != nil {
		q = q.Where("inventory_item_id = ?", *itemID)
	}
	movements := []models.StockMovement{}
	if err := q.Limit(500).Find(&movements).Error; err != nil {
		return nil, utils.WrapDBError(err, "stock movements")
	}
	return movements, nil
}
