package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListCategories returns categories by sort order. Inactive ones are included
// only on request.
func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	q := s.db.WithContext(ctx).Order("sort_order, id")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	categories := []models.Category{}
	if err := q.Find(&categories).Error; err != nil {
		return nil, utils.WrapDBError(err, "categories")
	}
	return categories, nil
}

func (s *CatalogService) CategoryItems(ctx context.Context, categoryID uint) ([]models.Item, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		return nil, utils.WrapDBError(err, "category")
	}
	return s.MenuItems(ctx, &categoryID)
}

// MenuItems lists active items with their sizes and active modifiers.
func (s *CatalogService) MenuItems(ctx context.Context, categoryID *uint) ([]models.Item, error) {
	q := s.db.WithContext(ctx).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Modifiers", "active = ?", true).
		Where("active = ?", true).
		Order("sort_order, id")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	items := []models.Item{}
	if err := q.Find(&items).Error; err != nil {
		return nil, utils.WrapDBError(err, "menu items")
	}
	return items, nil
}

type CategoryInput struct {
	NameEn    *string `json:"name_en"`
	NameAr    *string `json:"name_ar"`
	Icon      *string `json:"icon"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"active"`
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.NameEn == nil || strings.TrimSpace(*in.NameEn) == "" {
		return nil, utils.NewValidationError("name_en is required")
	}
	category := models.Category{Active: true}
	applyCategoryInput(&category, in)
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, utils.WrapDBError(err, "category")
	}
	return &category, nil
}

// UpdateCategory edits a category. Setting active=false is how categories are
// retired.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, utils.WrapDBError(err, "category")
	}
	applyCategoryInput(&category, in)
	if strings.TrimSpace(category.NameEn) == "" {
		return nil, utils.NewValidationError("name_en is required")
	}
	if err := s.db.WithContext(ctx).Save(&category).Error; err != nil {
		return nil, utils.WrapDBError(err, "category")
	}
	return &category, nil
}

func applyCategoryInput(c *models.Category, in CategoryInput) {
	if in.NameEn != nil {
		c.NameEn = strings.TrimSpace(*in.NameEn)
	}
	if in.NameAr != nil {
		c.NameAr = strings.TrimSpace(*in.NameAr)
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
}

type SizeInput struct {
	NameEn    string          `json:"name_en" binding:"required"`
	NameAr    string          `json:"name_ar"`
	Price     decimal.Decimal `json:"price"`
	SortOrder int             `json:"sort_order"`
}

type ItemInput struct {
	CategoryID    *uint            `json:"category_id"`
	NameEn        *string          `json:"name_en"`
	NameAr        *string          `json:"name_ar"`
	DescriptionEn *string          `json:"description_en"`
	DescriptionAr *string          `json:"description_ar"`
	Price         *decimal.Decimal `json:"price"`
	HasSizes      *bool            `json:"has_sizes"`
	Active        *bool            `json:"active"`
	SortOrder     *int             `json:"sort_order"`
	Sizes         []SizeInput      `json:"sizes"`
	ModifierIDs   []uint           `json:"modifier_ids"`
}

func (s *CatalogService) CreateItem(ctx context.Context, in ItemInput) (*models.Item, error) {
	if in.CategoryID == nil {
		return nil, utils.NewValidationError("category_id is required")
	}
	if in.NameEn == nil || strings.TrimSpace(*in.NameEn) == "" {
		return nil, utils.NewValidationError("name_en is required")
	}
	if in.Price == nil {
		return nil, utils.NewValidationError("price is required")
	}

	item := models.Item{Active: true}
	applyItemInput(&item, in)
	for _, sz := range in.Sizes {
		size, err := newSize(sz)
		if err != nil {
			return nil, err
		}
		item.Sizes = append(item.Sizes, size)
	}
	if err := validateItem(&item); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireActiveCategory(tx, item.CategoryID); err != nil {
			return err
		}
		modifiers, err := loadModifiers(tx, in.ModifierIDs)
		if err != nil {
			return err
		}
		item.Modifiers = modifiers
		item.HasModifiers = len(modifiers) > 0
		return utils.WrapDBError(tx.Create(&item).Error, "item")
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, id uint, in ItemInput) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Sizes").Preload("Modifiers").First(&item, id).Error; err != nil {
			return utils.WrapDBError(err, "item")
		}
		categoryChanged := in.CategoryID != nil && *in.CategoryID != item.CategoryID
		applyItemInput(&item, in)
		if err := validateItem(&item); err != nil {
			return err
		}
		if categoryChanged {
			if err := requireActiveCategory(tx, item.CategoryID); err != nil {
				return err
			}
		}
		if in.ModifierIDs != nil {
			modifiers, err := loadModifiers(tx, in.ModifierIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&item).Association("Modifiers").Replace(modifiers); err != nil {
				return utils.WrapDBError(err, "item modifiers")
			}
			item.Modifiers = modifiers
			item.HasModifiers = len(modifiers) > 0
		}
		return utils.WrapDBError(tx.Omit("Sizes", "Modifiers").Save(&item).Error, "item")
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogService) AddSize(ctx context.Context, itemID uint, in SizeInput) (*models.ItemSize, error) {
	size, err := newSize(in)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, itemID).Error; err != nil {
			return utils.WrapDBError(err, "item")
		}
		size.ItemID = item.ID
		if err := tx.Create(&size).Error; err != nil {
			return utils.WrapDBError(err, "item size")
		}
		if !item.HasSizes {
			return utils.WrapDBError(tx.Model(&item).Update("has_sizes", true).Error, "item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &size, nil
}

type ModifierInput struct {
	NameEn *string          `json:"name_en"`
	NameAr *string          `json:"name_ar"`
	Price  *decimal.Decimal `json:"price"`
	Active *bool            `json:"active"`
}

func (s *CatalogService) ListModifiers(ctx context.Context) ([]models.Modifier, error) {
	modifiers := []models.Modifier{}
	if err := s.db.WithContext(ctx).Order("id").Find(&modifiers).Error; err != nil {
		return nil, utils.WrapDBError(err, "modifiers")
	}
	return modifiers, nil
}

func (s *CatalogService) CreateModifier(ctx context.Context, in ModifierInput) (*models.Modifier, error) {
	if in.NameEn == nil || strings.TrimSpace(*in.NameEn) == "" {
		return nil, utils.NewValidationError("name_en is required")
	}
	modifier := models.Modifier{Active: true, Price: decimal.Zero}
	if err := applyModifierInput(&modifier, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&modifier).Error; err != nil {
		return nil, utils.WrapDBError(err, "modifier")
	}
	return &modifier, nil
}

func (s *CatalogService) UpdateModifier(ctx context.Context, id uint, in ModifierInput) (*models.Modifier, error) {
	var modifier models.Modifier
	if err := s.db.WithContext(ctx).First(&modifier, id).Error; err != nil {
		return nil, utils.WrapDBError(err, "modifier")
	}
	if err := applyModifierInput(&modifier, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&modifier).Error; err != nil {
		return nil, utils.WrapDBError(err, "modifier")
	}
	return &modifier, nil
}

func applyModifierInput(m *models.Modifier, in ModifierInput) error {
	if in.NameEn != nil {
		m.NameEn = strings.TrimSpace(*in.NameEn)
	}
	if in.NameAr != nil {
		m.NameAr = strings.TrimSpace(*in.NameAr)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return utils.NewValidationError("modifier price must not be negative")
		}
		m.Price = *in.Price
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	return nil
}

// LineRequest selects an item from the catalog.
type LineRequest struct {
	ItemID      uint   `json:"item_id" binding:"required"`
	SizeID      *uint  `json:"size_id"`
	Quantity    int    `json:"quantity" binding:"required"`
	ModifierIDs []uint `json:"modifier_ids"`
	Notes       string `json:"notes"`
}

// ResolveLine snapshots a catalog selection into a cart line. Inactive or
// unknown items, sizes and modifiers are reported as not found.
func (s *CatalogService) ResolveLine(ctx context.Context, req LineRequest) (CartLine, error) {
	return resolveLine(s.db.WithContext(ctx), req)
}

func resolveLine(db *gorm.DB, req LineRequest) (CartLine, error) {
	if req.Quantity < 1 {
		return CartLine{}, utils.NewValidationError("quantity must be at least 1")
	}

	var item models.Item
	err := db.Preload("Sizes").Preload("Modifiers").
		Joins("JOIN categories ON categories.id = items.category_id AND categories.active = ?", true).
		Where("items.id = ? AND items.active = ?", req.ItemID, true).
		First(&item).Error
	if err != nil {
		return CartLine{}, utils.WrapDBError(err, "item")
	}

	line := CartLine{
		ItemID:    item.ID,
		NameEn:    item.NameEn,
		NameAr:    item.NameAr,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
		Modifiers: []CartModifier{},
	}

	var size *models.ItemSize
	switch {
	case req.SizeID != nil:
		size = item.FindSize(*req.SizeID)
		if size == nil {
			return CartLine{}, utils.NewNotFoundError("size %d not found for item %d", *req.SizeID, item.ID)
		}
		line.SizeID = &size.ID
		line.SizeNameEn = &size.NameEn
		line.SizeNameAr = &size.NameAr
	case item.HasSizes:
		return CartLine{}, utils.NewValidationError("item %d requires a size", item.ID)
	}
	line.UnitPrice = item.ResolvePrice(size)

	offered := make(map[uint]models.Modifier, len(item.Modifiers))
	for _, m := range item.Modifiers {
		offered[m.ID] = m
	}
	for _, id := range req.ModifierIDs {
		m, ok := offered[id]
		if !ok || !m.Active {
			return CartLine{}, utils.NewNotFoundError("modifier %d not available for item %d", id, item.ID)
		}
		line.Modifiers = append(line.Modifiers, CartModifier{
			ModifierID: m.ID,
			NameEn:     m.NameEn,
			NameAr:     m.NameAr,
			Price:      m.Price,
		})
	}
	return line, nil
}

func applyItemInput(item *models.Item, in ItemInput) {
	if in.CategoryID != nil {
		item.CategoryID = *in.CategoryID
	}
	if in.NameEn != nil {
		item.NameEn = strings.TrimSpace(*in.NameEn)
	}
	if in.NameAr != nil {
		item.NameAr = strings.TrimSpace(*in.NameAr)
	}
	if in.DescriptionEn != nil {
		item.DescriptionEn = *in.DescriptionEn
	}
	if in.DescriptionAr != nil {
		item.DescriptionAr = *in.DescriptionAr
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.HasSizes != nil {
		item.HasSizes = *in.HasSizes
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	if in.SortOrder != nil {
		item.SortOrder = *in.SortOrder
	}
}

func validateItem(item *models.Item) error {
	if strings.TrimSpace(item.NameEn) == "" {
		return utils.NewValidationError("name_en is required")
	}
	if item.Price.IsNegative() {
		return utils.NewValidationError("price must not be negative")
	}
	if len(item.Sizes) > 0 {
		item.HasSizes = true
	}
	if item.HasSizes && len(item.Sizes) == 0 {
		return utils.NewValidationError("an item with sizes needs at least one size")
	}
	return nil
}

func newSize(in SizeInput) (models.ItemSize, error) {
	if strings.TrimSpace(in.NameEn) == "" {
		return models.ItemSize{}, utils.NewValidationError("size name_en is required")
	}
	if in.Price.IsNegative() {
		return models.ItemSize{}, utils.NewValidationError("size price must not be negative")
	}
	return models.ItemSize{
		NameEn:    strings.TrimSpace(in.NameEn),
		NameAr:    strings.TrimSpace(in.NameAr),
		Price:     in.Price,
		SortOrder: in.SortOrder,
	}, nil
}

func requireActiveCategory(db *gorm.DB, id uint) error {
	var category models.Category
	if err := db.Where("id = ? AND active = ?", id, true).First(&category).Error; err != nil {
		return utils.WrapDBError(err, "category")
	}
	return nil
}

func loadModifiers(db *gorm.DB, ids []uint) ([]models.Modifier, error) {
	if len(ids) == 0 {
		return []models.Modifier{}, nil
	}
	var modifiers []models.Modifier
	if err := db.Where("id IN ?", ids).Find(&modifiers).Error; err != nil {
		return nil, utils.WrapDBError(err, "modifiers")
	}
	if len(modifiers) != len(uniqueIDs(ids)) {
		return nil, utils.NewNotFoundError("one or more modifiers not found")
	}
	return modifiers, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	m := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
