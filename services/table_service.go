package services

import (
	"context"
	"sort"
	"strings"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

type CreateTableInput struct {
	Number string `json:"number" binding:"required"`
	Seats  int    `json:"seats"`
}

func (s *TableService) Create(ctx context.Context, in CreateTableInput) (*models.Table, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, utils.NewValidationError("table number is required")
	}
	if in.Seats < 0 {
		return nil, utils.NewValidationError("seats must not be negative")
	}
	seats := in.Seats
	if seats == 0 {
		seats = 4
	}
	table := models.Table{Number: number, Seats: seats, Active: true}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, utils.WrapDBError(err, "table "+number)
	}
	return &table, nil
}

func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	tables := []models.Table{}
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("number").Find(&tables).Error; err != nil {
		return nil, utils.WrapDBError(err, "tables")
	}
	return tables, nil
}

// TableOrders is the open dine-in work at one table.
type TableOrders struct {
	TableNumber string         `json:"table_number"`
	Orders      []models.Order `json:"orders"`
}

// OpenOrders groups non-terminal dine-in orders by table number.
func (s *TableService) OpenOrders(ctx context.Context) ([]TableOrders, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("type = ? AND status NOT IN ? AND table_number IS NOT NULL",
			models.OrderTypeDineIn, []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled}).
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "orders")
	}

	byTable := map[string]*TableOrders{}
	for _, o := range orders {
		group, ok := byTable[*o.TableNumber]
		if !ok {
			group = &TableOrders{TableNumber: *o.TableNumber}
			byTable[*o.TableNumber] = group
		}
		group.Orders = append(group.Orders, o)
	}
	out := make([]TableOrders, 0, len(byTable))
	for _, g := range byTable {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableNumber < out[j].TableNumber })
	return out, nil
}
