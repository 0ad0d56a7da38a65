package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type SettlementService struct {
	db *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{db: db}
}

// SettlementView adds the reported-minus-received discrepancy.
type SettlementView struct {
	models.Settlement
	Discrepancy *decimal.Decimal `json:"discrepancy"`
}

func viewOf(s models.Settlement) SettlementView {
	return SettlementView{Settlement: s, Discrepancy: s.Discrepancy()}
}

type CreateSettlementInput struct {
	Source      string           `json:"source" binding:"required"`
	WeekStart   time.Time        `json:"week_start" binding:"required"`
	WeekEnd     time.Time        `json:"week_end" binding:"required"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	Notes       string           `json:"notes"`
}

// Create opens a pending settlement for an aggregator week. Week bounds are
// whole UTC days, both inclusive. When the reported total is omitted it is
// taken from the completed orders of that source in the window.
func (s *SettlementService) Create(ctx context.Context, in CreateSettlementInput) (*SettlementView, error) {
	source := strings.TrimSpace(in.Source)
	if source == "" {
		return nil, utils.NewValidationError("source is required")
	}
	start := truncateDay(in.WeekStart)
	end := truncateDay(in.WeekEnd)
	if end.Before(start) {
		return nil, utils.NewValidationError("week_end must not be before week_start")
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		return nil, utils.NewValidationError("total_amount must not be negative")
	}

	db := s.db.WithContext(ctx)
	var orders []models.Order
	err := db.Where("source = ? AND status = ? AND created_at >= ? AND created_at < ?",
		source, models.OrderStatusCompleted, start, end.AddDate(0, 0, 1)).
		Find(&orders).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "orders")
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	if in.TotalAmount != nil {
		total = utils.Round2(*in.TotalAmount)
	}

	settlement := models.Settlement{
		Source:      source,
		WeekStart:   start,
		WeekEnd:     end,
		TotalAmount: total,
		OrderCount:  int64(len(orders)),
		Status:      models.SettlementStatusPending,
		Notes:       in.Notes,
	}
	if err := db.Create(&settlement).Error; err != nil {
		return nil, utils.WrapDBError(err, "settlement")
	}
	view := viewOf(settlement)
	return &view, nil
}

type CompleteSettlementInput struct {
	SettledAmount      *decimal.Decimal `json:"settled_amount"`
	ProcessorReference string           `json:"processor_reference"`
	Notes              *string          `json:"notes"`
}

// Complete records what was actually received. A discrepancy against the
// reported total is kept as is.
func (s *SettlementService) Complete(ctx context.Context, id uint, in CompleteSettlementInput) (*SettlementView, error) {
	if in.SettledAmount == nil {
		return nil, utils.NewValidationError("settled_amount is required")
	}
	if in.SettledAmount.IsNegative() {
		return nil, utils.NewValidationError("settled_amount must not be negative")
	}

	var settlement models.Settlement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&settlement, id).Error; err != nil {
			return utils.WrapDBError(err, "settlement")
		}
		if settlement.Status == models.SettlementStatusCompleted {
			return utils.NewInvalidStateError("settlement %d is already completed", settlement.ID)
		}
		settled := utils.Round2(*in.SettledAmount)
		now := tx.NowFunc()
		settlement.SettledAmount = &settled
		settlement.ProcessorReference = in.ProcessorReference
		if in.Notes != nil {
			settlement.Notes = *in.Notes
		}
		settlement.Status = models.SettlementStatusCompleted
		settlement.CompletedAt = &now
		return utils.WrapDBError(tx.Save(&settlement).Error, "settlement")
	})
	if err != nil {
		return nil, err
	}

	view := viewOf(settlement)
	if d := view.Discrepancy; d != nil && !d.IsZero() {
		utils.InfoLogger.Printf("Settlement %d (%s) completed with discrepancy %s", settlement.ID, settlement.Source, d.StringFixed(2))
	}
	return &view, nil
}

func (s *SettlementService) Get(ctx context.Context, id uint) (*SettlementView, error) {
	var settlement models.Settlement
	if err := s.db.WithContext(ctx).First(&settlement, id).Error; err != nil {
		return nil, utils.WrapDBError(err, "settlement")
	}
	view := viewOf(settlement)
	return &view, nil
}

type SettlementFilter struct {
	Source string
	Status *models.SettlementStatus
}

func (s *SettlementService) List(ctx context.Context, f SettlementFilter) ([]SettlementView, error) {
	q := s.db.WithContext(ctx).Order("week_start DESC, id DESC")
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var settlements []models.Settlement
	if err := q.Find(&settlements).Error; err != nil {
		return nil, utils.WrapDBError(err, "settlements")
	}
	views := make([]SettlementView, 0, len(settlements))
	for _, st := range settlements {
		views = append(views, viewOf(st))
	}
	return views, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
