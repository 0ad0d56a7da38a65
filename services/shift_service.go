package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

// Actor is the authenticated user behind a request.
type Actor struct {
	UserID uint
	Role   policy.Role
}

type ShiftService struct {
	db        *gorm.DB
	publisher Publisher
}

func NewShiftService(db *gorm.DB, publisher Publisher) *ShiftService {
	return &ShiftService{db: db, publisher: publisherOrNoop(publisher)}
}

// Start opens a drawer session. A user holds at most one active shift; the
// unique active_user_id index backs the check against concurrent starts.
func (s *ShiftService) Start(ctx context.Context, userID uint, openingCash decimal.Decimal) (*models.Shift, error) {
	if openingCash.IsNegative() {
		return nil, utils.NewValidationError("opening cash must not be negative")
	}

	var shift models.Shift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&models.Shift{}).
			Where("user_id = ? AND status = ?", userID, models.ShiftStatusActive).
			Count(&active).Error
		if err != nil {
			return utils.WrapDBError(err, "shift")
		}
		if active > 0 {
			return utils.NewConflictError("user %d already has an active shift", userID)
		}

		owner := userID
		shift = models.Shift{
			UserID:       userID,
			ActiveUserID: &owner,
			StartTime:    tx.NowFunc(),
			OpeningCash:  utils.Round2(openingCash),
			CashSales:    decimal.Zero,
			CardSales:    decimal.Zero,
			CreditSales:  decimal.Zero,
			ExpectedCash: utils.Round2(openingCash),
			Variance:     decimal.Zero,
			Status:       models.ShiftStatusActive,
		}
		if err := tx.Create(&shift).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return &utils.AppError{Kind: utils.KindConflict, Message: "user already has an active shift", Err: err}
			}
			return utils.WrapDBError(err, "shift")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Shift %d started for user %d with %s", shift.ID, userID, shift.OpeningCash.StringFixed(2))
	return &shift, nil
}

func (s *ShiftService) Current(ctx context.Context, userID uint) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ShiftStatusActive).
		First(&shift).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "active shift")
	}
	return &shift, nil
}

func (s *ShiftService) Get(ctx context.Context, id uint) (*models.Shift, error) {
	var shift models.Shift
	if err := s.db.WithContext(ctx).First(&shift, id).Error; err != nil {
		return nil, utils.WrapDBError(err, "shift")
	}
	return &shift, nil
}

type ShiftFilter struct {
	UserID *uint
	Status *models.ShiftStatus
}

func (s *ShiftService) List(ctx context.Context, f ShiftFilter) ([]models.Shift, error) {
	q := s.db.WithContext(ctx).Order("start_time DESC, id DESC")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	shifts := []models.Shift{}
	if err := q.Limit(200).Find(&shifts).Error; err != nil {
		return nil, utils.WrapDBError(err, "shifts")
	}
	return shifts, nil
}

type EndShiftInput struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       string          `json:"notes"`
}

// End closes a shift. Only the owner or a user who manages shifts may close it.
// The variance is stored as computed and never corrected afterwards.
func (s *ShiftService) End(ctx context.Context, shiftID uint, actor Actor, in EndShiftInput) (*models.Shift, error) {
	if in.ClosingCash.IsNegative() {
		return nil, utils.NewValidationError("closing cash must not be negative")
	}

	var shift models.Shift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&shift, shiftID).Error; err != nil {
			return utils.WrapDBError(err, "shift")
		}
		if shift.Status == models.ShiftStatusClosed {
			return utils.NewInvalidStateError("shift %d is already closed", shift.ID)
		}
		if actor.UserID != shift.UserID && !policy.Can(actor.Role, policy.ShiftsManage) {
			return utils.NewAuthorizationError("only the shift owner or a manager may end shift %d", shift.ID)
		}

		end := tx.NowFunc()
		totals, err := tenderTotals(tx, shift.UserID, shift.StartTime, end)
		if err != nil {
			return err
		}
		closing := utils.Round2(in.ClosingCash)
		totals.apply(&shift)
		shift.EndTime = &end
		shift.ClosingCash = &closing
		shift.Variance = closing.Sub(shift.ExpectedCash)
		shift.Status = models.ShiftStatusClosed
		shift.ActiveUserID = nil
		shift.Notes = in.Notes
		return utils.WrapDBError(tx.Save(&shift).Error, "shift")
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Shift %d closed: expected %s counted %s variance %s", shift.ID,
		shift.ExpectedCash.StringFixed(2), shift.ClosingCash.StringFixed(2), shift.Variance.StringFixed(2))
	s.publisher.Publish(EventShiftClosed, &shift)
	return &shift, nil
}

type ShiftSummary struct {
	ShiftID      uint               `json:"shift_id"`
	UserID       uint               `json:"user_id"`
	Status       models.ShiftStatus `json:"status"`
	StartTime    time.Time          `json:"start_time"`
	EndTime      time.Time          `json:"end_time"`
	OpeningCash  decimal.Decimal    `json:"opening_cash"`
	CashSales    decimal.Decimal    `json:"cash_sales"`
	CardSales    decimal.Decimal    `json:"card_sales"`
	CreditSales  decimal.Decimal    `json:"credit_sales"`
	TotalSales   decimal.Decimal    `json:"total_sales"`
	PaymentCount int                `json:"payment_count"`
	ExpectedCash decimal.Decimal    `json:"expected_cash"`
	ClosingCash  *decimal.Decimal   `json:"closing_cash,omitempty"`
	Variance     *decimal.Decimal   `json:"variance,omitempty"`
}

// Summary recomputes the tender totals of a shift. A closed shift is measured up
// to its stored end time, so the figures match what End persisted.
func (s *ShiftService) Summary(ctx context.Context, shiftID uint) (*ShiftSummary, error) {
	db := s.db.WithContext(ctx)
	var shift models.Shift
	if err := db.First(&shift, shiftID).Error; err != nil {
		return nil, utils.WrapDBError(err, "shift")
	}
	end := db.NowFunc()
	if shift.EndTime != nil {
		end = *shift.EndTime
	}
	totals, err := tenderTotals(db, shift.UserID, shift.StartTime, end)
	if err != nil {
		return nil, err
	}
	totals.apply(&shift)

	summary := ShiftSummary{
		ShiftID:      shift.ID,
		UserID:       shift.UserID,
		Status:       shift.Status,
		StartTime:    shift.StartTime,
		EndTime:      end,
		OpeningCash:  shift.OpeningCash,
		CashSales:    shift.CashSales,
		CardSales:    shift.CardSales,
		CreditSales:  shift.CreditSales,
		TotalSales:   shift.CashSales.Add(shift.CardSales).Add(shift.CreditSales),
		PaymentCount: totals.count,
		ExpectedCash: shift.ExpectedCash,
	}
	if shift.ClosingCash != nil {
		variance := shift.ClosingCash.Sub(shift.ExpectedCash)
		summary.ClosingCash = shift.ClosingCash
		summary.Variance = &variance
	}
	return &summary, nil
}

type shiftTotals struct {
	cash, card, credit decimal.Decimal
	count              int
}

func (t shiftTotals) apply(shift *models.Shift) {
	shift.CashSales = t.cash
	shift.CardSales = t.card
	shift.CreditSales = t.credit
	shift.ExpectedCash = shift.OpeningCash.Add(t.cash)
}

// tenderTotals sums completed payments recorded by the shift owner within
// [start, end). Payments keyed in by someone else during a handover stay with
// that user's own shift.
func tenderTotals(db *gorm.DB, userID uint, start, end time.Time) (shiftTotals, error) {
	var payments []models.Payment
	err := db.Where("recorded_by_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
		userID, models.PaymentStatusCompleted, start.UTC(), end.UTC()).
		Order("id").
		Find(&payments).Error
	if err != nil {
		return shiftTotals{}, utils.WrapDBError(err, "payments")
	}
	totals := shiftTotals{cash: decimal.Zero, card: decimal.Zero, credit: decimal.Zero}
	for _, p := range payments {
		switch p.Method {
		case models.PaymentMethodCash:
			totals.cash = totals.cash.Add(p.Amount)
		case models.PaymentMethodCard:
			totals.card = totals.card.Add(p.Amount)
		case models.PaymentMethodCredit:
			totals.credit = totals.credit.Add(p.Amount)
		}
		totals.count++
	}
	return totals, nil
}
