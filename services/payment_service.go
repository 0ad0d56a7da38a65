package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PaymentService records tenders and refunds against orders.
type PaymentService struct {
	db        *gorm.DB
	publisher Publisher
}

func NewPaymentService(db *gorm.DB, publisher Publisher) *PaymentService {
	return &PaymentService{db: db, publisher: publisherOrNoop(publisher)}
}

type RecordPaymentInput struct {
	Method       models.PaymentMethod `json:"method" binding:"required"`
	Amount       decimal.Decimal      `json:"amount"`
	Reference    string               `json:"reference"`
	AutoComplete bool                 `json:"auto_complete"`
}

// PaymentResult reports the order balance after a payment. Overpayment is a
// flag, not an error.
type PaymentResult struct {
	Payment     *models.Payment `json:"payment"`
	Order       *models.Order   `json:"order"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	Balance     decimal.Decimal `json:"balance"`
	Overpaid    bool            `json:"overpaid"`
	Completable bool            `json:"completable"`
}

func (s *PaymentService) Record(ctx context.Context, orderID, userID uint, in RecordPaymentInput) (*PaymentResult, error) {
	if !in.Method.Valid() {
		return nil, utils.NewValidationError("invalid payment method %q", in.Method)
	}
	amount := utils.Round2(in.Amount)
	if !amount.IsPositive() {
		return nil, utils.NewValidationError("payment amount must be greater than zero")
	}

	var (
		result    PaymentResult
		completed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return utils.WrapDBError(err, "order")
		}
		if order.Status == models.OrderStatusCancelled {
			return utils.NewInvalidStateError("order #%d is cancelled", order.OrderNumber)
		}

		shiftID, err := activeShiftID(tx, userID)
		if err != nil {
			return err
		}

		reference := strings.TrimSpace(in.Reference)
		if reference == "" {
			reference = "PAY-" + uuid.NewString()
		}
		payment := models.Payment{
			OrderID:      order.ID,
			Method:       in.Method,
			Amount:       amount,
			Reference:    reference,
			Status:       models.PaymentStatusCompleted,
			RecordedByID: userID,
			ShiftID:      shiftID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return utils.WrapDBError(err, "payment")
		}

		paid, err := completedPaymentsTotal(tx, order.ID)
		if err != nil {
			return err
		}
		if in.AutoComplete && !order.Status.Terminal() && paid.GreaterThanOrEqual(order.Total) {
			if err := transitionOrder(tx, &order, models.OrderStatusCompleted); err != nil {
				return err
			}
			completed = true
		}

		result = PaymentResult{
			Payment:     &payment,
			Order:       &order,
			PaidTotal:   paid,
			Balance:     order.Total.Sub(paid),
			Overpaid:    paid.GreaterThan(order.Total),
			Completable: !order.Status.Terminal() && paid.GreaterThanOrEqual(order.Total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Payment %s recorded: order #%d %s %s", result.Payment.Reference,
		result.Order.OrderNumber, result.Payment.Method, result.Payment.Amount.StringFixed(2))
	if result.Overpaid {
		utils.InfoLogger.Printf("Order #%d overpaid by %s", result.Order.OrderNumber, result.Balance.Neg().StringFixed(2))
	}
	s.publisher.Publish(EventPaymentRecorded, &result)
	if completed {
		s.publisher.Publish(EventOrderUpdated, result.Order)
	}
	return &result, nil
}

func activeShiftID(tx *gorm.DB, userID uint) (*uint, error) {
	var shifts []models.Shift
	err := tx.Where("user_id = ? AND status = ?", userID, models.ShiftStatusActive).Limit(1).Find(&shifts).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "shift")
	}
	if len(shifts) == 0 {
		return nil, nil
	}
	return &shifts[0].ID, nil
}

type RefundInput struct {
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason" binding:"required"`
	AuthorizedByID uint            `json:"authorized_by_id" binding:"required"`
	// AuthorizerPassword is required unless the authorizer is the processing user.
	AuthorizerPassword string `json:"authorizer_password"`
}

// Refund records money returned on an order. The authorizing user must hold
// refunds.authorize and confirm with their password; the processing user is
// whoever submits it.
func (s *PaymentService) Refund(ctx context.Context, orderID, processedByID uint, in RefundInput) (*models.Refund, error) {
	amount := utils.Round2(in.Amount)
	if !amount.IsPositive() {
		return nil, utils.NewValidationError("refund amount must be greater than zero")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, utils.NewValidationError("refund reason is required")
	}

	var refund models.Refund
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return utils.WrapDBError(err, "order")
		}

		var authorizer models.User
		err := tx.Where("id = ? AND active = ?", in.AuthorizedByID, true).First(&authorizer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewAuthorizationError("authorizing user %d is not an active user", in.AuthorizedByID)
		} else if err != nil {
			return utils.WrapDBError(err, "user")
		}
		if !policy.Can(authorizer.Role, policy.RefundsAuthorize) {
			return utils.NewAuthorizationError("user %s may not authorize refunds", authorizer.Username)
		}
		if authorizer.ID != processedByID &&
			bcrypt.CompareHashAndPassword([]byte(authorizer.Password), []byte(in.AuthorizerPassword)) != nil {
			return utils.NewAuthorizationError("authorization by %s could not be verified", authorizer.Username)
		}

		paid, err := completedPaymentsTotal(tx, order.ID)
		if err != nil {
			return err
		}
		refunded, err := refundsTotal(tx, order.ID)
		if err != nil {
			return err
		}
		available := paid.Sub(refunded)
		if amount.GreaterThan(available) {
			return utils.NewValidationError("refund %s exceeds refundable amount %s", amount.StringFixed(2), available.StringFixed(2))
		}

		refund = models.Refund{
			OrderID:        order.ID,
			Amount:         amount,
			Reason:         strings.TrimSpace(in.Reason),
			AuthorizedByID: authorizer.ID,
			ProcessedByID:  processedByID,
		}
		return utils.WrapDBError(tx.Create(&refund).Error, "refund")
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Refund %d on order %d: %s authorized by %d processed by %d",
		refund.ID, refund.OrderID, refund.Amount.StringFixed(2), refund.AuthorizedByID, refund.ProcessedByID)
	s.publisher.Publish(EventRefundRecorded, &refund)
	return &refund, nil
}

func refundsTotal(tx *gorm.DB, orderID uint) (decimal.Decimal, error) {
	var refunds []models.Refund
	if err := tx.Where("order_id = ?", orderID).Find(&refunds).Error; err != nil {
		return decimal.Zero, utils.WrapDBError(err, "refunds")
	}
	total := decimal.Zero
	for _, r := range refunds {
		total = total.Add(r.Amount)
	}
	return total, nil
}

type PaymentSummary struct {
	OrderID  uint             `json:"order_id"`
	Total    decimal.Decimal  `json:"total"`
	Paid     decimal.Decimal  `json:"paid"`
	Refunded decimal.Decimal  `json:"refunded"`
	Net      decimal.Decimal  `json:"net"`
	Balance  decimal.Decimal  `json:"balance"`
	Payments []models.Payment `json:"payments"`
	Refunds  []models.Refund  `json:"refunds"`
}

func (s *PaymentService) Summary(ctx context.Context, orderID uint) (*PaymentSummary, error) {
	db := s.db.WithContext(ctx)
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, utils.WrapDBError(err, "order")
	}

	summary := PaymentSummary{OrderID: order.ID, Total: order.Total, Paid: decimal.Zero, Refunded: decimal.Zero}
	if err := db.Where("order_id = ?", order.ID).Order("id").Find(&summary.Payments).Error; err != nil {
		return nil, utils.WrapDBError(err, "payments")
	}
	if err := db.Where("order_id = ?", order.ID).Order("id").Find(&summary.Refunds).Error; err != nil {
		return nil, utils.WrapDBError(err, "refunds")
	}
	for _, p := range summary.Payments {
		if p.Status == models.PaymentStatusCompleted {
			summary.Paid = summary.Paid.Add(p.Amount)
		}
	}
	for _, r := range summary.Refunds {
		summary.Refunded = summary.Refunded.Add(r.Amount)
	}
	summary.Net = summary.Paid.Sub(summary.Refunded)
	summary.Balance = order.Total.Sub(summary.Paid)
	return &summary, nil
}
