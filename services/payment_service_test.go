package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func TestRecordPaymentsOverpayment(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db, nil)
	pub := &recordingPublisher{}
	payments := NewPaymentService(db, pub)
	cashier := seedUser(t, db, policy.RoleCashier)
	ctx := context.Background()

	order := headerOrder(t, orders, "100.00", "0", "0", "100.00")

	res, err := payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("50.00")})
	require.NoError(t, err)
	assertMoney(t, "50.00", res.Balance)
	assert.False(t, res.Completable)

	res, err = payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCard, Amount: dec("50.00")})
	require.NoError(t, err)
	assertMoney(t, "100.00", res.PaidTotal)
	assertMoney(t, "0.00", res.Balance)
	assert.True(t, res.Completable)
	assert.False(t, res.Overpaid)

	res, err = payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("50.00")})
	require.NoError(t, err, "overpayment is flagged, not rejected")
	assert.True(t, res.Overpaid)
	assertMoney(t, "150.00", res.PaidTotal)
	assertMoney(t, "-50.00", res.Balance)

	completed, err := orders.Transition(ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, completed.Status)

	assert.Equal(t, []string{EventPaymentRecorded, EventPaymentRecorded, EventPaymentRecorded}, pub.names())
}

func TestRecordPaymentDefaultsAndValidation(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db, nil)
	payments := NewPaymentService(db, nil)
	cashier := seedUser(t, db, policy.RoleCashier)
	ctx := context.Background()

	order := headerOrder(t, orders, "20.00", "2.00", "0", "22.00")

	res, err := payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCard, Amount: dec("10")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Payment.Reference, "PAY-"))
	assert.Equal(t, models.PaymentStatusCompleted, res.Payment.Status)
	assert.Equal(t, cashier.ID, res.Payment.RecordedByID)
	assert.Nil(t, res.Payment.ShiftID)

	res, err = payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCard, Amount: dec("1"), Reference: "TXN-42"})
	require.NoError(t, err)
	assert.Equal(t, "TXN-42", res.Payment.Reference)

	_, err = payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: "cheque", Amount: dec("1")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	_, err = payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("0")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	_, err = payments.Record(ctx, 9999, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("1")})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestPaymentOnCancelledOrderIsRejected(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db, nil)
	payments := NewPaymentService(db, nil)
	cashier := seedUser(t, db, policy.RoleCashier)
	ctx := context.Background()

	order := headerOrder(t, orders, "20.00", "2.00", "0", "22.00")
	_, err := orders.Transition(ctx, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("22")})
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
}

func TestPaymentAutoComplete(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db, nil)
	pub := &recordingPublisher{}
	payments := NewPaymentService(db, pub)
	cashier := seedUser(t, db, policy.RoleCashier)
	ctx := context.Background()

	order := headerOrder(t, orders, "20.00", "2.00", "0", "22.00")

	res, err := payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("10"), AutoComplete: true})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, res.Order.Status)

	res, err = payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("12"), AutoComplete: true})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, res.Order.Status)
	assert.False(t, res.Completable)

	stored, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)
	assert.Len(t, stored.Payments, 2)
	assert.Equal(t, []string{EventPaymentRecorded, EventPaymentRecorded, EventOrderUpdated}, pub.names())
}

func TestPaymentIsStampedWithActiveShift(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db, nil)
	payments := NewPaymentService(db, nil)
	cashier := seedUser(t, db, policy.RoleCashier)
	ctx := context.Background()

	shift, err := NewShiftService(db, nil).Start(ctx, cashier.ID, dec("100"))
	require.NoError(t, err)

	order := headerOrder(t, orders, "20.00", "2.00", "0", "22.00")
	res, err := payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("22")})
	require.NoError(t, err)
	require.NotNil(t, res.Payment.ShiftID)
	assert.Equal(t, shift.ID, *res.Payment.ShiftID)
}

func TestRefundTwoPersonControl(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db, nil)
	payments := NewPaymentService(db, nil)
	cashier := seedUser(t, db, policy.RoleCashier)
	manager := seedUser(t, db, policy.RoleManager)
	ctx := context.Background()

	order := headerOrder(t, orders, "100.00", "0", "0", "100.00")
	_, err := payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("100")})
	require.NoError(t, err)

	_, err = payments.Refund(ctx, order.ID, cashier.ID, RefundInput{Amount: dec("10"), Reason: "cold food", AuthorizedByID: cashier.ID})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err), "cashiers cannot authorize refunds")

	_, err = payments.Refund(ctx, order.ID, cashier.ID, RefundInput{Amount: dec("10"), Reason: "cold food", AuthorizedByID: 9999})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))

	_, err = payments.Refund(ctx, order.ID, cashier.ID, RefundInput{Amount: dec("10"), Reason: "cold food", AuthorizedByID: manager.ID})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err), "another user's approval needs their password")
	_, err = payments.Refund(ctx, order.ID, cashier.ID, RefundInput{Amount: dec("10"), Reason: "cold food", AuthorizedByID: manager.ID, AuthorizerPassword: "guess"})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))

	refund, err := payments.Refund(ctx, order.ID, cashier.ID, RefundInput{Amount: dec("30"), Reason: "cold food", AuthorizedByID: manager.ID, AuthorizerPassword: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, manager.ID, refund.AuthorizedByID)
	assert.Equal(t, cashier.ID, refund.ProcessedByID)

	selfApproved, err := payments.Refund(ctx, order.ID, manager.ID, RefundInput{Amount: dec("20"), Reason: "wrong dish", AuthorizedByID: manager.ID})
	require.NoError(t, err, "the same person may authorize and process")
	assert.Equal(t, selfApproved.AuthorizedByID, selfApproved.ProcessedByID)

	_, err = payments.Refund(ctx, order.ID, cashier.ID, RefundInput{Amount: dec("50.01"), Reason: "too much", AuthorizedByID: manager.ID, AuthorizerPassword: "secret123"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = payments.Refund(ctx, order.ID, cashier.ID, RefundInput{Amount: dec("5"), Reason: " ", AuthorizedByID: manager.ID, AuthorizerPassword: "secret123"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	summary, err := payments.Summary(ctx, order.ID)
	require.NoError(t, err)
	assertMoney(t, "100.00", summary.Paid)
	assertMoney(t, "50.00", summary.Refunded)
	assertMoney(t, "50.00", summary.Net)
	assertMoney(t, "0.00", summary.Balance)
	assert.Len(t, summary.Payments, 1)
	assert.Len(t, summary.Refunds, 2)
	assertMoney(t, "100.00", summary.Payments[0].Amount, "payments are never mutated by refunds")
}

func TestSubCentAmountsAreRejected(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db, nil)
	payments := NewPaymentService(db, nil)
	cashier := seedUser(t, db, policy.RoleCashier)
	manager := seedUser(t, db, policy.RoleManager)
	ctx := context.Background()

	order := headerOrder(t, orders, "20.00", "2.00", "0", "22.00")

	_, err := payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("0.004")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	res, err := payments.Record(ctx, order.ID, cashier.ID, RecordPaymentInput{Method: models.PaymentMethodCash, Amount: dec("0.005")})
	require.NoError(t, err)
	assertMoney(t, "0.01", res.Payment.Amount)

	_, err = payments.Refund(ctx, order.ID, manager.ID, RefundInput{Amount: dec("0.004"), Reason: "rounding", AuthorizedByID: manager.ID})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ? AND amount = ?", order.ID, 0).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Refund{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
}
