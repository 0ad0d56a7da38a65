package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWrapDBError(t *testing.T) {
	assert.Nil(t, WrapDBError(nil, "order"))

	err := WrapDBError(gorm.ErrRecordNotFound, "order")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "order not found", err.(*AppError).Message)

	err = WrapDBError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "order")
	assert.Equal(t, KindConflict, KindOf(err))

	err = WrapDBError(errors.New("UNIQUE constraint failed: orders.order_number"), "order")
	assert.Equal(t, KindConflict, KindOf(err))

	err = WrapDBError(errors.New("connection reset"), "order")
	assert.Equal(t, KindInternal, KindOf(err))

	orig := NewInvalidStateError("order is closed")
	assert.Same(t, orig, WrapDBError(orig, "order"))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("payment: %w", NewValidationError("amount must be positive"))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
