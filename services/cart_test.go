package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

func kabsaLargeLine(qty int) CartLine {
	large := "Large"
	return CartLine{
		ItemID:     1,
		NameEn:     "Kabsa",
		NameAr:     "كبسة",
		SizeNameEn: &large,
		UnitPrice:  dec("65.00"),
		Quantity:   qty,
		Modifiers: []CartModifier{
			{ModifierID: 1, NameEn: "Extra Meat", Price: dec("15.00")},
		},
	}
}

func TestCartKabsaScenario(t *testing.T) {
	cart := NewCart(models.DefaultServiceChargeRate)
	require.NoError(t, cart.Add(kabsaLargeLine(2)))

	assertMoney(t, "145.00", cart.Subtotal())
	assertMoney(t, "14.50", cart.ServiceCharge())
	assertMoney(t, "159.50", cart.Total())
}

func TestCartQuantityUpdates(t *testing.T) {
	cart := NewCart(models.DefaultServiceChargeRate)
	require.NoError(t, cart.Add(kabsaLargeLine(1)))
	assertMoney(t, "80.00", cart.Subtotal())

	require.NoError(t, cart.UpdateQuantity(0, 3))
	assertMoney(t, "210.00", cart.Subtotal())

	err := cart.UpdateQuantity(0, 0)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	assert.Equal(t, 3, cart.Lines[0].Quantity)

	err = cart.UpdateQuantity(4, 1)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestCartRemoveAndClear(t *testing.T) {
	cart := NewCart(models.DefaultServiceChargeRate)
	require.NoError(t, cart.Add(kabsaLargeLine(1)))
	require.NoError(t, cart.Add(CartLine{ItemID: 2, NameEn: "Tea", UnitPrice: dec("5"), Quantity: 2}))

	require.NoError(t, cart.Remove(0))
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Tea", cart.Lines[0].NameEn)
	assertMoney(t, "10.00", cart.Subtotal())
	assertMoney(t, "11.00", cart.Total())

	cart.Clear()
	assertMoney(t, "0.00", cart.Total())
	assert.Empty(t, cart.Quote().Lines)
}

func TestCartRejectsZeroQuantity(t *testing.T) {
	cart := NewCart(models.DefaultServiceChargeRate)
	err := cart.Add(CartLine{ItemID: 1, UnitPrice: dec("1"), Quantity: 0})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	assert.Empty(t, cart.Lines)
}
