package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// CartModifier is a modifier snapshot. It is priced once per line, not per unit.
type CartModifier struct {
	ModifierID uint            `json:"modifier_id"`
	NameEn     string          `json:"name_en"`
	NameAr     string          `json:"name_ar"`
	Price      decimal.Decimal `json:"price"`
}

// CartLine is an item snapshot taken when it was added, so later catalog edits
// do not reprice it.
type CartLine struct {
	ItemID     uint            `json:"item_id"`
	NameEn     string          `json:"name_en"`
	NameAr     string          `json:"name_ar"`
	SizeID     *uint           `json:"size_id,omitempty"`
	SizeNameEn *string         `json:"size_name_en,omitempty"`
	SizeNameAr *string         `json:"size_name_ar,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Modifiers  []CartModifier  `json:"modifiers"`
	Notes      string          `json:"notes,omitempty"`
}

// ModifiersTotal sums the modifier prices on the line.
func (l CartLine) ModifiersTotal() decimal.Decimal {
	total := decimal.Zero
	for _, m := range l.Modifiers {
		total = total.Add(m.Price)
	}
	return total
}

// LineTotal is unitPrice * quantity plus the modifiers.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Add(l.ModifiersTotal())
}

func (l CartLine) validate() error {
	if l.Quantity < 1 {
		return utils.NewValidationError("quantity must be at least 1")
	}
	if l.UnitPrice.IsNegative() {
		return utils.NewValidationError("unit price must not be negative")
	}
	for _, m := range l.Modifiers {
		if m.Price.IsNegative() {
			return utils.NewValidationError("modifier price must not be negative")
		}
	}
	return nil
}

// Cart accumulates a selection before checkout. It is owned by the caller and
// never persisted.
type Cart struct {
	OrderType         models.OrderType `json:"order_type"`
	Source            string           `json:"source"`
	TableNumber       *string          `json:"table_number,omitempty"`
	ServiceChargeRate decimal.Decimal  `json:"service_charge_rate"`
	Lines             []CartLine       `json:"lines"`
}

func NewCart(serviceChargeRate decimal.Decimal) *Cart {
	return &Cart{
		OrderType:         models.OrderTypeDineIn,
		Source:            models.SourcePOS,
		ServiceChargeRate: serviceChargeRate,
	}
}

func (c *Cart) Add(line CartLine) error {
	if err := line.validate(); err != nil {
		return err
	}
	c.Lines = append(c.Lines, line)
	return nil
}

func (c *Cart) UpdateQuantity(index, quantity int) error {
	if index < 0 || index >= len(c.Lines) {
		return utils.NewNotFoundError("cart line %d not found", index)
	}
	if quantity < 1 {
		return utils.NewValidationError("quantity must be at least 1")
	}
	c.Lines[index].Quantity = quantity
	return nil
}

func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return utils.NewNotFoundError("cart line %d not found", index)
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Subtotal() decimal.Decimal {
	return sumLines(c.Lines)
}

func (c *Cart) ServiceCharge() decimal.Decimal {
	return serviceChargeFor(c.Subtotal(), c.ServiceChargeRate)
}

func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.ServiceCharge())
}

// CartQuote is the priced view of a cart.
type CartQuote struct {
	Lines         []CartLine      `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Total         decimal.Decimal `json:"total"`
}

func (c *Cart) Quote() CartQuote {
	lines := c.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	return CartQuote{
		Lines:         lines,
		Subtotal:      c.Subtotal(),
		ServiceCharge: c.ServiceCharge(),
		Total:         c.Total(),
	}
}

func sumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return utils.Round2(total)
}

func serviceChargeFor(subtotal, rate decimal.Decimal) decimal.Decimal {
	return utils.Round2(subtotal.Mul(rate))
}
