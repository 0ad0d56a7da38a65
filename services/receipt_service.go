package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

const receiptWidth = 80.0

type ReceiptService struct {
	db *gorm.DB
}

func NewReceiptService(db *gorm.DB) *ReceiptService {
	return &ReceiptService{db: db}
}

// Receipt is the printable view of an order and its payments.
type Receipt struct {
	Number   string               `json:"number"`
	Store    models.StoreSettings `json:"store"`
	Order    models.Order         `json:"order"`
	Payments []models.Payment     `json:"payments"`
	Refunds  []models.Refund      `json:"refunds"`
}

func (s *ReceiptService) Build(ctx context.Context, orderID uint) (*Receipt, error) {
	db := s.db.WithContext(ctx)
	settings, err := loadSettings(db)
	if err != nil {
		return nil, err
	}
	var order models.Order
	err = db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Modifiers").
		First(&order, orderID).Error
	if err != nil {
		return nil, utils.WrapDBError(err, "order")
	}
	r := Receipt{
		Number: fmt.Sprintf("RCP/%s/%06d", order.CreatedAt.Format("20060102"), order.OrderNumber),
		Store:  *settings,
		Order:  order,
	}
	if err := db.Where("order_id = ? AND status = ?", order.ID, models.PaymentStatusCompleted).Order("id").Find(&r.Payments).Error; err != nil {
		return nil, utils.WrapDBError(err, "payments")
	}
	if err := db.Where("order_id = ?", order.ID).Order("id").Find(&r.Refunds).Error; err != nil {
		return nil, utils.WrapDBError(err, "refunds")
	}
	return &r, nil
}

// PDF renders an 80mm till receipt.
func (s *ReceiptService) PDF(ctx context.Context, orderID uint) ([]byte, *Receipt, error) {
	r, err := s.Build(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	data, err := renderReceipt(r)
	if err != nil {
		return nil, nil, &utils.AppError{Kind: utils.KindInternal, Message: "failed to render receipt", Err: err}
	}
	return data, r, nil
}

func renderReceipt(r *Receipt) ([]byte, error) {
	lines := len(r.Payments) + len(r.Refunds)
	for _, it := range r.Order.Items {
		lines += 1 + len(it.Modifiers)
	}
	height := 90.0 + float64(lines)*5

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string { return d.StringFixed(2) }
	content := receiptWidth - 8

	title := r.Store.RestaurantNameEn
	if title == "" {
		title = "Receipt"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(content, 6, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(content, 4, tr(r.Number), "", 1, "C", false, 0, "")
	pdf.CellFormat(content, 4, fmt.Sprintf("Order #%d  %s", r.Order.OrderNumber, r.Order.CreatedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	if r.Order.TableNumber != nil {
		pdf.CellFormat(content, 4, tr("Table "+*r.Order.TableNumber), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	for _, it := range r.Order.Items {
		name := it.ItemNameEn
		if it.SizeNameEn != nil {
			name += " (" + *it.SizeNameEn + ")"
		}
		pdf.CellFormat(content-20, 5, tr(fmt.Sprintf("%dx %s", it.Quantity, name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 5, money(it.TotalPrice), "", 1, "R", false, 0, "")
		for _, m := range it.Modifiers {
			pdf.CellFormat(content-20, 5, tr("   + "+m.NameEn), "", 0, "L", false, 0, "")
			pdf.CellFormat(20, 5, money(m.Price), "", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), receiptWidth-4, pdf.GetY())
	pdf.Ln(1)

	total := func(label, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		pdf.CellFormat(content-25, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, amount, "", 1, "R", false, 0, "")
	}
	total("Subtotal", money(r.Order.Subtotal), false)
	total("Service charge", money(r.Order.ServiceCharge), false)
	if !r.Order.Discount.IsZero() {
		total("Discount", "-"+money(r.Order.Discount), false)
	}
	total("Total "+r.Store.Currency, utils.FormatMoney(r.Order.Total, ""), true)
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 8)
	for _, p := range r.Payments {
		total("Paid "+string(p.Method), money(p.Amount), false)
	}
	for _, rf := range r.Refunds {
		total("Refund", "-"+money(rf.Amount), false)
	}
	pdf.Ln(3)
	pdf.CellFormat(content, 4, "Thank you", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
