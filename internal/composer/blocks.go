package composer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/thereceipt/order-printing/pkg/directive"
	"github.com/thereceipt/order-printing/pkg/order"
)

// Banner labels
const (
	LabelCollection = "COLECTARE"
	LabelDelivery   = "LIVRARE"
)

// Payment lines
const (
	PaymentPrefix          = "PLATA: "
	PaymentCollectOnPickup = "PLATA SE REALIZEAZA LA COLECTARE"
	PaymentCollectOnDrop   = "PLATA SE REALIZEAZA LA LIVRARE"
	PaymentPaid            = "PLATIT"
)

// ASAP is printed when the order has no requested date
const ASAP = "ASAP"

// Item table column widths
var (
	itemWidths  = [3]float64{0.1, 0.6, 0.3}
	totalWidths = [2]float64{0.5, 0.5}
)

func headerBlock(o *order.Order) []directive.Directive {
	m := o.Merchant
	ds := []directive.Directive{
		directive.NewLine(),
		directive.SetBold(true),
		directive.SetAlign(directive.AlignCenter),
		directive.SetSize(directive.SizeQuad),
		directive.Text(m.Name),
		directive.SetSize(directive.SizeNormal),
		directive.Text(m.Address),
		directive.Text("Telefon: " + m.PhoneNumber),
	}
	if vat := strings.TrimSpace(m.VATNumber); vat != "" {
		ds = append(ds, directive.Text("VAT: "+vat))
	}
	return ds
}

func bannerBlock(o *order.Order, opts Options) []directive.Directive {
	ds := []directive.Directive{
		directive.NewLine(),
		directive.SetBold(false),
		directive.SetAlign(directive.AlignCenter),
		directive.Line(),
		directive.SetBold(true),
		directive.SetSize(directive.SizeQuad),
	}
	if o.ApplicationSource && opts.SourceTag != "" {
		ds = append(ds, directive.Text(opts.SourceTag))
	}
	return append(ds,
		directive.Invert(true),
		directive.Text(orderTypeLabel(o.OrderType)),
		directive.Invert(false),
		directive.NewLine(),
		directive.Text("Order: #"+strconv.FormatInt(o.ID, 10)),
		directive.SetSize(directive.SizeNormal),
		directive.Line(),
	)
}

func orderTypeLabel(t order.OrderType) string {
	if t.IsCollection() {
		return LabelCollection
	}
	return LabelDelivery
}

func noteBlock(o *order.Order) []directive.Directive {
	note := strings.TrimSpace(o.Note)
	if note == "" {
		return nil
	}
	return []directive.Directive{
		directive.SetBold(false),
		directive.SetAlign(directive.AlignLeft),
		directive.SetSize(directive.SizeDoubleHeight),
		directive.Text(note),
		directive.SetSize(directive.SizeNormal),
		directive.SetAlign(directive.AlignCenter),
		directive.Line(),
		directive.NewLine(),
		directive.SetAlign(directive.AlignLeft),
	}
}

func preparationBlock(o *order.Order) []directive.Directive {
	when := ASAP
	if o.RequestedDate != nil {
		when = formatTimeOfDay(*o.RequestedDate, o.Merchant.Locale, o.Merchant.TimeZone)
	}
	return []directive.Directive{
		directive.SetAlign(directive.AlignLeft),
		directive.SetBold(true),
		directive.SetSize(directive.SizeDoubleHeight),
		directive.Text("Preparare: " + when),
		directive.SetSize(directive.SizeNormal),
		directive.NewLine(),
		directive.SetBold(false),
		directive.SetAlign(directive.AlignCenter),
		directive.Line(),
		directive.NewLine(),
	}
}

func metadataBlock(o *order.Order) []directive.Directive {
	c := o.Customer
	return []directive.Directive{
		directive.SetAlign(directive.AlignLeft),
		directive.SetBold(true),
		directive.Text("Data: " + formatTimestamp(o.CreatedDate, o.Merchant.Locale, o.Merchant.TimeZone)),
		directive.Text("Client: " + c.FullName),
		directive.Text("Email: " + c.Email),
		directive.Text("Telefon: " + c.PhoneNumber),
		directive.SetBold(false),
		directive.NewLine(),
	}
}

func itemsHeaderBlock() []directive.Directive {
	return []directive.Directive{
		directive.SetAlign(directive.AlignCenter),
		directive.SetSize(directive.SizeQuad),
		directive.Text("Articole"),
		directive.SetSize(directive.SizeNormal),
		directive.NewLine(),
		directive.SetAlign(directive.AlignLeft),
	}
}

func itemsBlock(o *order.Order) []directive.Directive {
	ds := []directive.Directive{
		directive.SetBold(false),
		directive.SetSize(directive.SizeDoubleHeight),
	}

	for _, item := range o.OrderItems {
		ds = append(ds, itemRow(item))
		for _, mod := range item.OrderItemModifiers {
			ds = append(ds, modifierRow(mod))
		}
		if note := strings.TrimSpace(item.Note); note != "" {
			ds = append(ds, directive.Text("  Nota: "+note))
		}
	}

	return append(ds,
		directive.SetSize(directive.SizeNormal),
		directive.NewLine(),
		directive.SetAlign(directive.AlignCenter),
		directive.Line(),
		directive.SetAlign(directive.AlignLeft),
	)
}

func itemRow(item order.OrderItem) directive.Directive {
	return directive.Table(
		directive.Cell{Text: fmt.Sprintf("%dx ", item.Quantity), Align: directive.AlignLeft, Width: itemWidths[0], Bold: true},
		directive.Cell{Text: strings.TrimSpace(item.Product.Name), Align: directive.AlignLeft, Width: itemWidths[1], Bold: true},
		directive.Cell{Text: formatMoney(item.Price), Align: directive.AlignLeft, Width: itemWidths[2], Bold: true},
	)
}

func modifierRow(mod order.OrderItemModifier) directive.Directive {
	return directive.Table(
		directive.Cell{Text: "-", Align: directive.AlignLeft, Width: itemWidths[0]},
		directive.Cell{Text: strings.TrimSpace(mod.Modifier.Name), Align: directive.AlignLeft, Width: itemWidths[1]},
		directive.Cell{Text: formatMoney(mod.ModifierPrice), Align: directive.AlignLeft, Width: itemWidths[2]},
	)
}

func totalsBlock(o *order.Order) []directive.Directive {
	if !o.TotalPrice.Valid || o.TotalPrice.Decimal.IsZero() {
		return nil
	}
	code := o.Merchant.CurrencyCode()

	ds := []directive.Directive{
		directive.SetBold(true),
		directive.SetSize(directive.SizeDoubleHeight),
	}
	if o.DiscountType != nil {
		amount := decimal.Zero
		if o.DiscountAmount.Valid {
			amount = o.DiscountAmount.Decimal
		}
		ds = append(ds, totalRow(strings.ToUpper(o.DiscountType.Name), "-"+withCurrency(formatMoney(amount), code)))
	}
	return append(ds,
		totalRow("TOTAL", withCurrency(formatMoney(o.TotalPrice.Decimal), code)),
		directive.SetSize(directive.SizeNormal),
		directive.SetAlign(directive.AlignLeft),
	)
}

func totalRow(label, amount string) directive.Directive {
	return directive.Table(
		directive.Cell{Text: label, Align: directive.AlignLeft, Width: totalWidths[0], Bold: true},
		directive.Cell{Text: amount, Align: directive.AlignRight, Width: totalWidths[1], Bold: true},
	)
}

func paymentBlock(o *order.Order) []directive.Directive {
	payment := o.SuccessfulPayment()
	if payment == nil {
		return nil
	}

	ds := []directive.Directive{
		directive.NewLine(),
		directive.SetBold(true),
		directive.SetAlign(directive.AlignCenter),
		directive.Text(PaymentPrefix + payment.PaymentMethod.Description),
	}

	if payment.PaymentMethod.Code == order.PaymentMethodCash {
		switch {
		case o.OrderType.IsCollection():
			ds = append(ds, directive.Text(PaymentCollectOnPickup))
		case o.OrderType.IsDelivery():
			ds = append(ds, directive.Text(PaymentCollectOnDrop))
		}
	} else {
		ds = append(ds, directive.NewLine(), directive.Text(PaymentPaid))
	}

	return append(ds, directive.SetSize(directive.SizeNormal))
}

func footerBlock(opts Options) []directive.Directive {
	ds := []directive.Directive{
		directive.SetAlign(directive.AlignCenter),
		directive.Line(),
		directive.NewLine(),
		directive.SetBold(true),
	}
	for _, line := range opts.BrandLines {
		ds = append(ds, directive.Text(line))
	}
	return append(ds,
		directive.SetBold(false),
		directive.NewLine(),
		directive.QR(opts.QR),
		directive.Cut(),
	)
}
