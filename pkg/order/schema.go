// Package order defines the order record a receipt is composed from
package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order with everything printed on its receipt
type Order struct {
	ID                int64               `json:"id" validate:"required"`
	Serial            string              `json:"serial,omitempty"`
	CreatedDate       time.Time           `json:"createdDate" validate:"required"`
	RequestedDate     *time.Time          `json:"requestedDate,omitempty"`
	Note              string              `json:"note,omitempty"`
	ApplicationSource bool                `json:"applicationSource,omitempty"`
	TotalPrice        decimal.NullDecimal `json:"totalPrice"`
	DiscountType      *DiscountType       `json:"discountType,omitempty"`
	DiscountAmount    decimal.NullDecimal `json:"discountAmount"`
	Merchant          Merchant            `json:"merchant"`
	Customer          Customer            `json:"customer"`
	OrderType         OrderType           `json:"orderType"`
	OrderPayments     []OrderPayment      `json:"orderPayments,omitempty" validate:"dive"`
	OrderItems        []OrderItem         `json:"orderItems" validate:"required,min=1,dive"`
}

// Merchant is the business the order was placed with
type Merchant struct {
	Name        string    `json:"name" validate:"required"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phoneNumber"`
	VATNumber   string    `json:"vatNumber,omitempty"`
	Locale      string    `json:"locale,omitempty"`
	TimeZone    string    `json:"timeZone,omitempty"`
	Currency    *Currency `json:"currency,omitempty"`
}

// Currency of the merchant
type Currency struct {
	Code string `json:"code"`
}

// Customer who placed the order
type Customer struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// OrderTypeName tags how the order is fulfilled
type OrderTypeName string

const (
	Collection OrderTypeName = "Collection"
	Delivery   OrderTypeName = "Delivery"
)

// OrderType drives the receipt wording
type OrderType struct {
	Name OrderTypeName `json:"name" validate:"required"`
}

// IsCollection reports whether the order is picked up by the customer
func (t OrderType) IsCollection() bool {
	return strings.EqualFold(string(t.Name), string(Collection))
}

// IsDelivery reports whether the order is delivered to the customer
func (t OrderType) IsDelivery() bool {
	return strings.EqualFold(string(t.Name), string(Delivery))
}

// DiscountType names the discount applied to the order
type DiscountType struct {
	Name string `json:"name"`
}

// OrderItem is one ordered product line
type OrderItem struct {
	Quantity           int                 `json:"quantity" validate:"gte=1"`
	Product            Product             `json:"product"`
	Price              decimal.Decimal     `json:"price"`
	Note               string              `json:"note,omitempty"`
	OrderItemModifiers []OrderItemModifier `json:"orderItemModifiers,omitempty"`
}

// Product sold
type Product struct {
	Name string `json:"name" validate:"required"`
}

// OrderItemModifier is an add-on priced independently of its item
type OrderItemModifier struct {
	Modifier      Modifier        `json:"modifier"`
	ModifierPrice decimal.Decimal `json:"modifierPrice"`
}

// Modifier catalog entry
type Modifier struct {
	Name string `json:"name"`
}

// OrderPayment is one payment attempt
type OrderPayment struct {
	Success       bool          `json:"success"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// PaymentMethod code CASH is settled on collection or delivery
type PaymentMethod struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PaymentMethodCash is the code of on-the-spot payments
const PaymentMethodCash = "CASH"

// SuccessfulPayment returns the first successful payment, or nil
func (o *Order) SuccessfulPayment() *OrderPayment {
	for i := range o.OrderPayments {
		if o.OrderPayments[i].Success {
			return &o.OrderPayments[i]
		}
	}
	return nil
}

// CurrencyCode returns the merchant currency code, or "" when it has none
func (m Merchant) CurrencyCode() string {
	if m.Currency == nil {
		return ""
	}
	return strings.TrimSpace(m.Currency.Code)
}
