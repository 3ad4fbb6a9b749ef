package order

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOrder = `{
	"id": 1042,
	"serial": "A-17",
	"createdDate": "2024-03-01T12:30:00Z",
	"note": "Ring twice",
	"totalPrice": 31.5,
	"discountType": {"name": "Happy hour"},
	"discountAmount": "3.5",
	"merchant": {
		"name": "Pizzeria Roma",
		"address": "Str. Lunga 1",
		"phoneNumber": "0711111111",
		"locale": "ro-RO",
		"timeZone": "Europe/Bucharest",
		"currency": {"code": "RON"}
	},
	"customer": {"fullName": "Ana Pop", "email": "ana@example.com", "phoneNumber": "0722222222"},
	"orderType": {"name": "Delivery"},
	"orderPayments": [
		{"success": false, "paymentMethod": {"code": "CARD", "description": "Card online"}},
		{"success": true, "paymentMethod": {"code": "CASH", "description": "Numerar"}}
	],
	"orderItems": [
		{
			"quantity": 2,
			"product": {"name": " Margherita "},
			"price": 15,
			"orderItemModifiers": [{"modifier": {"name": "Extra cheese"}, "modifierPrice": 2.5}]
		}
	]
}`

func TestParse_ValidOrder(t *testing.T) {
	o, err := Parse([]byte(sampleOrder))
	require.NoError(t, err)

	assert.Equal(t, int64(1042), o.ID)
	assert.Equal(t, "Pizzeria Roma", o.Merchant.Name)
	assert.Equal(t, "RON", o.Merchant.CurrencyCode())
	assert.True(t, o.TotalPrice.Valid)
	assert.True(t, o.TotalPrice.Decimal.Equal(decimal.RequireFromString("31.5")))
	assert.True(t, o.DiscountAmount.Decimal.Equal(decimal.RequireFromString("3.5")))
	assert.Nil(t, o.RequestedDate)
	assert.True(t, o.OrderType.IsDelivery())
	assert.False(t, o.OrderType.IsCollection())
	require.Len(t, o.OrderItems, 1)
	require.Len(t, o.OrderItems[0].OrderItemModifiers, 1)

	payment := o.SuccessfulPayment()
	require.NotNil(t, payment)
	assert.Equal(t, PaymentMethodCash, payment.PaymentMethod.Code)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{invalid json`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	valid := func() *Order {
		return &Order{
			ID:          1,
			CreatedDate: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			Merchant:    Merchant{Name: "Shop"},
			OrderType:   OrderType{Name: Collection},
			OrderItems: []OrderItem{
				{Quantity: 1, Product: Product{Name: "Tea"}, Price: decimal.NewFromInt(3)},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(o *Order)
		wantErr bool
	}{
		{"valid", func(o *Order) {}, false},
		{"missing id", func(o *Order) { o.ID = 0 }, true},
		{"missing merchant name", func(o *Order) { o.Merchant.Name = "" }, true},
		{"missing order type", func(o *Order) { o.OrderType.Name = "" }, true},
		{"no items", func(o *Order) { o.OrderItems = nil }, true},
		{"zero quantity", func(o *Order) { o.OrderItems[0].Quantity = 0 }, true},
		{"negative quantity", func(o *Order) { o.OrderItems[0].Quantity = -1 }, true},
		{"missing product name", func(o *Order) { o.OrderItems[0].Product.Name = "" }, true},
		{"negative price", func(o *Order) { o.OrderItems[0].Price = decimal.NewFromInt(-1) }, true},
		{"missing created date", func(o *Order) { o.CreatedDate = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(o)
			err := Validate(o)
			assert.Equal(t, tt.wantErr, err != nil, "error = %v", err)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}

	assert.Error(t, Validate(nil))
}

func TestSuccessfulPayment_None(t *testing.T) {
	o := &Order{OrderPayments: []OrderPayment{{Success: false}}}
	assert.Nil(t, o.SuccessfulPayment())
}

func TestCurrencyCode_Absent(t *testing.T) {
	assert.Equal(t, "", Merchant{}.CurrencyCode())
	assert.Equal(t, "", Merchant{Currency: &Currency{Code: " "}}.CurrencyCode())
}

func TestOrderType_CaseInsensitive(t *testing.T) {
	assert.True(t, OrderType{Name: "collection"}.IsCollection())
	assert.True(t, OrderType{Name: "DELIVERY"}.IsDelivery())
	assert.False(t, OrderType{Name: "Dine-in"}.IsCollection())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleOrder), 0644))

	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1042), o.ID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSource_Root(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "order.json"), []byte(sampleOrder), 0644))

	outside := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(outside, []byte(sampleOrder), 0644))

	src := Source{Root: root}

	o, err := src.Load("order.json")
	require.NoError(t, err)
	assert.Equal(t, int64(1042), o.ID)

	_, err = src.Load(filepath.Join(root, "order.json"))
	assert.NoError(t, err)

	_, err = src.Load(outside)
	assert.ErrorIs(t, err, ErrSourceDenied)

	_, err = src.Load("../" + filepath.Base(root) + "/../etc/passwd")
	assert.ErrorIs(t, err, ErrSourceDenied)

	_, err = Source{DenyFiles: true}.Load(outside)
	assert.ErrorIs(t, err, ErrSourceDenied)
}

func TestSource_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleOrder))
	}))
	defer srv.Close()

	o, err := Source{}.Load(srv.URL + "/order.json")
	require.NoError(t, err)
	assert.Equal(t, int64(1042), o.ID)

	_, err = Source{}.Load(srv.URL + "/missing")
	assert.Error(t, err)

	_, err = Source{DenyURLs: true}.Load(srv.URL + "/order.json")
	assert.ErrorIs(t, err, ErrSourceDenied)
}

func TestSource_FetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := Source{Client: &http.Client{Timeout: 20 * time.Millisecond}}.Load(srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch order")
}
