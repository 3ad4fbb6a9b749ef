package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereceipt/order-printing/internal/composer"
	"github.com/thereceipt/order-printing/pkg/directive"
	"github.com/thereceipt/order-printing/pkg/order"
)

func TestRender_Plain(t *testing.T) {
	ds := []directive.Directive{
		directive.SetAlign(directive.AlignCenter),
		directive.Text("Shop"),
		directive.SetAlign(directive.AlignLeft),
		directive.Line(),
		directive.Table(
			directive.Cell{Text: "2x", Align: directive.AlignLeft, Width: 0.25},
			directive.Cell{Text: "Tea", Align: directive.AlignLeft, Width: 0.5},
			directive.Cell{Text: "5.00", Align: directive.AlignRight, Width: 0.25},
		),
		directive.NewLine(),
		directive.Cut(),
	}

	out, err := Render(ds, 20)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"        Shop",
		"--------------------",
		"2x   Tea        5.00",
		"",
		cutMarker,
	}, strings.Split(out, "\n"))
}

func TestRender_QuadHalvesWidth(t *testing.T) {
	ds := []directive.Directive{
		directive.SetSize(directive.SizeQuad),
		directive.Line(),
		directive.SetSize(directive.SizeNormal),
		directive.Line(),
	}

	out, err := Render(ds, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("-", 10), strings.Repeat("-", 20)}, strings.Split(out, "\n"))
}

func TestRender_LongTextBreaks(t *testing.T) {
	out, err := Render([]directive.Directive{directive.Text("abcdefghijklmno")}, 10)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij\nklmno", out)
}

func TestRender_QRCode(t *testing.T) {
	ds := []directive.Directive{directive.QR(directive.QRCode{
		Payload:    "https://l4market.com/",
		CellSize:   6,
		Correction: directive.CorrectionM,
		Model:      2,
	})}

	out, err := Render(ds, 48)
	require.NoError(t, err)
	assert.Greater(t, len(strings.Split(out, "\n")), 5)
	assert.True(t, strings.ContainsAny(out, "█▀▄"))

	_, err = Render([]directive.Directive{{Kind: directive.KindQRCode}}, 48)
	assert.Error(t, err)
}

func TestRender_UnknownKind(t *testing.T) {
	_, err := Render([]directive.Directive{{Kind: "bogus"}}, 48)
	assert.Error(t, err)
}

func TestRender_StatePerCall(t *testing.T) {
	r := New(20, false)

	_, err := r.Render([]directive.Directive{directive.SetSize(directive.SizeQuad)})
	require.NoError(t, err)

	out, err := r.Render([]directive.Directive{directive.Line()})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("-", 20), out)
}

func TestRenderStyled_ComposedReceipt(t *testing.T) {
	o := &order.Order{
		ID:          1,
		CreatedDate: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		TotalPrice:  decimal.NewNullDecimal(decimal.RequireFromString("10")),
		Merchant:    order.Merchant{Name: "Pizzeria Roma", Locale: "ro-RO", TimeZone: "Europe/Bucharest"},
		OrderType:   order.OrderType{Name: order.Delivery},
		OrderItems: []order.OrderItem{
			{Quantity: 2, Product: order.Product{Name: "Margherita"}, Price: decimal.RequireFromString("5")},
		},
	}

	ds := composer.Compose(o)

	plain, err := Render(ds, 48)
	require.NoError(t, err)
	assert.Contains(t, plain, "Pizzeria Roma")
	assert.Contains(t, plain, "Margherita")
	assert.Contains(t, plain, "www.l4market.com")

	styled, err := RenderStyled(ds, 48)
	require.NoError(t, err)
	assert.Contains(t, styled, "Margherita")
	assert.Contains(t, styled, "╭")
}
