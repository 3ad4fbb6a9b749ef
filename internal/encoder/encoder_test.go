package encoder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereceipt/order-printing/pkg/directive"
)

func sampleReceipt() []directive.Directive {
	return []directive.Directive{
		directive.SetBold(true),
		directive.SetAlign(directive.AlignCenter),
		directive.SetSize(directive.SizeQuad),
		directive.Text("Pizzeria"),
		directive.SetSize(directive.SizeNormal),
		directive.Invert(true),
		directive.Text("LIVRARE"),
		directive.Invert(false),
		directive.SetBold(false),
		directive.Line(),
		directive.SetAlign(directive.AlignLeft),
		directive.Table(
			directive.Cell{Text: "2x ", Align: directive.AlignLeft, Width: 0.1, Bold: true},
			directive.Cell{Text: "Margherita", Align: directive.AlignLeft, Width: 0.6, Bold: true},
			directive.Cell{Text: "5.00", Align: directive.AlignRight, Width: 0.3, Bold: true},
		),
		directive.NewLine(),
		directive.QR(directive.QRCode{Payload: "https://l4market.com/", CellSize: 6, Correction: directive.CorrectionM, Model: 2}),
		directive.Cut(),
	}
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		label   string
		want    Family
		wantErr bool
	}{
		{"epson", FamilyEpson, false},
		{"EPSON", FamilyEpson, false},
		{" Star ", FamilyStar, false},
		{"zebra", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			f, err := ParseFamily(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedPrinterFamily)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestEncode_UnsupportedFamily(t *testing.T) {
	out, err := Encode(context.Background(), sampleReceipt(), "zebra", DefaultConfig())
	assert.ErrorIs(t, err, ErrUnsupportedPrinterFamily)
	assert.Nil(t, out)
}

func TestEncode_EncodingFailure(t *testing.T) {
	for _, family := range Families() {
		t.Run(string(family), func(t *testing.T) {
			ds := sampleReceipt()
			ds = append(ds[:3], directive.Table(directive.Cell{Text: "x", Align: directive.AlignLeft, Width: 1.5}))

			out, err := Encode(context.Background(), ds, string(family), DefaultConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEncodingFailure)
			assert.Nil(t, out)

			var encErr *EncodingError
			require.True(t, errors.As(err, &encErr))
			assert.Equal(t, 3, encErr.Index)
			assert.Equal(t, directive.KindTable, encErr.Kind)
		})
	}
}

func TestEncode_QRTooLong(t *testing.T) {
	ds := []directive.Directive{
		directive.QR(directive.QRCode{Payload: strings.Repeat("x", 8000), CellSize: 6, Correction: directive.CorrectionH, Model: 2}),
	}
	_, err := Encode(context.Background(), ds, "star", DefaultConfig())
	assert.ErrorIs(t, err, ErrEncodingFailure)
}

func TestEncode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Encode(ctx, sampleReceipt(), "star", DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncode_Epson(t *testing.T) {
	out, err := Encode(context.Background(), sampleReceipt(), "epson", DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, out)

	assert.True(t, bytes.Contains(out, []byte{ESC, '@', ESC, 't', epsonCodePage852}))
	assert.Contains(t, string(out), "Pizzeria")
	assert.Contains(t, string(out), "Margherita")
	assert.Contains(t, string(out), "https://l4market.com/")
}

var epsonInit = []byte{ESC, '@', ESC, 't', epsonCodePage852}

// epsonStyle is the style prefix escpos writes before every text run
func epsonStyle(bold, reverse bool, justify, size byte) []byte {
	flag := func(b bool) byte {
		if b {
			return '1'
		}
		return '0'
	}
	return []byte{
		ESC, 'E', flag(bold),
		ESC, '-', 0,
		GS, 'B', flag(reverse),
		ESC, 'V', '0',
		ESC, '{', '0',
		ESC, 'a', justify,
		GS, '!', size,
	}
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestEpson_StyleBeforeText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []byte
	}{
		{"ascii", "Pizzeria", []byte("Pizzeria")},
		{"code page 852", "Brutăria", []byte{'B', 'r', 'u', 't', 0xC7, 'r', 'i', 'a'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := []directive.Directive{
				directive.SetSize(directive.SizeQuad),
				directive.SetBold(true),
				directive.SetAlign(directive.AlignCenter),
				directive.Invert(true),
				directive.Text(tt.text),
			}
			out, err := Encode(context.Background(), ds, "epson", DefaultConfig())
			require.NoError(t, err)

			style := epsonStyle(true, true, 1, 0x11)
			assert.Equal(t, concat(epsonInit, style, tt.want, style, []byte{LF}), out)
		})
	}
}

func TestEpson_DefaultsToNormalSize(t *testing.T) {
	out, err := Encode(context.Background(), []directive.Directive{directive.Text("hi")}, "epson", DefaultConfig())
	require.NoError(t, err)

	style := epsonStyle(false, false, 0, 0x00)
	assert.Equal(t, concat(epsonInit, style, []byte("hi"), style, []byte{LF}), out)
}

func TestEpson_DoubleHeight(t *testing.T) {
	ds := []directive.Directive{directive.SetSize(directive.SizeDoubleHeight), directive.Text("x")}
	out, err := Encode(context.Background(), ds, "epson", DefaultConfig())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, concat(epsonInit, epsonStyle(false, false, 0, 0x01), []byte("x"))))
}

func TestEpson_QRCode(t *testing.T) {
	payload := "https://l4market.com/"
	tests := []struct {
		correction directive.Correction
		model      int
		modelByte  byte
		level      byte
	}{
		{directive.CorrectionL, 2, 50, 48},
		{directive.CorrectionM, 2, 50, 49},
		{directive.CorrectionQ, 1, 49, 50},
		{directive.CorrectionH, 2, 50, 51},
	}
	for _, tt := range tests {
		t.Run(string(tt.correction), func(t *testing.T) {
			ds := []directive.Directive{
				directive.QR(directive.QRCode{Payload: payload, CellSize: 6, Correction: tt.correction, Model: tt.model}),
			}
			out, err := Encode(context.Background(), ds, "epson", DefaultConfig())
			require.NoError(t, err)

			want := concat(
				[]byte{GS, '(', 'k', 4, 0, 49, 65, tt.modelByte, 0},
				[]byte{GS, '(', 'k', 3, 0, 49, 67, 6},
				[]byte{GS, '(', 'k', 3, 0, 49, 69, tt.level},
				[]byte{GS, '(', 'k', byte(len(payload) + 3), 0, 49, 80, 48},
				[]byte(payload),
				[]byte{GS, '(', 'k', 3, 0, 49, 81, 48},
			)
			assert.True(t, bytes.HasPrefix(out, concat(epsonInit, want)), "% x", out)
		})
	}
}

func TestEpson_TableRestoresBold(t *testing.T) {
	ds := []directive.Directive{
		directive.SetBold(false),
		directive.Table(
			directive.Cell{Text: "TOTAL", Align: directive.AlignLeft, Width: 0.5, Bold: true},
			directive.Cell{Text: "9.00", Align: directive.AlignRight, Width: 0.5},
		),
		directive.Text("after"),
	}
	out, err := Encode(context.Background(), ds, "epson", Config{LineWidth: 20})
	require.NoError(t, err)

	bold := epsonStyle(true, false, 0, 0x00)
	plain := epsonStyle(false, false, 0, 0x00)
	want := concat(
		epsonInit,
		bold, []byte("TOTAL     "),
		plain, []byte("      9.00"),
		plain, []byte{LF},
		plain, []byte("after"),
		plain, []byte{LF},
	)
	assert.Equal(t, want, out)
}

func TestEpson_Cut(t *testing.T) {
	out, err := Encode(context.Background(), sampleReceipt(), "epson", DefaultConfig())
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(out, []byte{GS, 'V', 'A', '0'}))
}

func TestEncode_Star(t *testing.T) {
	out, err := Encode(context.Background(), sampleReceipt(), "star", DefaultConfig())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte{ESC, '@', ESC, GS, 't', starCodePage852}))
	assert.True(t, bytes.HasSuffix(out, []byte{ESC, 'd', 3}))
	assert.Contains(t, string(out), strings.Repeat("-", DefaultLineWidth))
}

func TestStar_RoundTrip(t *testing.T) {
	out, err := Encode(context.Background(), sampleReceipt(), "star", DefaultConfig())
	require.NoError(t, err)

	ops, err := DecodeStar(out)
	require.NoError(t, err)

	title := Style{Bold: true, Align: directive.AlignCenter, Size: directive.SizeQuad}
	banner := Style{Bold: true, Align: directive.AlignCenter, Size: directive.SizeNormal, Invert: true}
	rule := Style{Align: directive.AlignCenter, Size: directive.SizeNormal}
	row := Style{Bold: true, Align: directive.AlignLeft, Size: directive.SizeNormal}

	want := []Op{
		{Kind: OpText, Text: "Pizzeria", Style: title},
		{Kind: OpFeed},
		{Kind: OpText, Text: "LIVRARE", Style: banner},
		{Kind: OpFeed},
		{Kind: OpText, Text: strings.Repeat("-", 48), Style: rule},
		{Kind: OpFeed},
		{Kind: OpText, Text: "2x  Margherita" + strings.Repeat(" ", 28) + "5.00  ", Style: row},
		{Kind: OpFeed},
		{Kind: OpFeed},
		{Kind: OpQR, QR: &directive.QRCode{Payload: "https://l4market.com/", CellSize: 6, Correction: directive.CorrectionM, Model: 2}},
		{Kind: OpFeed},
		{Kind: OpCut},
	}
	assert.Equal(t, want, ops)
}

func TestStar_IdempotentModes(t *testing.T) {
	once := []directive.Directive{
		directive.SetBold(true),
		directive.SetAlign(directive.AlignRight),
		directive.SetSize(directive.SizeDoubleHeight),
		directive.Text("A"),
	}
	twice := []directive.Directive{
		directive.SetBold(true),
		directive.SetBold(true),
		directive.SetAlign(directive.AlignRight),
		directive.SetAlign(directive.AlignRight),
		directive.SetSize(directive.SizeDoubleHeight),
		directive.SetSize(directive.SizeDoubleHeight),
		directive.Text("A"),
	}

	a, err := Encode(context.Background(), once, "star", DefaultConfig())
	require.NoError(t, err)
	b, err := Encode(context.Background(), twice, "star", DefaultConfig())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	opsA, err := DecodeStar(a)
	require.NoError(t, err)
	opsB, err := DecodeStar(b)
	require.NoError(t, err)
	assert.Equal(t, opsA, opsB)
}

func TestStar_TableRestoresBold(t *testing.T) {
	ds := []directive.Directive{
		directive.SetBold(false),
		directive.Table(
			directive.Cell{Text: "TOTAL", Align: directive.AlignLeft, Width: 0.5, Bold: true},
			directive.Cell{Text: "9.00", Align: directive.AlignRight, Width: 0.5},
		),
		directive.Text("after"),
	}
	out, err := Encode(context.Background(), ds, "star", Config{LineWidth: 20})
	require.NoError(t, err)

	ops, err := DecodeStar(out)
	require.NoError(t, err)

	require.Len(t, ops, 5)
	assert.Equal(t, "TOTAL     ", ops[0].Text)
	assert.True(t, ops[0].Style.Bold)
	assert.Equal(t, "      9.00", ops[1].Text)
	assert.False(t, ops[1].Style.Bold)
	assert.Equal(t, "after", ops[3].Text)
	assert.False(t, ops[3].Style.Bold)
}

func TestStar_QuadHalvesWidth(t *testing.T) {
	ds := []directive.Directive{
		directive.SetSize(directive.SizeQuad),
		directive.Line(),
	}
	out, err := Encode(context.Background(), ds, "star", DefaultConfig())
	require.NoError(t, err)

	ops, err := DecodeStar(out)
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	assert.Equal(t, strings.Repeat("-", 24), ops[0].Text)
}

func TestStar_CodePage(t *testing.T) {
	ds := []directive.Directive{directive.Text("Brașov, Timișoara, Țară, ĂÎÂ 5€")}
	out, err := Encode(context.Background(), ds, "star", DefaultConfig())
	require.NoError(t, err)

	ops, err := DecodeStar(out)
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	assert.Equal(t, "Braşov, Timişoara, Ţară, ĂÎÂ 5?", ops[0].Text)
}

func TestDecodeStar_Truncated(t *testing.T) {
	_, err := DecodeStar([]byte{ESC, 'i', 1})
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = DecodeStar([]byte{ESC, GS, 'y', 'D', '1', 0, 10, 0, 'a'})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{""}, wrap("   ", 5))
	assert.Equal(t, []string{"ab cd", "ef"}, wrap("ab cd ef", 5))
	assert.Equal(t, []string{"abcde", "fgh", "ij"}, wrap("abcdefgh ij", 5))
	assert.Equal(t, []string{"ab", "cdefg", "h"}, wrap("ab cdefgh", 5))
}

func TestLayoutTable_Wraps(t *testing.T) {
	lines := layoutTable([]directive.Cell{
		{Text: "1x", Align: directive.AlignLeft, Width: 0.25},
		{Text: "Quattro stagioni", Align: directive.AlignLeft, Width: 0.5},
		{Text: "30.00", Align: directive.AlignRight, Width: 0.25},
	}, 20)

	require.Len(t, lines, 2)
	assert.Equal(t, []Segment{{Text: "1x   Quattro   30.00"}}, lines[0])
	assert.Equal(t, []Segment{{Text: "     stagioni       "}}, lines[1])

	lines = layoutTable([]directive.Cell{
		{Text: "TOTAL", Align: directive.AlignLeft, Width: 0.25, Bold: true},
		{Text: "9.00", Align: directive.AlignRight, Width: 0.5},
	}, 20)
	require.Len(t, lines, 1)
	assert.Equal(t, []Segment{{Text: "TOTAL", Bold: true}, {Text: "      9.00     "}}, lines[0])
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5, directive.AlignLeft))
	assert.Equal(t, "   ab", pad("ab", 5, directive.AlignRight))
	assert.Equal(t, " ab  ", pad("ab", 5, directive.AlignCenter))
	assert.Equal(t, "abcdef", pad("abcdef", 5, directive.AlignLeft))
}
