package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidSequence(t *testing.T) {
	ds := []Directive{
		SetBold(true),
		SetAlign(AlignCenter),
		SetSize(SizeQuad),
		Text("Hello"),
		Invert(true),
		Invert(false),
		Line(),
		NewLine(),
		Table(
			Cell{Text: "2x ", Align: AlignLeft, Width: 0.1, Bold: true},
			Cell{Text: "Pizza", Align: AlignLeft, Width: 0.6, Bold: true},
			Cell{Text: "5.00", Align: AlignLeft, Width: 0.3, Bold: true},
		),
		QR(QRCode{Payload: "https://example.com/", CellSize: 6, Correction: CorrectionM, Model: 2}),
		Cut(),
	}

	assert.NoError(t, Validate(ds))
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name    string
		cells   []Cell
		wantErr bool
	}{
		{"single full width cell", []Cell{{Text: "a", Align: AlignLeft, Width: 1}}, false},
		{"widths need not sum to one", []Cell{{Text: "a", Align: AlignLeft, Width: 0.4}, {Text: "b", Align: AlignRight, Width: 0.4}}, false},
		{"no cells", nil, true},
		{"zero width", []Cell{{Text: "a", Align: AlignLeft, Width: 0}}, true},
		{"negative width", []Cell{{Text: "a", Align: AlignLeft, Width: -0.2}}, true},
		{"width above one", []Cell{{Text: "a", Align: AlignLeft, Width: 1.2}}, true},
		{"bad align", []Cell{{Text: "a", Align: "middle", Width: 0.5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]Directive{Table(tt.cells...)})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_QRCode(t *testing.T) {
	valid := QRCode{Payload: "x", CellSize: 6, Correction: CorrectionM, Model: 2}

	tests := []struct {
		name    string
		mutate  func(q *QRCode)
		wantErr bool
	}{
		{"valid", func(q *QRCode) {}, false},
		{"empty payload", func(q *QRCode) { q.Payload = " " }, true},
		{"cell size too small", func(q *QRCode) { q.CellSize = 0 }, true},
		{"cell size too large", func(q *QRCode) { q.CellSize = 9 }, true},
		{"bad correction", func(q *QRCode) { q.Correction = "X" }, true},
		{"bad model", func(q *QRCode) { q.Model = 3 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			err := Validate([]Directive{QR(q)})
			assert.Equal(t, tt.wantErr, err != nil, "error = %v", err)
		})
	}

	assert.Error(t, Validate([]Directive{{Kind: KindQRCode}}), "missing qr payload struct")
}

func TestValidate_UnknownKind(t *testing.T) {
	err := Validate([]Directive{Text("ok"), {Kind: "beep"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directive[1]")

	assert.Error(t, Validate([]Directive{{}}))
	assert.Error(t, Validate([]Directive{SetAlign("middle")}))
	assert.Error(t, Validate([]Directive{SetSize("huge")}))
}

func TestParse_JSON(t *testing.T) {
	data := `[
		{"kind": "bold", "on": true},
		{"kind": "text", "text": "Hello World"},
		{"kind": "table", "cells": [{"text": "TOTAL", "align": "left", "width": 0.5}, {"text": "10.00", "align": "right", "width": 0.5}]},
		{"kind": "cut"}
	]`

	ds, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, ds, 4)
	assert.Equal(t, SetBold(true), ds[0])
	assert.Equal(t, []string{"Hello World"}, Texts(ds))
	assert.Len(t, Tables(ds), 1)
	assert.Equal(t, KindCut, ds[3].Kind)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{invalid json`))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Parse([]byte(`[{"kind": "table", "cells": []}]`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestToJSON(t *testing.T) {
	ds := []Directive{SetAlign(AlignRight), Text("Hi"), Cut()}

	data, err := ToJSON(ds)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, ds, parsed)
}
