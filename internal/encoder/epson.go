package encoder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hennedo/escpos"
	"github.com/thereceipt/order-printing/pkg/directive"
)

// ESC t 18 selects PC852 (Latin 2) on Epson printers
const epsonCodePage852 = 18

// GS ( k error correction arguments for L, M, Q, H
var epsonCorrection = [4]uint8{48, 49, 50, 51}

// epsonDriver generates ESC/POS through hennedo/escpos
type epsonDriver struct {
	buffer *bytes.Buffer
	p      *escpos.Escpos
	width  int
	st     state
	err    error
}

func newEpsonDriver(cfg Config) *epsonDriver {
	buf := new(bytes.Buffer)
	d := &epsonDriver{
		buffer: buf,
		p:      escpos.New(buf),
		width:  cfg.lineWidth(),
		st:     initialState(),
	}
	// escpos.Style starts at width and height 0, which Write sends as GS ! 0xFF
	d.p.Size(1, 1).Justify(escpos.JustifyLeft)
	d.raw([]byte{ESC, '@', ESC, 't', epsonCodePage852})
	return d
}

func (d *epsonDriver) Encode(dir directive.Directive) error {
	switch dir.Kind {
	case directive.KindBold:
		d.st.bold = dir.On
		d.p.Bold(dir.On)
	case directive.KindAlign:
		d.st.align = dir.Align
		d.p.Justify(uint8(alignByte(dir.Align)))
	case directive.KindSize:
		d.st.size = dir.Size
		d.p.Size(epsonSize(dir.Size))
	case directive.KindInvert:
		d.st.invert = dir.On
		d.p.Reverse(dir.On)
	case directive.KindText:
		d.text(dir.Text)
		d.lineFeed()
	case directive.KindLine:
		d.text(rule(d.st.width(d.width)))
		d.lineFeed()
	case directive.KindNewLine:
		d.lineFeed()
	case directive.KindTable:
		d.table(dir.Cells)
	case directive.KindQRCode:
		if err := checkQR(dir.QR); err != nil {
			return err
		}
		d.qrCode(dir.QR)
		d.lineFeed()
	case directive.KindCut:
		d.check(d.p.Cut())
	default:
		return fmt.Errorf("unknown directive kind: %s", dir.Kind)
	}
	return d.err
}

// Finalize flushes the escpos writer and returns the buffer
func (d *epsonDriver) Finalize(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}
	if err := d.p.Print(); err != nil {
		return nil, fmt.Errorf("failed to flush escpos buffer: %w", err)
	}
	out := make([]byte, d.buffer.Len())
	copy(out, d.buffer.Bytes())
	return out, nil
}

func (d *epsonDriver) check(_ int, err error) {
	if err != nil && d.err == nil {
		d.err = err
	}
}

func (d *epsonDriver) raw(b []byte) {
	d.check(d.p.WriteRaw(b))
}

// text writes through the styled writer so the current style precedes the bytes
func (d *epsonDriver) text(s string) {
	d.check(d.p.Write(string(toCodePage(s))))
}

// qrCode emits the GS ( k function sequence: model, module size, error
// correction, store, print. escpos.QRCode sends the size as the correction level.
func (d *epsonDriver) qrCode(q *directive.QRCode) {
	model := byte(49)
	if q.Model == 2 {
		model = 50
	}
	d.raw([]byte{GS, '(', 'k', 4, 0, 49, 65, model, 0})
	d.raw([]byte{GS, '(', 'k', 3, 0, 49, 67, byte(q.CellSize)})
	d.raw([]byte{GS, '(', 'k', 3, 0, 49, 69, epsonCorrection[correctionIndex(q.Correction)]})

	n := len(q.Payload) + 3
	store := append([]byte{GS, '(', 'k', byte(n % 256), byte(n / 256), 49, 80, 48}, q.Payload...)
	d.raw(store)
	d.raw([]byte{GS, '(', 'k', 3, 0, 49, 81, 48})
}

func (d *epsonDriver) lineFeed() {
	d.check(d.p.LineFeed())
}

func (d *epsonDriver) table(cells []directive.Cell) {
	outer := d.st.bold
	for _, line := range layoutTable(cells, d.st.width(d.width)) {
		for _, seg := range line {
			d.p.Bold(seg.Bold)
			d.text(seg.Text)
		}
		d.lineFeed()
	}
	d.p.Bold(outer)
}

func epsonSize(s directive.Size) (width, height uint8) {
	switch s {
	case directive.SizeDoubleHeight:
		return 1, 2
	case directive.SizeQuad:
		return 2, 2
	default:
		return 1, 1
	}
}
