package encoder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/thereceipt/order-printing/pkg/directive"
)

// Star line mode command bytes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	LF  byte = 0x0A
)

// Star code page table entry for code page 852
const starCodePage852 = 5

// starDriver generates Star line mode commands
type starDriver struct {
	buffer *bytes.Buffer
	width  int
	st     state
}

func newStarDriver(cfg Config) *starDriver {
	d := &starDriver{
		buffer: new(bytes.Buffer),
		width:  cfg.lineWidth(),
		st:     initialState(),
	}
	d.initialize()
	return d
}

// initialize resets the printer and selects the code page
func (d *starDriver) initialize() {
	d.buffer.Write([]byte{ESC, '@'})
	d.buffer.Write([]byte{ESC, GS, 't', starCodePage852})
}

func (d *starDriver) Encode(dir directive.Directive) error {
	switch dir.Kind {
	case directive.KindBold:
		d.setBold(dir.On)
	case directive.KindAlign:
		d.setAlignment(dir.Align)
	case directive.KindSize:
		d.setSize(dir.Size)
	case directive.KindInvert:
		d.setInvert(dir.On)
	case directive.KindText:
		d.buffer.Write(toCodePage(dir.Text))
		d.lineFeed()
	case directive.KindLine:
		d.buffer.WriteString(rule(d.st.width(d.width)))
		d.lineFeed()
	case directive.KindNewLine:
		d.lineFeed()
	case directive.KindTable:
		d.table(dir.Cells)
	case directive.KindQRCode:
		return d.qrCode(dir.QR)
	case directive.KindCut:
		d.cut()
	default:
		return fmt.Errorf("unknown directive kind: %s", dir.Kind)
	}
	return nil
}

func (d *starDriver) Finalize(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, d.buffer.Len())
	copy(out, d.buffer.Bytes())
	return out, nil
}

func (d *starDriver) lineFeed() {
	d.buffer.WriteByte(LF)
}

// setBold enables or disables emphasized printing
func (d *starDriver) setBold(enabled bool) {
	d.st.bold = enabled
	if enabled {
		d.buffer.Write([]byte{ESC, 'E'})
	} else {
		d.buffer.Write([]byte{ESC, 'F'})
	}
}

// setAlignment sets text alignment
func (d *starDriver) setAlignment(align directive.Align) {
	d.st.align = align
	d.buffer.Write([]byte{ESC, GS, 'a', alignByte(align)})
}

// setSize sets character expansion, ESC i height width
func (d *starDriver) setSize(size directive.Size) {
	d.st.size = size
	h, w := sizeBytes(size)
	d.buffer.Write([]byte{ESC, 'i', h, w})
}

// setInvert toggles white/black reverse printing
func (d *starDriver) setInvert(enabled bool) {
	d.st.invert = enabled
	if enabled {
		d.buffer.Write([]byte{ESC, '4'})
	} else {
		d.buffer.Write([]byte{ESC, '5'})
	}
}

// table prints a laid out row, toggling bold per cell and restoring it after
func (d *starDriver) table(cells []directive.Cell) {
	outer := d.st.bold
	current := outer
	for _, line := range layoutTable(cells, d.st.width(d.width)) {
		for _, seg := range line {
			if seg.Bold != current {
				d.setBold(seg.Bold)
				current = seg.Bold
			}
			d.buffer.Write(toCodePage(seg.Text))
		}
		d.lineFeed()
	}
	if current != outer {
		d.setBold(outer)
	}
}

// qrCode prints a QR symbol: model, correction, cell size, data, print
func (d *starDriver) qrCode(q *directive.QRCode) error {
	if err := checkQR(q); err != nil {
		return err
	}

	data := []byte(q.Payload)
	d.buffer.Write([]byte{ESC, GS, 'y', 'S', '0', byte(q.Model)})
	d.buffer.Write([]byte{ESC, GS, 'y', 'S', '1', correctionIndex(q.Correction)})
	d.buffer.Write([]byte{ESC, GS, 'y', 'S', '2', byte(q.CellSize)})
	d.buffer.Write([]byte{ESC, GS, 'y', 'D', '1', 0, byte(len(data) & 0xFF), byte((len(data) >> 8) & 0xFF)})
	d.buffer.Write(data)
	d.buffer.Write([]byte{ESC, GS, 'y', 'P'})
	d.lineFeed()
	return nil
}

// cut feeds to the cutter and performs a partial cut
func (d *starDriver) cut() {
	d.buffer.Write([]byte{ESC, 'd', 3})
}

func alignByte(a directive.Align) byte {
	switch a {
	case directive.AlignCenter:
		return 1
	case directive.AlignRight:
		return 2
	default:
		return 0
	}
}

func sizeBytes(s directive.Size) (height, width byte) {
	switch s {
	case directive.SizeDoubleHeight:
		return 1, 0
	case directive.SizeQuad:
		return 1, 1
	default:
		return 0, 0
	}
}
