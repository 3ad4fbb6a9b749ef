package encoder

import (
	"errors"
	"fmt"

	"github.com/thereceipt/order-printing/pkg/directive"
)

// OpKind identifies a decoded printer operation
type OpKind string

const (
	OpText OpKind = "text"
	OpFeed OpKind = "feed"
	OpQR   OpKind = "qrcode"
	OpCut  OpKind = "cut"
)

// Style is the print mode a text run was printed with
type Style struct {
	Bold   bool
	Align  directive.Align
	Size   directive.Size
	Invert bool
}

// Op is one observable printer operation
type Op struct {
	Kind  OpKind
	Text  string
	Style Style
	QR    *directive.QRCode
}

// ErrTruncated is returned when a buffer ends inside a command
var ErrTruncated = errors.New("truncated command")

// DecodeStar reconstructs the printer operations of a Star line mode buffer.
// Mode commands only change the style of following text, so setting a mode
// twice decodes the same as setting it once. Adjacent text runs with the
// same style are merged.
func DecodeStar(buf []byte) ([]Op, error) {
	dec := &starDecoder{buf: buf, st: initialState()}
	if err := dec.run(); err != nil {
		return nil, err
	}
	return dec.ops, nil
}

type starDecoder struct {
	buf  []byte
	pos  int
	st   state
	text []byte
	ops  []Op
	qr   directive.QRCode
}

func (d *starDecoder) style() Style {
	return Style{Bold: d.st.bold, Align: d.st.align, Size: d.st.size, Invert: d.st.invert}
}

// take returns the next n bytes
func (d *starDecoder) take(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, fmt.Errorf("%w at offset %d", ErrTruncated, d.pos)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// flush ends the current text run
func (d *starDecoder) flush() {
	if len(d.text) == 0 {
		return
	}
	text := fromCodePage(d.text)
	d.text = d.text[:0]

	st := d.style()
	if n := len(d.ops); n > 0 && d.ops[n-1].Kind == OpText && d.ops[n-1].Style == st {
		d.ops[n-1].Text += text
		return
	}
	d.ops = append(d.ops, Op{Kind: OpText, Text: text, Style: st})
}

func (d *starDecoder) emit(op Op) {
	d.flush()
	d.ops = append(d.ops, op)
}

func (d *starDecoder) run() error {
	for d.pos < len(d.buf) {
		b := d.buf[d.pos]
		d.pos++
		switch b {
		case LF:
			d.emit(Op{Kind: OpFeed})
		case ESC:
			if err := d.escape(); err != nil {
				return err
			}
		default:
			d.text = append(d.text, b)
		}
	}
	d.flush()
	return nil
}

func (d *starDecoder) escape() error {
	cmd, err := d.take(1)
	if err != nil {
		return err
	}

	switch cmd[0] {
	case '@':
		d.flush()
		d.st = initialState()
	case 'E', 'F':
		d.flush()
		d.st.bold = cmd[0] == 'E'
	case '4', '5':
		d.flush()
		d.st.invert = cmd[0] == '4'
	case 'i':
		hw, err := d.take(2)
		if err != nil {
			return err
		}
		d.flush()
		d.st.size = sizeFromBytes(hw[0], hw[1])
	case 'd':
		if _, err := d.take(1); err != nil {
			return err
		}
		d.emit(Op{Kind: OpCut})
	case GS:
		return d.escapeGS()
	default:
		return fmt.Errorf("unknown command ESC 0x%02x at offset %d", cmd[0], d.pos-1)
	}
	return nil
}

func (d *starDecoder) escapeGS() error {
	cmd, err := d.take(1)
	if err != nil {
		return err
	}

	switch cmd[0] {
	case 't':
		_, err = d.take(1)
		return err
	case 'a':
		n, err := d.take(1)
		if err != nil {
			return err
		}
		d.flush()
		d.st.align = alignFromByte(n[0])
		return nil
	case 'y':
		return d.qrCommand()
	default:
		return fmt.Errorf("unknown command ESC GS 0x%02x at offset %d", cmd[0], d.pos-1)
	}
}

func (d *starDecoder) qrCommand() error {
	sub, err := d.take(1)
	if err != nil {
		return err
	}

	switch sub[0] {
	case 'S':
		args, err := d.take(2)
		if err != nil {
			return err
		}
		switch args[0] {
		case '0':
			d.qr.Model = int(args[1])
		case '1':
			d.qr.Correction = correctionFromIndex(args[1])
		case '2':
			d.qr.CellSize = int(args[1])
		}
	case 'D':
		hdr, err := d.take(4)
		if err != nil {
			return err
		}
		n := int(hdr[2]) | int(hdr[3])<<8
		data, err := d.take(n)
		if err != nil {
			return err
		}
		d.qr.Payload = string(data)
	case 'P':
		q := d.qr
		d.emit(Op{Kind: OpQR, QR: &q})
	default:
		return fmt.Errorf("unknown QR command 0x%02x at offset %d", sub[0], d.pos-1)
	}
	return nil
}

func alignFromByte(n byte) directive.Align {
	switch n {
	case 1:
		return directive.AlignCenter
	case 2:
		return directive.AlignRight
	default:
		return directive.AlignLeft
	}
}

func sizeFromBytes(h, w byte) directive.Size {
	switch {
	case h >= 1 && w >= 1:
		return directive.SizeQuad
	case h >= 1:
		return directive.SizeDoubleHeight
	default:
		return directive.SizeNormal
	}
}
