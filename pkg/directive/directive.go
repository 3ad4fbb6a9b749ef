package directive

// SetBold toggles emphasized printing
func SetBold(on bool) Directive {
	return Directive{Kind: KindBold, On: on}
}

// SetAlign sets justification for subsequent lines
func SetAlign(a Align) Directive {
	return Directive{Kind: KindAlign, Align: a}
}

// SetSize sets character magnification for subsequent lines
func SetSize(s Size) Directive {
	return Directive{Kind: KindSize, Size: s}
}

// Invert toggles white-on-black printing
func Invert(on bool) Directive {
	return Directive{Kind: KindInvert, On: on}
}

// Text prints a line of text followed by a line feed
func Text(s string) Directive {
	return Directive{Kind: KindText, Text: s}
}

// Line draws a horizontal rule across the paper
func Line() Directive {
	return Directive{Kind: KindLine}
}

// NewLine feeds one empty line
func NewLine() Directive {
	return Directive{Kind: KindNewLine}
}

// Table prints one row of columns
func Table(cells ...Cell) Directive {
	return Directive{Kind: KindTable, Cells: cells}
}

// QR prints a QR symbol
func QR(q QRCode) Directive {
	return Directive{Kind: KindQRCode, QR: &q}
}

// Cut feeds and cuts the paper
func Cut() Directive {
	return Directive{Kind: KindCut}
}

// Texts returns the text of every Text directive in order
func Texts(ds []Directive) []string {
	var out []string
	for _, d := range ds {
		if d.Kind == KindText {
			out = append(out, d.Text)
		}
	}
	return out
}

// Tables returns every table row in order
func Tables(ds []Directive) [][]Cell {
	var out [][]Cell
	for _, d := range ds {
		if d.Kind == KindTable {
			out = append(out, d.Cells)
		}
	}
	return out
}
