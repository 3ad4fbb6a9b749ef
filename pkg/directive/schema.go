// Package directive defines the printer directive vocabulary a receipt is composed of
package directive

// Kind identifies a directive
type Kind string

const (
	KindBold    Kind = "bold"
	KindAlign   Kind = "align"
	KindSize    Kind = "size"
	KindInvert  Kind = "invert"
	KindText    Kind = "text"
	KindLine    Kind = "line"
	KindNewLine Kind = "newline"
	KindTable   Kind = "table"
	KindQRCode  Kind = "qrcode"
	KindCut     Kind = "cut"
)

// Align is a horizontal justification
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Size is a character magnification
type Size string

const (
	SizeNormal       Size = "normal"
	SizeDoubleHeight Size = "double_height"
	SizeQuad         Size = "quad" // double width and double height
)

// Correction is a QR error-correction level
type Correction string

const (
	CorrectionL Correction = "L" // 7%
	CorrectionM Correction = "M" // 15%
	CorrectionQ Correction = "Q" // 25%
	CorrectionH Correction = "H" // 30%
)

// Directive is one atomic printer instruction.
// Which fields are meaningful depends on Kind.
type Directive struct {
	Kind Kind `json:"kind"`

	// Bold, Invert
	On bool `json:"on,omitempty"`

	// Align
	Align Align `json:"align,omitempty"`

	// Size
	Size Size `json:"size,omitempty"`

	// Text
	Text string `json:"text,omitempty"`

	// Table
	Cells []Cell `json:"cells,omitempty"`

	// QRCode
	QR *QRCode `json:"qr,omitempty"`
}

// Cell is one column of a table row
type Cell struct {
	Text  string  `json:"text"`
	Align Align   `json:"align"`
	Width float64 `json:"width"` // fraction of the line, in (0,1]
	Bold  bool    `json:"bold,omitempty"`
}

// QRCode describes a printed QR symbol
type QRCode struct {
	Payload    string     `json:"payload"`
	CellSize   int        `json:"cell_size"`  // 1 - 8
	Correction Correction `json:"correction"` // L, M, Q, H
	Model      int        `json:"model"`      // 1 or 2
}
