package directive

import (
	"fmt"
	"strings"
)

// Validate checks every directive in the sequence
func Validate(ds []Directive) error {
	for i := range ds {
		if err := ValidateOne(&ds[i]); err != nil {
			return fmt.Errorf("directive[%d]: %w", i, err)
		}
	}
	return nil
}

// ValidateOne checks a single directive
func ValidateOne(d *Directive) error {
	switch d.Kind {
	case KindBold, KindInvert, KindText, KindLine, KindNewLine, KindCut:
		return nil
	case KindAlign:
		return validateAlign(d.Align)
	case KindSize:
		return validateSize(d.Size)
	case KindTable:
		return validateTable(d.Cells)
	case KindQRCode:
		return validateQRCode(d.QR)
	case "":
		return fmt.Errorf("directive kind is required")
	default:
		return fmt.Errorf("unknown directive kind: %s", d.Kind)
	}
}

func validateAlign(a Align) error {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return nil
	}
	return fmt.Errorf("invalid align '%s' (must be left, center, or right)", a)
}

func validateSize(s Size) error {
	switch s {
	case SizeNormal, SizeDoubleHeight, SizeQuad:
		return nil
	}
	return fmt.Errorf("invalid size '%s' (must be normal, double_height, or quad)", s)
}

func validateTable(cells []Cell) error {
	if len(cells) == 0 {
		return fmt.Errorf("table requires at least one cell")
	}

	for i, c := range cells {
		if c.Width <= 0 || c.Width > 1 {
			return fmt.Errorf("cell[%d]: width %v out of range (0,1]", i, c.Width)
		}
		if err := validateAlign(c.Align); err != nil {
			return fmt.Errorf("cell[%d]: %w", i, err)
		}
	}

	return nil
}

func validateQRCode(q *QRCode) error {
	if q == nil || strings.TrimSpace(q.Payload) == "" {
		return fmt.Errorf("qrcode requires payload")
	}
	if q.CellSize < 1 || q.CellSize > 8 {
		return fmt.Errorf("invalid qrcode cell_size %d (must be 1-8)", q.CellSize)
	}

	switch q.Correction {
	case CorrectionL, CorrectionM, CorrectionQ, CorrectionH:
	default:
		return fmt.Errorf("invalid qrcode correction '%s' (must be L, M, Q, or H)", q.Correction)
	}

	if q.Model != 1 && q.Model != 2 {
		return fmt.Errorf("invalid qrcode model %d (must be 1 or 2)", q.Model)
	}

	return nil
}
