// Package renderer previews a directive sequence as text, the way a
// receipt printer would lay it out
package renderer

import (
	"fmt"
	"strings"

	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/pkg/directive"
)

// Renderer converts directives into preview lines
type Renderer struct {
	width  int // characters per line at normal size
	styled bool

	bold   bool
	align  directive.Align
	size   directive.Size
	invert bool

	lines []string
}

// New creates a renderer. Styled output uses lipgloss for emphasis and a frame.
func New(width int, styled bool) *Renderer {
	if width <= 0 {
		width = encoder.DefaultLineWidth
	}
	return &Renderer{width: width, styled: styled}
}

// Render returns the plain text preview of ds
func Render(ds []directive.Directive, width int) (string, error) {
	return New(width, false).Render(ds)
}

// RenderStyled returns the lipgloss preview of ds
func RenderStyled(ds []directive.Directive, width int) (string, error) {
	return New(width, true).Render(ds)
}

// Render renders a complete receipt, starting from the printer's reset state
func (r *Renderer) Render(ds []directive.Directive) (string, error) {
	r.reset()

	for i := range ds {
		if err := r.renderDirective(&ds[i]); err != nil {
			return "", fmt.Errorf("failed to render directive %d (%s): %w", i, ds[i].Kind, err)
		}
	}

	if r.styled {
		return frameStyle.Render(strings.Join(r.lines, "\n")), nil
	}

	out := make([]string, len(r.lines))
	for i, l := range r.lines {
		out[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(out, "\n"), nil
}

func (r *Renderer) reset() {
	r.bold = false
	r.align = directive.AlignLeft
	r.size = directive.SizeNormal
	r.invert = false
	r.lines = nil
}

func (r *Renderer) renderDirective(d *directive.Directive) error {
	switch d.Kind {
	case directive.KindBold:
		r.bold = d.On
	case directive.KindAlign:
		r.align = d.Align
	case directive.KindSize:
		r.size = d.Size
	case directive.KindInvert:
		r.invert = d.On
	case directive.KindText:
		r.renderText(d.Text)
	case directive.KindLine:
		r.emit(encoder.Rule(r.columns()), r.bold)
	case directive.KindNewLine:
		r.lines = append(r.lines, "")
	case directive.KindTable:
		r.renderTable(d.Cells)
	case directive.KindQRCode:
		return r.renderQRCode(d.QR)
	case directive.KindCut:
		r.renderCut()
	default:
		return fmt.Errorf("unsupported directive kind: %s", d.Kind)
	}
	return nil
}

// columns is the characters per line under the current size
func (r *Renderer) columns() int {
	if r.size == directive.SizeQuad {
		return r.width / 2
	}
	return r.width
}
