package renderer

import (
	"strings"
	"unicode/utf8"

	"github.com/thereceipt/order-printing/pkg/directive"
)

const cutMarker = "- - - - cut - - - -"

// renderText breaks text at the line width like the printer does and
// aligns each physical line
func (r *Renderer) renderText(text string) {
	cols := r.columns()
	for _, line := range split(text, cols) {
		r.emit(align(line, cols, r.align), r.bold)
	}
}

func (r *Renderer) renderCut() {
	r.lines = append(r.lines, align(cutMarker, r.width, directive.AlignCenter))
}

// emit appends one physical line, styled with the current mode
func (r *Renderer) emit(line string, bold bool) {
	if r.styled {
		line = r.style(bold).Render(line)
	}
	r.lines = append(r.lines, line)
}

// split hard-wraps text every width runes
func split(text string, width int) []string {
	runes := []rune(text)
	if len(runes) <= width {
		return []string{text}
	}
	var out []string
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func align(text string, width int, a directive.Align) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	gap := width - n
	switch a {
	case directive.AlignRight:
		return strings.Repeat(" ", gap) + text
	case directive.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", gap-left)
	default:
		return text + strings.Repeat(" ", gap)
	}
}
