package renderer

import (
	"strings"

	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/pkg/directive"
)

// renderTable lays the row out with the encoder's column rules so the
// preview matches the printed receipt
func (r *Renderer) renderTable(cells []directive.Cell) {
	for _, line := range encoder.LayoutRow(cells, r.columns()) {
		if !r.styled {
			var b strings.Builder
			for _, seg := range line {
				b.WriteString(seg.Text)
			}
			r.lines = append(r.lines, b.String())
			continue
		}

		var b strings.Builder
		for _, seg := range line {
			b.WriteString(r.style(seg.Bold).Render(seg.Text))
		}
		r.lines = append(r.lines, b.String())
	}
}
