package renderer

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/thereceipt/order-printing/pkg/directive"
)

var (
	paper = lipgloss.Color("#F8FAFC") // Slate 50
	ink   = lipgloss.Color("#0F172A") // Slate 900
	muted = lipgloss.Color("#64748B") // Slate 500

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	textStyle = lipgloss.NewStyle().Foreground(paper)
)

// style returns the lipgloss style for the current print mode
func (r *Renderer) style(bold bool) lipgloss.Style {
	s := textStyle.Bold(bold)
	if r.size != directive.SizeNormal {
		s = s.Bold(true).Underline(r.size == directive.SizeQuad)
	}
	if r.invert {
		s = s.Foreground(ink).Background(paper)
	}
	return s
}
