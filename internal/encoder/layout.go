package encoder

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/thereceipt/order-printing/pkg/directive"
)

// state is the print mode a driver has set so far
type state struct {
	bold   bool
	align  directive.Align
	size   directive.Size
	invert bool
}

func initialState() state {
	return state{align: directive.AlignLeft, size: directive.SizeNormal}
}

// width returns the characters per line under the current size
func (s state) width(lineWidth int) int {
	if s.size == directive.SizeQuad {
		return lineWidth / 2
	}
	return lineWidth
}

// Segment is a run of a table line printed with one bold setting
type Segment struct {
	Text string
	Bold bool
}

// LayoutRow lays a table row out against width characters, one entry per
// physical line
func LayoutRow(cells []directive.Cell, width int) [][]Segment {
	return layoutTable(cells, width)
}

// Rule is a horizontal line across width characters
func Rule(width int) string {
	return rule(width)
}

// layoutTable renders a row into physical lines of exactly width characters.
// Each cell gets floor(fraction*width) columns; text wraps inside its column.
func layoutTable(cells []directive.Cell, width int) [][]Segment {
	cols := make([]int, len(cells))
	wrapped := make([][]string, len(cells))
	height := 1
	used := 0

	for i, c := range cells {
		cols[i] = int(math.Floor(c.Width * float64(width)))
		if cols[i] < 1 {
			cols[i] = 1
		}
		wrapped[i] = wrap(c.Text, cols[i])
		if len(wrapped[i]) > height {
			height = len(wrapped[i])
		}
		used += cols[i]
	}

	lines := make([][]Segment, height)
	for l := 0; l < height; l++ {
		var line []Segment
		for i, c := range cells {
			text := ""
			if l < len(wrapped[i]) {
				text = wrapped[i][l]
			}
			line = append(line, Segment{Text: pad(text, cols[i], c.Align), Bold: c.Bold})
		}
		if used < width {
			line[len(line)-1].Text += strings.Repeat(" ", width-used)
		}
		lines[l] = merge(line)
	}
	return lines
}

// merge joins adjacent segments with the same bold setting
func merge(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].Bold == s.Bold {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

// wrap splits text into lines of at most width runes, breaking on spaces
// and hard-splitting words longer than a line
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur []rune
	for _, w := range words {
		r := []rune(w)
		if len(r) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			for len(r) > width {
				lines = append(lines, string(r[:width]))
				r = r[width:]
			}
		}
		switch {
		case len(cur) == 0:
			cur = append([]rune(nil), r...)
		case len(cur)+1+len(r) <= width:
			cur = append(append(cur, ' '), r...)
		default:
			lines = append(lines, string(cur))
			cur = append([]rune(nil), r...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

// pad aligns text within width columns
func pad(text string, width int, align directive.Align) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	gap := width - n
	switch align {
	case directive.AlignRight:
		return strings.Repeat(" ", gap) + text
	case directive.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", gap-left)
	default:
		return text + strings.Repeat(" ", gap)
	}
}

// rule is a horizontal line across width characters
func rule(width int) string {
	return strings.Repeat("-", width)
}
