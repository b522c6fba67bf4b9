package main

import (
	"fmt"
	"strings"

	"github.com/bodul/patternfind/pattern"
	"github.com/charmbracelet/lipgloss"
)

// palette holds the cell styles used by renderGrid.
type palette struct {
	filled    lipgloss.Style
	empty     lipgloss.Style
	matched   lipgloss.Style
	unmatched lipgloss.Style
	title     lipgloss.Style
	box       lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	return palette{
		filled:    r.NewStyle().Foreground(lipgloss.Color("252")),
		empty:     r.NewStyle().Foreground(lipgloss.Color("240")),
		matched:   r.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		unmatched: r.NewStyle().Foreground(lipgloss.Color("37")),
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		box:       r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	}
}

// renderGrid draws g with ■/□ cells. Cells covered by a match region of
// size highlight are drawn with the match styles.
func (p palette) renderGrid(title string, g pattern.Grid, matches []pattern.Position, highlight pattern.Size) string {
	var rows []string
	for i, row := range g {
		cells := make([]string, len(row))
		for j, cell := range row {
			symbol := "□"
			if cell {
				symbol = "■"
			}
			style := p.empty
			switch covered := pattern.Covers(matches, highlight, i, j); {
			case covered && cell:
				style = p.matched
			case covered:
				style = p.unmatched
			case cell:
				style = p.filled
			}
			cells[j] = style.Render(symbol)
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	if len(rows) == 0 {
		rows = append(rows, "[Empty Grid]")
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.JoinVertical(lipgloss.Left, p.title.Render(title), p.box.Render(body))
}

// renderReport lays out the pattern next to the highlighted search grid,
// followed by the match list.
func (p palette) renderReport(pat, search pattern.Grid, matches []pattern.Position) string {
	left := p.renderGrid(fmt.Sprintf("Pattern %dx%d", pat.Rows(), pat.Cols()), pat, nil, pattern.Size{})
	right := p.renderGrid(fmt.Sprintf("Search %dx%d", search.Rows(), search.Cols()), search, matches, pat.Size())
	grids := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	return grids + "\n" + formatMatches(matches) + "\n"
}

func formatMatches(matches []pattern.Position) string {
	if len(matches) == 0 {
		return "No matches."
	}
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("(%d, %d)", m.Row, m.Col)
	}
	return fmt.Sprintf("%d match(es) at %s", len(matches), strings.Join(parts, " "))
}
