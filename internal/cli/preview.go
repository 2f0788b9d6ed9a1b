package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowgrid/pkg/graph"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

const (
	previewPassage = "┃"
	previewFree    = ""
)

// previewCells returns the grid as text: one row per rank, one column per
// grid column from the left to the right bound. Node cells hold the node
// label; edge passages hold a bar.
func previewCells(l graph.Layout) (headers []string, rows [][]string) {
	labels := make(map[layout.Pos]string, len(l.Nodes))
	for _, n := range l.Nodes {
		labels[layout.Pos{Row: n.Rank, Col: n.Col}] = n.DisplayLabel()
	}

	grid := l.Grid()
	headers = []string{"rank"}
	for col := l.LeftBound; col <= l.RightBound; col++ {
		headers = append(headers, strconv.Itoa(col))
	}

	for _, row := range grid.Rows() {
		cells := []string{strconv.Itoa(row)}
		for col := l.LeftBound; col <= l.RightBound; col++ {
			pos := layout.Pos{Row: row, Col: col}
			switch grid.Get(pos) {
			case layout.NodeBody:
				cells = append(cells, labels[pos])
			case layout.EdgePassage:
				cells = append(cells, previewPassage)
			default:
				cells = append(cells, previewFree)
			}
		}
		rows = append(rows, cells)
	}
	return headers, rows
}

// renderPreview draws the occupancy grid of a layout as a table.
func renderPreview(l graph.Layout) string {
	if len(l.Nodes) == 0 {
		return StyleDim.Render("(empty layout)")
	}
	headers, rows := previewCells(l)

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Center)
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1).Align(lipgloss.Center)
			}
			if col == 0 {
				return base.Foreground(colorGray)
			}
			if row >= 0 && row < len(rows) && rows[row][col] == previewPassage {
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorCyan)
		})

	title := StyleTitle.Render(fmt.Sprintf("Grid %d..%d", l.LeftBound, l.RightBound))
	return title + "\n" + t.Render()
}
