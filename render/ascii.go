// Package render draws a grid and a search snapshot as text or as an image.
package render

import (
	"strings"

	"github.com/pdrpinto/gridastar"
)

// Cell symbols used by ASCII.
const (
	SymbolFree     = '.'
	SymbolBlocked  = '#'
	SymbolFrontier = 'o'
	SymbolVisited  = 'x'
	SymbolPath     = '*'
	SymbolStart    = 'S'
	SymbolGoal     = 'G'
)

// ASCII renders one line per grid row. Start and goal are drawn on top of
// the path so they stay visible.
func ASCII(grid *gridastar.Grid, snapshot gridastar.Snapshot) string {
	onPath := make(map[gridastar.Coord]bool, len(snapshot.Path))
	for _, c := range snapshot.Path {
		onPath[c] = true
	}

	cells := grid.Cells()
	var sb strings.Builder
	sb.Grow(grid.Rows() * (grid.Cols() + 1))
	for r, row := range cells {
		for c, blocked := range row {
			sb.WriteByte(symbolAt(grid, snapshot, onPath, gridastar.Coord{Row: r, Col: c}, blocked))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func symbolAt(grid *gridastar.Grid, snapshot gridastar.Snapshot, onPath map[gridastar.Coord]bool, c gridastar.Coord, blocked bool) byte {
	switch {
	case c == grid.Start():
		return SymbolStart
	case c == grid.Goal():
		return SymbolGoal
	case onPath[c]:
		return SymbolPath
	case snapshot.Visited[c]:
		return SymbolVisited
	case snapshot.Frontier[c]:
		return SymbolFrontier
	case blocked:
		return SymbolBlocked
	default:
		return SymbolFree
	}
}
