package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/pdrpinto/gridastar"
)

// DefaultCellSize is the side of one cell in pixels.
const DefaultCellSize = 20

var (
	ColorFree     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorBlocked  = color.RGBA{A: 255}
	ColorFrontier = color.RGBA{R: 255, G: 255, A: 255}
	ColorVisited  = color.RGBA{G: 255, B: 255, A: 255}
	ColorStart    = color.RGBA{G: 255, A: 255}
	ColorGoal     = color.RGBA{R: 255, A: 255}
	ColorPath     = color.RGBA{B: 255, A: 255}
	ColorLine     = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Image paints the grid in layers: cells, frontier, visited, start, goal and
// finally the path, so a found path covers start and goal.
func Image(grid *gridastar.Grid, snapshot gridastar.Snapshot, cellSize int) image.Image {
	return draw(grid, snapshot, cellSize).Image()
}

// PNG encodes Image to w.
func PNG(w io.Writer, grid *gridastar.Grid, snapshot gridastar.Snapshot, cellSize int) error {
	if err := draw(grid, snapshot, cellSize).EncodePNG(w); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

func draw(grid *gridastar.Grid, snapshot gridastar.Snapshot, cellSize int) *gg.Context {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	dc := gg.NewContext(grid.Cols()*cellSize, grid.Rows()*cellSize)
	size := float64(cellSize)
	fill := func(c gridastar.Coord, col color.Color) {
		dc.SetColor(col)
		dc.DrawRectangle(float64(c.Col)*size, float64(c.Row)*size, size, size)
		dc.Fill()
	}

	dc.SetLineWidth(1)
	for r, row := range grid.Cells() {
		for c, blocked := range row {
			here := gridastar.Coord{Row: r, Col: c}
			if blocked {
				fill(here, ColorBlocked)
			} else {
				fill(here, ColorFree)
			}
			dc.SetColor(ColorLine)
			dc.DrawRectangle(float64(c)*size, float64(r)*size, size, size)
			dc.Stroke()
		}
	}
	for c := range snapshot.Frontier {
		fill(c, ColorFrontier)
	}
	for c := range snapshot.Visited {
		fill(c, ColorVisited)
	}
	fill(grid.Start(), ColorStart)
	fill(grid.Goal(), ColorGoal)
	for _, c := range snapshot.Path {
		fill(c, ColorPath)
	}
	return dc
}
