// Package gridgen produces grids for the search engine: random obstacle
// fields, ASCII maps and YAML scenario files.
package gridgen

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/pdrpinto/gridastar"
)

// Options configures Random.
type Options struct {
	Rows    int
	Cols    int
	Density float64 // probability that a cell is blocked
	Seed    int64
	Start   gridastar.Coord
}

// DefaultOptions mirrors the classic demo: 30x30, 30% obstacles, start in the corner.
func DefaultOptions() Options {
	return Options{Rows: 30, Cols: 30, Density: 0.3, Seed: 1}
}

// Random builds a grid where every cell is blocked with probability Density.
// The goal is drawn uniformly among cells other than Start; Start and goal are
// always left free. The same Options always yield the same grid.
func Random(options Options) (*gridastar.Grid, error) {
	if options.Rows <= 0 || options.Cols <= 0 {
		return nil, errors.Wrapf(gridastar.ErrInvalidGrid, "size %dx%d must be positive", options.Rows, options.Cols)
	}
	if options.Rows*options.Cols < 2 {
		return nil, errors.Wrap(gridastar.ErrInvalidGrid, "need at least two cells to place a distinct goal")
	}
	if options.Density < 0 || options.Density > 1 {
		return nil, errors.Errorf("density %v outside [0,1]", options.Density)
	}
	start := options.Start
	if start.Row < 0 || start.Row >= options.Rows || start.Col < 0 || start.Col >= options.Cols {
		return nil, errors.Wrapf(gridastar.ErrInvalidGrid, "start %v outside %dx%d grid", start, options.Rows, options.Cols)
	}

	rng := rand.New(rand.NewSource(options.Seed))
	var goal gridastar.Coord
	for {
		goal = gridastar.Coord{Row: rng.Intn(options.Rows), Col: rng.Intn(options.Cols)}
		if goal != start {
			break
		}
	}

	cells := make([][]bool, options.Rows)
	for r := range cells {
		cells[r] = make([]bool, options.Cols)
		for c := range cells[r] {
			cells[r][c] = rng.Float64() < options.Density
		}
	}
	cells[start.Row][start.Col] = false
	cells[goal.Row][goal.Col] = false

	return gridastar.NewGrid(cells, start, goal)
}
