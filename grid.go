package gridastar

import "github.com/pkg/errors"

// directions lists king moves in neighbor order: N, S, W, E, NW, NE, SW, SE.
// The order feeds frontier tie-breaking and must not change.
var directions = [...]Coord{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// Grid is a fixed occupancy map with a start and a goal cell.
// It has no mutators; a Grid can be shared by any number of engines.
type Grid struct {
	rows    int
	cols    int
	blocked []bool
	start   Coord
	goal    Coord
}

// NewGrid builds a grid from cells, where cells[r][c] == true marks a blocked
// cell. The cells are copied. It fails with ErrInvalidGrid when cells is empty
// or ragged, or when start or goal is out of bounds or blocked.
func NewGrid(cells [][]bool, start, goal Coord) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, errors.Wrap(ErrInvalidGrid, "grid has no cells")
	}
	rows, cols := len(cells), len(cells[0])
	blocked := make([]bool, rows*cols)
	for r, row := range cells {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrInvalidGrid, "row %d has %d cells, want %d", r, len(row), cols)
		}
		copy(blocked[r*cols:(r+1)*cols], row)
	}

	grid := &Grid{rows: rows, cols: cols, blocked: blocked, start: start, goal: goal}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return grid, nil
}

// Validate checks the grid invariants. A nil grid is invalid.
func (g *Grid) Validate() error {
	if g == nil || g.rows <= 0 || g.cols <= 0 || len(g.blocked) != g.rows*g.cols {
		return errors.Wrap(ErrInvalidGrid, "grid is empty")
	}
	for _, endpoint := range []struct {
		name  string
		coord Coord
	}{{"start", g.start}, {"goal", g.goal}} {
		if !g.InBounds(endpoint.coord) {
			return errors.Wrapf(ErrInvalidGrid, "%s %v outside %dx%d grid", endpoint.name, endpoint.coord, g.rows, g.cols)
		}
		if g.blocked[g.index(endpoint.coord)] {
			return errors.Wrapf(ErrInvalidGrid, "%s %v is blocked", endpoint.name, endpoint.coord)
		}
	}
	return nil
}

func (g *Grid) Rows() int    { return g.rows }
func (g *Grid) Cols() int    { return g.cols }
func (g *Grid) Start() Coord { return g.start }
func (g *Grid) Goal() Coord  { return g.goal }

// InBounds reports whether c lies inside [0,rows)x[0,cols).
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// IsBlocked reports whether the cell at c is blocked.
func (g *Grid) IsBlocked(c Coord) (bool, error) {
	if !g.InBounds(c) {
		return false, g.outOfBounds(c)
	}
	return g.blocked[g.index(c)], nil
}

// Neighbors returns the free, in-bounds king-move neighbors of c in the fixed
// order N, S, W, E, NW, NE, SW, SE. A diagonal move is allowed even when both
// orthogonal cells next to it are blocked.
func (g *Grid) Neighbors(c Coord) ([]Coord, error) {
	if !g.InBounds(c) {
		return nil, g.outOfBounds(c)
	}
	return g.neighbors(c, make([]Coord, 0, len(directions))), nil
}

// Cells returns a copy of the occupancy map, true for blocked cells.
func (g *Grid) Cells() [][]bool {
	cells := make([][]bool, g.rows)
	for r := range cells {
		cells[r] = make([]bool, g.cols)
		copy(cells[r], g.blocked[r*g.cols:(r+1)*g.cols])
	}
	return cells
}

// FreeCount returns the number of unblocked cells.
func (g *Grid) FreeCount() int {
	free := 0
	for _, b := range g.blocked {
		if !b {
			free++
		}
	}
	return free
}

// neighbors appends the neighbors of an in-bounds c to buf.
func (g *Grid) neighbors(c Coord, buf []Coord) []Coord {
	for _, d := range directions {
		n := c.Add(d)
		if g.InBounds(n) && !g.blocked[g.index(n)] {
			buf = append(buf, n)
		}
	}
	return buf
}

func (g *Grid) index(c Coord) int { return c.Row*g.cols + c.Col }

func (g *Grid) outOfBounds(c Coord) error {
	return errors.Wrapf(ErrOutOfBounds, "%v outside %dx%d grid", c, g.rows, g.cols)
}
