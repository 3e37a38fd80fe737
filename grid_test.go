package gridastar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustParse builds a grid from rows of '#' (blocked), '.', 'S' and 'G'.
func mustParse(t *testing.T, lines ...string) *Grid {
	t.Helper()
	cells := make([][]bool, len(lines))
	var start, goal Coord
	for r, line := range lines {
		cells[r] = make([]bool, len(line))
		for c, ch := range line {
			switch ch {
			case '#':
				cells[r][c] = true
			case 'S':
				start = Coord{r, c}
			case 'G':
				goal = Coord{r, c}
			}
		}
	}
	grid, err := NewGrid(cells, start, goal)
	require.NoError(t, err)
	return grid
}

func openCells(rows, cols int) [][]bool {
	cells := make([][]bool, rows)
	for r := range cells {
		cells[r] = make([]bool, cols)
	}
	return cells
}

func TestNewGridRejectsInvalidInput(t *testing.T) {
	blockedGoal := openCells(3, 3)
	blockedGoal[2][2] = true
	blockedStart := openCells(3, 3)
	blockedStart[0][0] = true

	cases := []struct {
		name  string
		cells [][]bool
		start Coord
		goal  Coord
	}{
		{"no rows", nil, Coord{}, Coord{}},
		{"no columns", [][]bool{{}}, Coord{}, Coord{}},
		{"ragged", [][]bool{{false, false}, {false}}, Coord{}, Coord{}},
		{"goal blocked", blockedGoal, Coord{0, 0}, Coord{2, 2}},
		{"start blocked", blockedStart, Coord{0, 0}, Coord{2, 2}},
		{"goal out of bounds", openCells(3, 3), Coord{0, 0}, Coord{3, 0}},
		{"start negative", openCells(3, 3), Coord{-1, 0}, Coord{2, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid, err := NewGrid(tc.cells, tc.start, tc.goal)
			require.ErrorIs(t, err, ErrInvalidGrid)
			assert.Nil(t, grid)
		})
	}
}

func TestNewGridCopiesCells(t *testing.T) {
	cells := openCells(2, 2)
	grid, err := NewGrid(cells, Coord{0, 0}, Coord{1, 1})
	require.NoError(t, err)

	cells[0][1] = true
	blocked, err := grid.IsBlocked(Coord{0, 1})
	require.NoError(t, err)
	assert.False(t, blocked)

	copied := grid.Cells()
	copied[1][0] = true
	blocked, err = grid.IsBlocked(Coord{1, 0})
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestIsBlocked(t *testing.T) {
	grid := mustParse(t,
		"S#",
		".G",
	)
	blocked, err := grid.IsBlocked(Coord{0, 1})
	require.NoError(t, err)
	assert.True(t, blocked)

	for _, c := range []Coord{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		_, err := grid.IsBlocked(c)
		assert.ErrorIs(t, err, ErrOutOfBounds, "coord %v", c)
	}
}

func TestNeighborsOrder(t *testing.T) {
	grid := mustParse(t,
		"S..",
		"...",
		"..G",
	)
	neighbors, err := grid.Neighbors(Coord{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []Coord{
		{0, 1}, {2, 1}, {1, 0}, {1, 2},
		{0, 0}, {0, 2}, {2, 0}, {2, 2},
	}, neighbors)

	corner, err := grid.Neighbors(Coord{0, 0})
	require.NoError(t, err)
	assert.Equal(t, []Coord{{1, 0}, {0, 1}, {1, 1}}, corner)
}

func TestNeighborsSkipsBlockedAndAllowsCornerCutting(t *testing.T) {
	grid := mustParse(t,
		"S#.",
		"#..",
		"..G",
	)
	neighbors, err := grid.Neighbors(Coord{0, 0})
	require.NoError(t, err)
	assert.Equal(t, []Coord{{1, 1}}, neighbors)

	_, err = grid.Neighbors(Coord{3, 3})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestFreeCount(t *testing.T) {
	grid := mustParse(t,
		"S#.",
		"#..",
		"..G",
	)
	assert.Equal(t, 7, grid.FreeCount())
	assert.Equal(t, 3, grid.Rows())
	assert.Equal(t, 3, grid.Cols())
	assert.Equal(t, Coord{0, 0}, grid.Start())
	assert.Equal(t, Coord{2, 2}, grid.Goal())
}

func TestValidateNilGrid(t *testing.T) {
	var grid *Grid
	assert.ErrorIs(t, grid.Validate(), ErrInvalidGrid)
	assert.ErrorIs(t, (&Grid{}).Validate(), ErrInvalidGrid)
}

func TestHeuristics(t *testing.T) {
	assert.InDelta(t, 5.0, Euclidean(Coord{0, 0}, Coord{3, 4}), 1e-12)
	assert.Equal(t, 4, Chebyshev(Coord{0, 0}, Coord{3, 4}))
	assert.Equal(t, 4, Chebyshev(Coord{3, 4}, Coord{0, 0}))
	assert.Equal(t, "(1,2)", Coord{1, 2}.String())
}
